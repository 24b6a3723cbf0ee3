package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mathconnect/tuition-service/internal/models"
)

// DeriveStatus applies the lifecycle rule in one place instead of scattered
// inline checks:
//
//	GRADED is terminal; otherwise status follows the submitted-file list —
//	non-empty means SUBMITTED (stamping SubmittedAt on entry), empty means
//	PENDING (clearing SubmittedAt).
func DeriveStatus(a *models.Assignment, now time.Time) {
	if a.Status == models.StatusGraded {
		return
	}
	if len(a.SubmittedFiles) > 0 {
		if a.Status != models.StatusSubmitted || a.SubmittedAt == nil {
			t := now
			a.SubmittedAt = &t
		}
		a.Status = models.StatusSubmitted
		return
	}
	a.Status = models.StatusPending
	a.SubmittedAt = nil
}

// AverageScore is the ratio of sums over graded assignments:
// 100 * Σscore / ΣmaxScore, and 0 when nothing is graded. Deliberately not
// the mean of per-assignment percentages.
func AverageScore(assignments []*models.Assignment) float64 {
	var totalScore, totalMax float64
	for _, a := range assignments {
		if a.Status != models.StatusGraded {
			continue
		}
		if a.Score != nil {
			totalScore += *a.Score
		}
		totalMax += a.MaxScore
	}
	if totalMax == 0 {
		return 0
	}
	return 100 * totalScore / totalMax
}

// newEntityID returns a fresh id that sorts newest-first under the store's
// id DESC ordering: a millisecond timestamp prefix plus a short random
// suffix for uniqueness within the same millisecond.
func newEntityID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
