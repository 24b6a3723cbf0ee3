package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicateKey is returned when a uniqueness invariant (user email or id)
// is violated on insert.
var ErrDuplicateKey = errors.New("duplicate key")

// IsNotFoundError reports whether err means the operation target is absent.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err is a uniqueness violation. gorm
// surfaces the Postgres 23505 error through ErrDuplicatedKey; the string
// check covers older driver paths.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value")
}
