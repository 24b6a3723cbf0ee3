// Package events publishes assignment lifecycle events for downstream
// consumers (notification service, analytics).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Event types emitted by the assignment lifecycle.
const (
	TypeAssignmentCreated   = "assignment.created"
	TypeAssignmentSubmitted = "assignment.submitted"
	TypeAssignmentGraded    = "assignment.graded"
	TypeAssignmentDeleted   = "assignment.deleted"
	TypeUserDeleted         = "user.deleted"
)

const (
	eventSource  = "tuition-service"
	eventVersion = "1.0"
)

// Event is the envelope published for every lifecycle transition.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh id and the service identity.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Publisher sends lifecycle events. Publishing is best effort; callers log
// failures and do not fail the triggering request.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// ===== KAFKA =====

// KafkaPublisher publishes events to a Kafka topic through watermill.
type KafkaPublisher struct {
	publisher message.Publisher
	topic     string
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	pub, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return &KafkaPublisher{publisher: pub, topic: topic}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)

	return p.publisher.Publish(p.topic, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.publisher.Close()
}

// ===== NOOP =====

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (*NoopPublisher) Publish(context.Context, Event) error { return nil }
func (*NoopPublisher) Close() error                         { return nil }

// ===== MOCK =====

// MockPublisher records published events for tests.
type MockPublisher struct {
	mu     sync.Mutex
	events []Event
	logger *slog.Logger
}

func NewMockPublisher(logger *slog.Logger) *MockPublisher {
	return &MockPublisher{logger: logger}
}

func (m *MockPublisher) Publish(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	if m.logger != nil {
		m.logger.Debug("mock event published", "type", event.Type, "id", event.ID)
	}
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func (m *MockPublisher) PublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
