package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TypeUserRegistered    = "user_registered"
	TypeUserLoggedIn      = "user_logged_in"
	TypeTokensRotated     = "tokens_rotated"
	TypeUserLoggedOut     = "user_logged_out"
	TypeUserUpdated       = "user_updated"
	TypeUserDeleted       = "user_deleted"
	TypeRevocationsPurged = "revocations_purged"
)

type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	Count      int64     `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, ev Event) error
	Close() error
}

type Nop struct{}

func (Nop) Publish(context.Context, string, Event) error { return nil }
func (Nop) Close() error                                 { return nil }

// PublishTimeout bounds a single Publish call, retries included.
const PublishTimeout = 500 * time.Millisecond

// KafkaPublisher writes one message per event. Publish runs on the request
// path, so batching is effectively off and retries are short.
type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchSize:              1,
			BatchTimeout:           5 * time.Millisecond,
			MaxAttempts:            2,
			WriteBackoffMin:        10 * time.Millisecond,
			WriteBackoffMax:        50 * time.Millisecond,
			WriteTimeout:           PublishTimeout,
		},
		timeout: PublishTimeout,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data}); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// New returns a Kafka publisher, or Nop when no brokers are configured.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	return NewKafkaPublisher(brokers, topic)
}
