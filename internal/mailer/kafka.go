package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// mailMessage is the payload published for an external mail consumer.
type mailMessage struct {
	To              string `json:"to"`
	VerificationURL string `json:"verification_url"`
}

// KafkaSender publishes send requests to a topic instead of talking SMTP
// itself. Handing delivery to a consumer group is the upgrade path from
// at-most-once to at-least-once dispatch.
type KafkaSender struct {
	writer KafkaWriter
}

// NewKafkaSender creates a sender backed by a Kafka writer.
func NewKafkaSender(writer KafkaWriter) *KafkaSender {
	return &KafkaSender{writer: writer}
}

// Send publishes one verification-email request, keyed by recipient.
func (s *KafkaSender) Send(ctx context.Context, to, verificationURL string) error {
	data, err := json.Marshal(mailMessage{To: to, VerificationURL: verificationURL})
	if err != nil {
		return fmt.Errorf("marshal mail message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(to),
		Value: data,
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish mail message: %w", err)
	}
	return nil
}
