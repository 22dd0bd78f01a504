package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes each run summary as a JSON message keyed by run ID.
type KafkaNotifier struct {
	writer messageWriter
	topic  string
}

// NewKafkaNotifier creates a notifier writing to topic on the given brokers.
func NewKafkaNotifier(brokers []string, topic string) (*KafkaNotifier, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
	}
	return &KafkaNotifier{writer: w, topic: topic}, nil
}

// Notify publishes the summary. Runs without changes are published too so consumers
// can track freshness.
func (n *KafkaNotifier) Notify(ctx context.Context, summary *Summary) error {
	value, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(summary.RunID),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "fallback", Value: []byte(fmt.Sprint(summary.Fallback))},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish summary to %s: %w", n.topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
