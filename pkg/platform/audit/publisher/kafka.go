package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "storefront/pkg/platform/audit"
)

// Kafka publishes audit events to one topic per category
// (<prefix>.<category>), keyed by user id so per-user ordering holds.
type Kafka struct {
	client      *kgo.Client
	topicPrefix string
	logger      *slog.Logger
}

// KafkaOption configures a Kafka publisher.
type KafkaOption func(*Kafka)

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(p *Kafka) {
		p.logger = logger
	}
}

// NewKafka connects to the given brokers. topicPrefix defaults to
// "storefront.audit".
func NewKafka(brokers []string, topicPrefix string, opts ...KafkaOption) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topicPrefix == "" {
		topicPrefix = "storefront.audit"
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	p := &Kafka{client: client, topicPrefix: topicPrefix}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Emit produces the event asynchronously. Delivery failures are logged, not
// returned: the business operation has already happened by the time the
// broker acks.
func (p *Kafka) Emit(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: fmt.Sprintf("%s.%s", p.topicPrefix, event.Category),
		Key:   []byte(event.UserID.String()),
		Value: payload,
	}

	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Error("audit event delivery failed",
				"topic", r.Topic,
				"action", event.Action,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes pending records and releases the client.
func (p *Kafka) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		return err
	}
	p.client.Close()
	return nil
}
