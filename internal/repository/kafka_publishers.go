package repository

import (
	"context"

	"FinForge/internal/domain/models"
	domrepo "FinForge/internal/domain/repository"
)

// messageProducer is satisfied by *kafka.Producer.
type messageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaForecastPublisher publishes forecast events keyed by symbol.
type KafkaForecastPublisher struct {
	producer messageProducer
	topic    string
}

func NewKafkaForecastPublisher(producer messageProducer, topic string) domrepo.ForecastPublisher {
	return &KafkaForecastPublisher{producer: producer, topic: topic}
}

func (p *KafkaForecastPublisher) Publish(ctx context.Context, ev *models.ForecastEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), ev)
}

// Close is a no-op; the producer is shared and closed by its owner.
func (p *KafkaForecastPublisher) Close() error { return nil }

// NoopPublisher discards events; used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.ForecastEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }

// KafkaQuoteForwarder is a QuoteSink that forwards quotes to the quotes topic,
// keyed by symbol so per-symbol order is kept. The consumer side applies them.
type KafkaQuoteForwarder struct {
	producer messageProducer
	topic    string
}

var _ domrepo.QuoteSink = (*KafkaQuoteForwarder)(nil)

func NewKafkaQuoteForwarder(producer messageProducer, topic string) *KafkaQuoteForwarder {
	return &KafkaQuoteForwarder{producer: producer, topic: topic}
}

func (f *KafkaQuoteForwarder) ApplyQuote(ctx context.Context, q *models.Quote) error {
	if err := validQuote(q); err != nil {
		return err
	}
	return f.producer.Publish(ctx, f.topic, []byte(normalizeSymbol(q.Symbol)), q)
}
