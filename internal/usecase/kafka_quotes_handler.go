package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"FinForge/internal/domain/models"
	domrepo "FinForge/internal/domain/repository"
	pkgkafka "FinForge/pkg/kafka"
)

// KafkaQuotesHandler applies quotes consumed from the quotes topic to a sink.
type KafkaQuotesHandler struct {
	topic   string
	sink    domrepo.QuoteSink
	metrics domrepo.Metrics
	now     func() time.Time
}

var _ pkgkafka.MessageHandler = (*KafkaQuotesHandler)(nil)

func NewKafkaQuotesHandler(topic string, sink domrepo.QuoteSink, metrics domrepo.Metrics) *KafkaQuotesHandler {
	return &KafkaQuotesHandler{topic: topic, sink: sink, metrics: metrics, now: time.Now}
}

func (h *KafkaQuotesHandler) Topic() string { return h.topic }

// Handle expects a JSON models.Quote; timestamps may be seconds or milliseconds.
func (h *KafkaQuotesHandler) Handle(ctx context.Context, b []byte) error {
	var q models.Quote
	if err := json.Unmarshal(b, &q); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if q.Timestamp > 0 && q.Timestamp < 1e11 {
		q.Timestamp *= 1000
	}
	if q.Timestamp > 0 {
		h.metrics.RecordLatency("quote_e2e_seconds", h.now().Sub(time.UnixMilli(q.Timestamp)).Seconds())
	}

	if err := h.sink.ApplyQuote(ctx, &q); err != nil {
		if errors.Is(err, domrepo.ErrInstrumentNotFound) {
			// unknown symbols are dropped
			return nil
		}
		h.metrics.RecordError("consumer_apply")
		return err
	}
	return nil
}

// ValidationHook rejects payloads that are not JSON objects before they reach the
// handler, so they skip retries and go straight to the DLQ.
func ValidationHook() pkgkafka.ConsumerHook {
	return pkgkafka.HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
				return ctx, km, data, &pkgkafka.HookError{Code: "ERR_VALIDATION", Err: errors.New("payload is not a JSON object")}
			}
			return ctx, km, data, nil
		},
	}
}
