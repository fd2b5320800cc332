package repository

import (
	"context"
	"errors"

	"FinForge/internal/domain/models"
)

// ErrInstrumentNotFound is returned by providers for an unknown symbol.
var ErrInstrumentNotFound = errors.New("instrument not found")

// InstrumentProvider resolves instrument descriptors by symbol.
type InstrumentProvider interface {
	Get(ctx context.Context, symbol string) (models.InstrumentDescriptor, error)
	List(ctx context.Context) ([]models.InstrumentDescriptor, error)
}

// QuoteSink accepts live quotes (the memory catalog implements it).
type QuoteSink interface {
	ApplyQuote(ctx context.Context, q *models.Quote) error
}

// InstrumentStore is a catalog that also takes live quotes.
type InstrumentStore interface {
	InstrumentProvider
	QuoteSink
}

// QuoteSource fetches the latest quote on demand.
type QuoteSource interface {
	LatestQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type ForecastPublisher interface {
	Publish(ctx context.Context, ev *models.ForecastEvent) error
	Close() error
}

type Metrics interface {
	RecordGeneration(kind, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordCache(kind string, hit bool)
}
