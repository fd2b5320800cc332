package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"FinForge/internal/domain/models"
	domrepo "FinForge/internal/domain/repository"
)

// DefaultInstruments seeds the catalog when the configuration lists none.
func DefaultInstruments() []models.InstrumentDescriptor {
	return []models.InstrumentDescriptor{
		{Symbol: "AAPL", Name: "Apple Inc.", CurrentPrice: 175.43, DayChange: 2.15, Beta: 1.2, Sector: "technology", Country: "US", MarketCap: 2.7e12, Volume: 5.2e7, PERatio: 28.5},
		{Symbol: "MSFT", Name: "Microsoft Corporation", CurrentPrice: 415.26, DayChange: -1.84, Beta: 0.9, Sector: "technology", Country: "US", MarketCap: 3.1e12, Volume: 2.1e7, PERatio: 35.2},
		{Symbol: "NVDA", Name: "NVIDIA Corporation", CurrentPrice: 121.79, DayChange: 3.02, Beta: 1.7, Sector: "technology", Country: "US", MarketCap: 3.0e12, Volume: 3.1e8, PERatio: 70.1},
		{Symbol: "TSLA", Name: "Tesla, Inc.", CurrentPrice: 182.47, DayChange: -4.36, Beta: 2.0, Sector: "automotive", Country: "US", MarketCap: 5.8e11, Volume: 9.6e7, PERatio: 45.3},
		{Symbol: "JPM", Name: "JPMorgan Chase & Co.", CurrentPrice: 198.88, DayChange: 0.57, Beta: 1.1, Sector: "finance", Country: "US", MarketCap: 5.7e11, Volume: 8.9e6, PERatio: 12.0},
		{Symbol: "GS", Name: "The Goldman Sachs Group, Inc.", CurrentPrice: 452.11, DayChange: -2.4, Beta: 1.4, Sector: "finance", Country: "US", MarketCap: 1.5e11, Volume: 2.2e6, PERatio: 17.6},
		{Symbol: "XOM", Name: "Exxon Mobil Corporation", CurrentPrice: 111.04, DayChange: -0.92, Beta: 0.8, Sector: "energy", Country: "US", MarketCap: 4.4e11, Volume: 1.6e7, PERatio: 13.4},
		{Symbol: "JNJ", Name: "Johnson & Johnson", CurrentPrice: 147.62, DayChange: 0.33, Beta: 0.5, Sector: "healthcare", Country: "US", MarketCap: 3.5e11, Volume: 7.1e6, PERatio: 21.9},
	}
}

// MemoryCatalog is an in-process instrument catalog that also accepts live quotes.
type MemoryCatalog struct {
	mu       sync.RWMutex
	items    map[string]models.InstrumentDescriptor
	lastSeen map[string]int64
	metrics  domrepo.Metrics
}

var (
	_ domrepo.InstrumentProvider = (*MemoryCatalog)(nil)
	_ domrepo.QuoteSink          = (*MemoryCatalog)(nil)
)

func NewMemoryCatalog(instruments []models.InstrumentDescriptor, metrics domrepo.Metrics) *MemoryCatalog {
	c := &MemoryCatalog{
		items:    make(map[string]models.InstrumentDescriptor, len(instruments)),
		lastSeen: make(map[string]int64),
		metrics:  metrics,
	}
	for _, inst := range instruments {
		c.Upsert(inst)
	}
	return c
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Upsert adds or replaces an instrument; the symbol is upper-cased.
func (c *MemoryCatalog) Upsert(inst models.InstrumentDescriptor) {
	inst.Symbol = normalizeSymbol(inst.Symbol)
	if inst.Symbol == "" {
		return
	}
	c.mu.Lock()
	c.items[inst.Symbol] = inst
	c.mu.Unlock()
}

func (c *MemoryCatalog) Get(_ context.Context, symbol string) (models.InstrumentDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.items[normalizeSymbol(symbol)]
	if !ok {
		return models.InstrumentDescriptor{}, fmt.Errorf("%w: %s", domrepo.ErrInstrumentNotFound, symbol)
	}
	return inst, nil
}

// List returns all instruments ordered by symbol.
func (c *MemoryCatalog) List(_ context.Context) ([]models.InstrumentDescriptor, error) {
	c.mu.RLock()
	out := make([]models.InstrumentDescriptor, 0, len(c.items))
	for _, inst := range c.items {
		out = append(out, inst)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// ApplyQuote moves CurrentPrice to the quote price. DayChange stays relative to the
// previous close unless the quote carries its own. Quotes older than the last applied
// one for the symbol are ignored.
func (c *MemoryCatalog) ApplyQuote(_ context.Context, q *models.Quote) error {
	if err := validQuote(q); err != nil {
		return err
	}
	sym := normalizeSymbol(q.Symbol)

	c.mu.Lock()
	inst, ok := c.items[sym]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", domrepo.ErrInstrumentNotFound, q.Symbol)
	}
	if last, seen := c.lastSeen[sym]; seen && q.Timestamp < last {
		c.mu.Unlock()
		return nil
	}
	c.items[sym] = applyQuote(inst, q)
	c.lastSeen[sym] = q.Timestamp
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordLastPrice(sym, q.Price)
	}
	return nil
}

// ErrInvalidQuote is returned for nil quotes and non-positive or non-finite prices.
var ErrInvalidQuote = errors.New("invalid quote")

func validQuote(q *models.Quote) error {
	if q == nil || q.Price <= 0 || math.IsNaN(q.Price) || math.IsInf(q.Price, 0) {
		return ErrInvalidQuote
	}
	if normalizeSymbol(q.Symbol) == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidQuote)
	}
	return nil
}
