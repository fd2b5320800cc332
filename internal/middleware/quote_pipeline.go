package middleware

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"FinForge/internal/domain/models"
	domrepo "FinForge/internal/domain/repository"
)

// QuotePipeline sits between the quote stream and a QuoteSink.
// It validates, throttles per symbol and buffers quotes while the sink is failing.
type QuotePipeline struct {
	sink    domrepo.QuoteSink
	metrics domrepo.Metrics
	maxRPS  int
	bufCh   chan *models.Quote
	now     func() time.Time

	mu       sync.Mutex
	started  bool
	stopCh   chan struct{}
	done     chan struct{}
	lastSeen map[string]time.Time
}

type PipelineOption func(*QuotePipeline)

// WithMaxRPS sets the max quotes per second per symbol; 0 disables throttling.
func WithMaxRPS(n int) PipelineOption {
	return func(p *QuotePipeline) {
		if n >= 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer size used while the sink is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *QuotePipeline) {
		if n > 0 {
			p.bufCh = make(chan *models.Quote, n)
		}
	}
}

func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(p *QuotePipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func NewQuotePipeline(sink domrepo.QuoteSink, metrics domrepo.Metrics, opts ...PipelineOption) *QuotePipeline {
	p := &QuotePipeline{
		sink:     sink,
		metrics:  metrics,
		maxRPS:   5,
		bufCh:    make(chan *models.Quote, 1000),
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches background re-delivery of buffered quotes.
func (p *QuotePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})
	stop, done := p.stopCh, p.done
	p.mu.Unlock()

	go p.flushLoop(ctx, stop, done)
}

func (p *QuotePipeline) flushLoop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	backoff := 50 * time.Millisecond
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case q := <-p.bufCh:
			if err := p.sink.ApplyQuote(ctx, q); err == nil {
				backoff = 50 * time.Millisecond
				continue
			}
			p.metrics.RecordError("pipeline_flush")
			if backoff < 2*time.Second {
				backoff *= 2
			}
			select {
			case <-time.After(backoff):
			case <-stop:
				return
			}
			select {
			case p.bufCh <- q:
			default:
				p.metrics.RecordError("pipeline_buffer_drop")
			}
		}
	}
}

// Stop stops the background flushing and waits for it to exit.
func (p *QuotePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	close(p.stopCh)
	done := p.done
	p.mu.Unlock()
	<-done
}

// Process validates, throttles and forwards a quote, buffering it when the sink fails.
// Throttled quotes are dropped without error.
func (p *QuotePipeline) Process(ctx context.Context, q *models.Quote) error {
	start := p.now()
	if err := validateQuote(q); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	q.Symbol = strings.ToUpper(q.Symbol)
	if !p.allow(q.Symbol, start) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.sink.ApplyQuote(ctx, q); err != nil {
		p.metrics.RecordError("pipeline_sink")
		select {
		case p.bufCh <- q:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", p.now().Sub(start).Seconds())
	return nil
}

// Buffered returns the number of quotes waiting for re-delivery.
func (p *QuotePipeline) Buffered() int { return len(p.bufCh) }

func validateQuote(q *models.Quote) error {
	if q == nil {
		return fmt.Errorf("quote nil")
	}
	if strings.TrimSpace(q.Symbol) == "" {
		return fmt.Errorf("symbol empty")
	}
	if q.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if !(q.Price > 0) || math.IsInf(q.Price, 0) {
		return fmt.Errorf("price must be positive and finite")
	}
	if q.Volume < 0 {
		return fmt.Errorf("negative volume")
	}
	return nil
}

func (p *QuotePipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last, ok := p.lastSeen[symbol]
	if ok && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[symbol] = now
	return true
}
