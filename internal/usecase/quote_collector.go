package usecase

import (
	"context"
	"sync"

	"FinForge/internal/domain/models"
	drepo "FinForge/internal/domain/repository"
	mid "FinForge/internal/middleware"
	"FinForge/pkg/logger"
)

// QuoteCollector pumps quotes from a market stream through the pipeline.
type QuoteCollector struct {
	stream  drepo.MarketStream
	pipe    *mid.QuotePipeline
	metrics drepo.Metrics
	l       *logger.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewQuoteCollector(stream drepo.MarketStream, pipe *mid.QuotePipeline, metrics drepo.Metrics, l *logger.Logger) *QuoteCollector {
	if l == nil {
		l = logger.Nop()
	}
	return &QuoteCollector{stream: stream, pipe: pipe, metrics: metrics, l: l.With(logger.String("component", "quote_collector"))}
}

func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes and consumes in the background until ctx ends or Shutdown.
func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		_ = c.stream.Close()
		return err
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.pipe.Start(ctx)

	c.wg.Add(1)
	go c.run(ctx)
	return nil
}

func (c *QuoteCollector) run(ctx context.Context) {
	defer c.wg.Done()
	for ctx.Err() == nil {
		quotes, errs := c.stream.Read(ctx)
		c.consume(ctx, quotes, errs)
		if ctx.Err() != nil {
			return
		}
		// stream broke: reconnect until it succeeds or ctx ends
		for ctx.Err() == nil {
			err := c.stream.Reconnect(ctx)
			if err == nil {
				c.l.Info("stream reconnected")
				break
			}
			c.metrics.RecordError("stream_reconnect")
			c.l.Warn("stream reconnect failed", logger.Error(err))
		}
	}
}

// consume returns when the stream reports an error or closes.
func (c *QuoteCollector) consume(ctx context.Context, quotes <-chan *models.Quote, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if ok && err != nil {
				c.metrics.RecordError("stream")
				c.l.Warn("stream error", logger.Error(err))
			}
			return
		case q, ok := <-quotes:
			if !ok {
				return
			}
			if err := c.pipe.Process(ctx, q); err != nil {
				c.l.Debug("quote rejected", logger.String("symbol", q.Symbol), logger.Error(err))
			}
		}
	}
}

// Shutdown stops consumption and the pipeline and closes the stream.
func (c *QuoteCollector) Shutdown(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.stream.Close()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.pipe.Stop()
	return err
}
