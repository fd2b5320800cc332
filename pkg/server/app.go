package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "FinForge/pkg/http"
	applogger "FinForge/pkg/logger"
)

// Collector is a background quote source.
type Collector interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type Consumer interface {
	Start() error
	Stop(ctx context.Context) error
}

type Scheduler interface {
	Start()
	Stop(ctx context.Context) error
}

type Prewarmer interface {
	Prewarm(ctx context.Context, days int) (int, error)
}

type closer struct {
	name string
	fn   func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	l               *applogger.Logger
	httpServer      *xhttp.Server
	collector       Collector
	consumer        Consumer
	jobs            Consumer
	scheduler       Scheduler
	prewarmer       Prewarmer
	prewarmDays     int
	closers         []closer
	shutdownTimeout time.Duration
	signals         []os.Signal
}

type Option func(*App)

func WithCollector(c Collector) Option { return func(a *App) { a.collector = c } }
func WithConsumer(c Consumer) Option   { return func(a *App) { a.consumer = c } }
func WithJobQueue(q Consumer) Option   { return func(a *App) { a.jobs = q } }
func WithScheduler(s Scheduler) Option { return func(a *App) { a.scheduler = s } }

// WithPrewarm warms the forecast cache in the background on start when enabled.
func WithPrewarm(p Prewarmer, days int, enabled bool) Option {
	return func(a *App) {
		if enabled {
			a.prewarmer = p
			a.prewarmDays = days
		}
	}
}

// WithCloser adds a release step run after every component has stopped.
func WithCloser(name string, fn func() error) Option {
	return func(a *App) { a.closers = append(a.closers, closer{name: name, fn: fn}) }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}

// New creates a new App. httpServer is required.
func New(l *applogger.Logger, httpServer *xhttp.Server, opts ...Option) *App {
	if l == nil {
		l = applogger.Nop()
	}
	a := &App{
		l:               l,
		httpServer:      httpServer,
		shutdownTimeout: 15 * time.Second,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts every component and blocks until ctx ends, a signal arrives or the
// HTTP server fails. It then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, a.signals...)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		return err
	}

	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			// the API keeps serving on the last known prices
			a.l.Error("quote collector start failed", applogger.Error(err))
			a.collector = nil
		} else {
			a.l.Info("quote collector started")
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			a.l.Error("kafka consumer start failed", applogger.Error(err))
			a.consumer = nil
		}
	}
	if a.jobs != nil {
		if err := a.jobs.Start(); err != nil {
			a.l.Error("job queue start failed", applogger.Error(err))
			a.jobs = nil
		}
	}
	if a.scheduler != nil {
		a.scheduler.Start()
	}
	if a.prewarmer != nil {
		go func() {
			n, err := a.prewarmer.Prewarm(ctx, a.prewarmDays)
			if err != nil {
				a.l.Warn("startup prewarm failed", applogger.Error(err))
				return
			}
			a.l.Info("startup prewarm done", applogger.Int("instruments", n))
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
		a.l.Error("http server stopped unexpectedly", applogger.Error(runErr))
	}

	if err := a.shutdown(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// shutdown stops components in reverse start order.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	a.l.Info("shutting down...")

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if a.scheduler != nil {
		if err := a.scheduler.Stop(ctx); err != nil {
			a.l.Warn("scheduler stop error", applogger.Error(err))
		}
	}
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.l.Warn("collector stop error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.jobs != nil {
		if err := a.jobs.Stop(ctx); err != nil {
			a.l.Warn("job queue stop error", applogger.Error(err))
		}
	}
	for _, c := range a.closers {
		if err := c.fn(); err != nil {
			a.l.Warn("close error", applogger.String("resource", c.name), applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}
