package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"FinForge/pkg/cache"
	"FinForge/pkg/logger"
	"FinForge/pkg/util"
)

// Prewarmer fills the forecast cache for the current day.
type Prewarmer interface {
	Prewarm(ctx context.Context, days int) (int, error)
}

// Refresher pulls fresh quotes into the catalog.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Locker is the subset of cache.Service used to keep one prewarm per day across replicas.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

var _ Locker = (cache.Service)(nil)

type Config struct {
	PrewarmSpec string
	QuoteSpec   string
	LockTTL     time.Duration
	PrewarmDays int
	JobTimeout  time.Duration
}

// Scheduler runs the background cron jobs.
type Scheduler struct {
	cron      *cron.Cron
	cfg       Config
	prewarmer Prewarmer
	refresher Refresher
	locker    Locker
	l         *logger.Logger
	now       func() time.Time
	ctx       context.Context
	cancel    context.CancelFunc
}

// New builds a scheduler; a nil refresher or locker disables the matching behaviour.
func New(cfg Config, prewarmer Prewarmer, refresher Refresher, locker Locker, l *logger.Logger) *Scheduler {
	if l == nil {
		l = logger.Nop()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		cfg:       cfg,
		prewarmer: prewarmer,
		refresher: refresher,
		locker:    locker,
		l:         l.With(logger.String("component", "scheduler")),
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// RegisterAll adds the prewarm and quote refresh jobs. Empty specs skip a job.
func (s *Scheduler) RegisterAll() error {
	if s.cfg.PrewarmSpec != "" && s.prewarmer != nil {
		if _, err := s.cron.AddFunc(s.cfg.PrewarmSpec, func() { s.RunPrewarm(s.ctx) }); err != nil {
			return fmt.Errorf("register prewarm job: %w", err)
		}
	}
	if s.cfg.QuoteSpec != "" && s.refresher != nil {
		if _, err := s.cron.AddFunc(s.cfg.QuoteSpec, func() { s.RunRefresh(s.ctx) }); err != nil {
			return fmt.Errorf("register quote refresh job: %w", err)
		}
	}
	return nil
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started", logger.Int("jobs", s.Jobs()))
}

// Stop cancels running jobs and waits for them to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.l.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunPrewarm warms the cache unless another run already holds today's lock.
// It reports whether the prewarm ran.
func (s *Scheduler) RunPrewarm(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	key := "lock:prewarm:" + util.DayKey(s.now())
	if s.locker != nil {
		ok, err := s.locker.TryLock(ctx, key, s.cfg.LockTTL)
		if err != nil {
			s.l.Error("prewarm lock failed", logger.String("key", key), logger.Error(err))
			return false
		}
		if !ok {
			s.l.Debug("prewarm already running or done", logger.String("key", key))
			return false
		}
	}

	start := time.Now()
	n, err := s.prewarmer.Prewarm(ctx, s.cfg.PrewarmDays)
	if err != nil {
		s.l.Error("prewarm failed", logger.Int("warmed", n), logger.Error(err))
		if s.locker != nil {
			// let the next tick retry
			if uerr := s.locker.Unlock(context.Background(), key); uerr != nil {
				s.l.Warn("prewarm unlock failed", logger.Error(uerr))
			}
		}
		return true
	}
	s.l.Info("prewarm done", logger.Int("instruments", n), logger.Duration("took", time.Since(start)))
	return true
}

func (s *Scheduler) RunRefresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	n, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.l.Error("quote refresh failed", logger.Int("updated", n), logger.Error(err))
		return
	}
	s.l.Debug("quote refresh done", logger.Int("updated", n))
}
