package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"FinForge/internal/domain/models"
	"FinForge/internal/domain/repository"
	domsvc "FinForge/internal/domain/service"
	"FinForge/internal/handler/api"
	mid "FinForge/internal/middleware"
	internalrepo "FinForge/internal/repository"
	"FinForge/internal/scheduler"
	"FinForge/internal/service/finnhub"
	"FinForge/internal/service/ratelimit"
	"FinForge/internal/services/synth"
	"FinForge/internal/services/synth/synthobs"
	"FinForge/internal/usecase"
	"FinForge/pkg/cache"
	pkgch "FinForge/pkg/clickhouse"
	"FinForge/pkg/config"
	xhttp "FinForge/pkg/http"
	pkgkafka "FinForge/pkg/kafka"
	"FinForge/pkg/logger"
	"FinForge/pkg/metrics"
	"FinForge/pkg/postgres"
	"FinForge/pkg/queue"
	"FinForge/pkg/server"
)

const initTimeout = 10 * time.Second

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache returns nil when caching is disabled. With redis enabled the memory
// cache sits in front of it.
func ProvideCache(cfg *config.Config, l *logger.Logger) (cache.Service, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	if !cfg.Cache.Redis.Enabled {
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
		return mc, func() { _ = mc.Close() }, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	lc := cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize))
	l.Info("forecast cache ready", logger.String("layers", "memory+redis"))
	return lc, func() {
		if err := lc.Close(); err != nil {
			l.Warn("cache close error", logger.Error(err))
		}
	}, nil
}

// ProvideCatalog opens the configured instrument backend and seeds it.
func ProvideCatalog(cfg *config.Config, m repository.Metrics, l *logger.Logger) (repository.InstrumentStore, func(), error) {
	seed := seedInstruments(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	switch cfg.Catalog.Backend {
	case "", "memory":
		return internalrepo.NewMemoryCatalog(seed, m), func() {}, nil

	case "clickhouse":
		client, err := pkgch.NewClient(ctx,
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithCompression(cfg.ClickHouse.Compress),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				l.Warn("clickhouse close error", logger.Error(err))
			}
		}
		if cfg.ClickHouse.InitSchema {
			if err := client.InitSchema(ctx, internalrepo.InstrumentSchema); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
			}
		}
		store := internalrepo.NewCHInstrumentStore(client, l)
		if err := seedStore(ctx, store, cfg, seed); err != nil {
			cleanup()
			return nil, nil, err
		}
		l.Info("catalog ready", logger.String("backend", "clickhouse"), logger.String("db", cfg.ClickHouse.Database))
		return store, cleanup, nil

	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Postgres.DSN, postgres.WithMaxConns(cfg.Postgres.MaxConns))
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		store := internalrepo.NewPGInstrumentStore(pool)
		if err := store.InitSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		if err := seedStore(ctx, store, cfg, seed); err != nil {
			pool.Close()
			return nil, nil, err
		}
		l.Info("catalog ready", logger.String("backend", "postgres"))
		return store, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}
}

type upserter interface {
	Upsert(ctx context.Context, inst models.InstrumentDescriptor) error
}

// seedStore writes the configured instruments. Without explicit configuration a
// persistent store is only seeded with defaults while empty.
func seedStore(ctx context.Context, store interface {
	upserter
	repository.InstrumentProvider
}, cfg *config.Config, seed []models.InstrumentDescriptor) error {
	if len(cfg.Catalog.Instruments) == 0 {
		existing, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("catalog list: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}
	}
	for _, inst := range seed {
		if err := store.Upsert(ctx, inst); err != nil {
			return fmt.Errorf("catalog seed %s: %w", inst.Symbol, err)
		}
	}
	return nil
}

func seedInstruments(cfg *config.Config) []models.InstrumentDescriptor {
	if len(cfg.Catalog.Instruments) == 0 {
		return internalrepo.DefaultInstruments()
	}
	out := make([]models.InstrumentDescriptor, 0, len(cfg.Catalog.Instruments))
	for _, in := range cfg.Catalog.Instruments {
		out = append(out, models.InstrumentDescriptor{
			Symbol:       in.Symbol,
			Name:         in.Name,
			CurrentPrice: in.CurrentPrice,
			DayChange:    in.DayChange,
			Beta:         in.Beta,
			Sector:       in.Sector,
			Country:      in.Country,
			MarketCap:    in.MarketCap,
			Volume:       in.Volume,
			PERatio:      in.PERatio,
		})
	}
	return out
}

// ProvideKafkaProducer returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerLogger(l),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() {
		if err := producer.Close(); err != nil {
			l.Warn("kafka producer close error", logger.Error(err))
		}
	}, nil
}

// ProvideForecastPublisher publishes forecast events to Kafka, or nowhere.
func ProvideForecastPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.ForecastPublisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaForecastPublisher(producer, cfg.Kafka.ForecastTopic)
}

// ProvideEngine builds the traced synthetic engine.
func ProvideEngine(cfg *config.Config, l *logger.Logger) domsvc.ForecastEngine {
	eng := synth.NewEngine(time.Now, synth.WithVolume(cfg.Generator.VolumeBase, cfg.Generator.VolumeScale))
	return synthobs.Wrap(eng, l)
}

func ProvideForecastUseCase(
	cfg *config.Config,
	engine domsvc.ForecastEngine,
	catalog repository.InstrumentStore,
	m repository.Metrics,
	c cache.Service,
	pub repository.ForecastPublisher,
	l *logger.Logger,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(engine, catalog, m,
		usecase.WithCache(c, cfg.Cache.TTL),
		usecase.WithPublisher(pub),
		usecase.WithLogger(l),
		usecase.WithMaxHorizonDays(cfg.Generator.MaxHorizonDays),
	)
}

func ProvideDashboardUseCase(cfg *config.Config, forecast *usecase.ForecastUseCase) *usecase.DashboardUseCase {
	return usecase.NewDashboardUseCase(forecast, cfg.Generator.DashboardTimeout)
}

// ProvideQuoteCollector streams Finnhub trades into the catalog. When the quote
// consumer is on, quotes go through Kafka instead and the consumer applies them.
func ProvideQuoteCollector(cfg *config.Config, catalog repository.InstrumentStore, producer *pkgkafka.Producer, m repository.Metrics, l *logger.Logger) *usecase.QuoteCollector {
	if !cfg.Finnhub.Enabled || cfg.Finnhub.APIKey == "" {
		return nil
	}
	symbols := cfg.Finnhub.Symbols
	if len(symbols) == 0 {
		insts, err := catalog.List(context.Background())
		if err != nil {
			l.Warn("catalog list failed, stream has no symbols", logger.Error(err))
		}
		for _, inst := range insts {
			symbols = append(symbols, inst.Symbol)
		}
	}

	var sink repository.QuoteSink = catalog
	if producer != nil && cfg.Kafka.Consumer.Enabled {
		sink = internalrepo.NewKafkaQuoteForwarder(producer, cfg.Kafka.QuotesTopic)
	}
	stream := finnhub.New(cfg.Finnhub.APIKey, cfg.Finnhub.WebSocketURL, symbols, cfg.Finnhub.ReconnectDelay, cfg.Finnhub.PingInterval, l)
	pipe := mid.NewQuotePipeline(sink, m, mid.WithMaxRPS(cfg.Finnhub.MaxRPS), mid.WithBufferSize(2000))
	return usecase.NewQuoteCollector(stream, pipe, m, l)
}

// ProvideQuoteRefresher polls the Finnhub REST quote endpoint; nil without an API key.
func ProvideQuoteRefresher(cfg *config.Config, catalog repository.InstrumentStore, m repository.Metrics, l *logger.Logger) *usecase.QuoteRefresher {
	if cfg.Finnhub.APIKey == "" {
		return nil
	}
	src := finnhub.NewRESTClient(cfg.Finnhub.RestURL, cfg.Finnhub.APIKey, cfg.Finnhub.RestTimeout)
	return usecase.NewQuoteRefresher(catalog, src, catalog, m, l)
}

// ProvideKafkaConsumer returns nil unless both Kafka and the quote consumer are enabled.
func ProvideKafkaConsumer(cfg *config.Config, catalog repository.InstrumentStore, m repository.Metrics, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewKafkaQuotesHandler(cfg.Kafka.QuotesTopic, catalog, m))
	consumer.WithConsumerHook(pkgkafka.NewHookChain(usecase.ValidationHook()))
	return consumer, nil
}

// ProvideJobQueue returns nil unless the Redis job queue is enabled. Every replica
// both enqueues and works prewarm jobs.
func ProvideJobQueue(cfg *config.Config, forecast *usecase.ForecastUseCase, l *logger.Logger) (*queue.RedisQueue, func(), error) {
	if !cfg.Queue.Enabled {
		return nil, func() {}, nil
	}
	rc := cfg.Cache.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", rc.Host, rc.Port),
		Password: rc.Password,
		DB:       rc.DB,
	})
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, queue.ModeProducerConsumer, queue.WithKeyPrefix(cfg.Queue.Prefix))
	q.RegisterJob(usecase.NewPrewarmJob(forecast))

	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("close queue redis client", logger.Error(err))
		}
	}
	return q, cleanup, nil
}

// ProvidePrewarmer fans prewarm out through the job queue when one is configured.
func ProvidePrewarmer(forecast *usecase.ForecastUseCase, catalog repository.InstrumentStore, q *queue.RedisQueue, l *logger.Logger) scheduler.Prewarmer {
	if q == nil {
		return forecast
	}
	return usecase.NewPrewarmDispatcher(catalog, q, l)
}

// ProvideScheduler returns nil when scheduling is disabled.
func ProvideScheduler(cfg *config.Config, prewarmer scheduler.Prewarmer, refresher *usecase.QuoteRefresher, c cache.Service, l *logger.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	var r scheduler.Refresher
	if refresher != nil {
		r = refresher
	}
	var locker scheduler.Locker
	if c != nil {
		locker = c
	}
	s := scheduler.New(scheduler.Config{
		PrewarmSpec: cfg.Scheduler.PrewarmSpec,
		QuoteSpec:   cfg.Scheduler.QuoteSpec,
		LockTTL:     cfg.Scheduler.LockTTL,
		PrewarmDays: cfg.Generator.DefaultHorizonDays,
	}, prewarmer, r, locker, l)
	if err := s.RegisterAll(); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideHTTPHandler builds the forecast API with dependency health checks.
func ProvideHTTPHandler(cfg *config.Config, l *logger.Logger, forecast *usecase.ForecastUseCase, dashboard *usecase.DashboardUseCase, catalog repository.InstrumentStore, c cache.Service) xhttp.Handler {
	opts := []api.HandlerOption{
		api.WithDefaultDays(cfg.Generator.DefaultHorizonDays),
		api.WithHealthCheck("catalog", func(ctx context.Context) error {
			_, err := catalog.List(ctx)
			return err
		}),
	}
	if c != nil {
		opts = append(opts, api.WithHealthCheck("cache", func(ctx context.Context) error {
			_, err := c.Exists(ctx, "healthz")
			return err
		}))
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		opts = append(opts, api.WithRateLimiter(ratelimit.New(rl.Burst, rl.PerSec)))
	}
	return api.NewForecastEchoHandler(l, forecast, dashboard, opts...)
}

func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, l *logger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideApp assembles the application and attaches the error-log collector.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	httpServer *xhttp.Server,
	prewarmer scheduler.Prewarmer,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	jobs *queue.RedisQueue,
	sched *scheduler.Scheduler,
	producer *pkgkafka.Producer,
) *server.App {
	if cfg.Log.Collector.Enabled && producer != nil {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   cfg.Log.Collector.Interval,
			CountThreshold: cfg.Log.Collector.CountThreshold,
			Topic:          cfg.Log.Collector.Topic,
			Publisher:      producer,
		})
	}
	opts := []server.Option{
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		server.WithPrewarm(prewarmer, cfg.Generator.DefaultHorizonDays, cfg.Scheduler.PrewarmOnRun),
	}
	if collector != nil {
		opts = append(opts, server.WithCollector(collector))
	}
	if consumer != nil {
		opts = append(opts, server.WithConsumer(consumer))
	}
	if jobs != nil {
		opts = append(opts, server.WithJobQueue(jobs))
	}
	if sched != nil {
		opts = append(opts, server.WithScheduler(sched))
	}
	if producer != nil {
		opts = append(opts, server.WithCloser("log collector", func() error {
			l.RemoveCollector()
			return nil
		}))
	}
	return server.New(l, httpServer, opts...)
}
