package di

import (
	"context"
	"fmt"
	"time"

	"PumpScan/internal/domain/repository"
	"PumpScan/internal/handler/api"
	internalrepo "PumpScan/internal/repository"
	icache "PumpScan/internal/service/cache"
	"PumpScan/internal/service/ratelimit"
	"PumpScan/internal/services/detection"
	"PumpScan/internal/usecase"
	pkgch "PumpScan/pkg/clickhouse"
	"PumpScan/pkg/config"
	xhttp "PumpScan/pkg/http"
	pkgkafka "PumpScan/pkg/kafka"
	applogger "PumpScan/pkg/logger"
	"PumpScan/pkg/metrics"
	"PumpScan/pkg/server"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRegistry creates the registry for application and HTTP metrics.
// /metrics serves it together with the default registry, which carries the
// Go runtime and Kafka producer collectors.
func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

func ProvideStore() repository.AnalysisStore {
	return internalrepo.NewMemoryStore()
}

func ProvideEngine(cfg *config.Config) *detection.Engine {
	return detection.NewEngine(detection.NewTracker(cfg.Detection.WindowSize))
}

// ProvideClickHouseClient connects and creates the archive table. It returns
// nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := pkgch.Connect(ctx, cfg.ClickHouse.ConnectAttempts,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, err
	}

	if err := client.InitSchema(ctx, internalrepo.ArchiveSchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse archive ready", applogger.String("table", cfg.ArchiveTable()))
	return client, nil
}

// ProvideArchive returns the ClickHouse archive, or a no-op one without a client.
func ProvideArchive(client *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.Archive {
	if client == nil {
		return internalrepo.NoopArchive{}
	}
	return internalrepo.NewClickHouseArchive(client.DB(), cfg.ArchiveTable(), l)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka or the
// alerts topic is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.AlertsTopic == "" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithKeyedPartitioning(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher creates the Kafka alert publisher when a producer exists.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AlertPublisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertsTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML, or nil
// when Kafka or the records topic is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.RecordsTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers, cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaRecordsHandler handles the records topic.
func ProvideKafkaRecordsHandler(a *usecase.Analyzer, cfg *config.Config) *usecase.KafkaRecordsHandler {
	return usecase.NewKafkaRecordsHandler(cfg.Kafka.RecordsTopic, a)
}

// ProvideCache returns a Redis cache when enabled and reachable, otherwise
// the in-process TTL cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) icache.BytesCache {
	if !cfg.Cache.Redis.Enabled {
		return icache.NewTTLCache()
	}
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})

	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return rc.Ping(ctx)
	}
	if err := backoff.Retry(ping, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)); err != nil {
		l.Warn("redis unavailable, using in-process cache",
			applogger.String("addr", cfg.Cache.Redis.Addr),
			applogger.Error(err),
		)
		_ = rc.Close()
		return icache.NewTTLCache()
	}
	return rc
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

func ProvideStocksHandler(
	l *applogger.Logger,
	a *usecase.Analyzer,
	store repository.AnalysisStore,
	cache icache.BytesCache,
	rl *ratelimit.Limiter,
	cfg *config.Config,
) *api.StocksEchoHandler {
	return api.NewStocksEchoHandler(l, a, store,
		api.WithCache(cache, cfg.Cache.TTL),
		api.WithRateLimiter(rl),
	)
}

func ProvideHTTPServer(cfg *config.Config, h *api.StocksEchoHandler, l *applogger.Logger, reg *prometheus.Registry) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l),
		xhttp.WithRegistry(reg),
		xhttp.WithGatherer(prometheus.Gatherers{reg, prometheus.DefaultGatherer}),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	seeder *usecase.SeedLoader,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaRecordsHandler,
	alerts repository.AlertPublisher,
	chClient *pkgch.Client,
	rl *ratelimit.Limiter,
	cache icache.BytesCache,
) *server.App {
	return server.New(server.Deps{
		Config:   cfg,
		Logger:   l,
		HTTP:     srv,
		Seeder:   seeder,
		Consumer: consumer,
		Records:  kh,
		Alerts:   alerts,
		CH:       chClient,
		Limiter:  rl,
		Cache:    cache,
	})
}
