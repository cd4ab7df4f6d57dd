package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "PumpScan/internal/domain/repository"
	icache "PumpScan/internal/service/cache"
	"PumpScan/internal/service/ratelimit"
	"PumpScan/internal/usecase"
	pkgch "PumpScan/pkg/clickhouse"
	"PumpScan/pkg/config"
	xhttp "PumpScan/pkg/http"
	pkgkafka "PumpScan/pkg/kafka"
	applogger "PumpScan/pkg/logger"
)

// limiterIdle is how long a client may stay silent before its rate limit
// bucket is dropped.
const limiterIdle = 10 * time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	seeder     *usecase.SeedLoader
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	alerts     domrepo.AlertPublisher
	chClient   *pkgch.Client
	limiter    *ratelimit.Limiter
	cache      icache.BytesCache
}

// Deps groups what App needs; nil fields are optional components that are
// turned off in config.
type Deps struct {
	Config   *config.Config
	Logger   *applogger.Logger
	HTTP     *xhttp.Server
	Seeder   *usecase.SeedLoader
	Consumer *pkgkafka.Consumer
	Records  pkgkafka.MessageHandler
	Alerts   domrepo.AlertPublisher
	CH       *pkgch.Client
	Limiter  *ratelimit.Limiter
	Cache    icache.BytesCache
}

// New creates a new App instance with all dependencies.
func New(d Deps) *App {
	l := d.Logger
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        d.Config,
		log:        l,
		httpServer: d.HTTP,
		seeder:     d.Seeder,
		consumer:   d.Consumer,
		kh:         d.Records,
		alerts:     d.Alerts,
		chClient:   d.CH,
		limiter:    d.Limiter,
		cache:      d.Cache,
	}
}

// Run loads seed data, starts the consumer and the HTTP server, then blocks
// until ctx is done or SIGINT/SIGTERM arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.seeder != nil {
		if _, err := a.seeder.LoadFile(ctx, a.cfg.Detection.SeedFile); err != nil {
			a.log.Error("seed load failed", applogger.String("path", a.cfg.Detection.SeedFile), applogger.Error(err))
		}
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer subscribed", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	go a.maintain(ctx)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// maintain drops idle rate limit buckets and expired cache entries.
func (a *App) maintain(ctx context.Context) {
	purger, _ := a.cache.(interface{ Purge() int })
	if a.limiter == nil && purger == nil {
		return
	}
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if a.limiter != nil {
				a.limiter.Sweep(limiterIdle)
			}
			if purger != nil {
				purger.Purge()
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if a.alerts != nil {
		if err := a.alerts.Close(); err != nil {
			a.log.Warn("alert publisher close error", applogger.Error(err))
		}
	}

	if c, ok := a.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
