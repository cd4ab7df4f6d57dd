package server

import (
	"context"
	"testing"
	"time"

	"PumpScan/internal/repository"
	icache "PumpScan/internal/service/cache"
	"PumpScan/internal/service/ratelimit"
	"PumpScan/internal/services/detection"
	"PumpScan/internal/usecase"
	"PumpScan/pkg/config"
	xhttp "PumpScan/pkg/http"
	"PumpScan/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func TestAppRunSeedsAndShutsDown(t *testing.T) {
	cfg := config.Default()
	cfg.Detection.SeedFile = "../../data/nepse_today.json"

	reg := prometheus.NewRegistry()
	store := repository.NewMemoryStore()
	engine := detection.NewEngine(detection.NewTracker(cfg.Detection.WindowSize))
	analyzer := usecase.NewAnalyzer(engine, store, repository.NoopArchive{}, repository.NoopPublisher{}, metrics.New(reg), nil)

	app := New(Deps{
		Config:  cfg,
		HTTP:    xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0), xhttp.WithRegistry(reg)),
		Seeder:  usecase.NewSeedLoader(analyzer, nil),
		Alerts:  repository.NoopPublisher{},
		Limiter: ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Cache:   icache.NewTTLCache(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for store.Version() < 28 {
		if time.Now().After(deadline) {
			t.Fatalf("seed data not loaded, version %d", store.Version())
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatalf("app did not stop")
	}

	if st := store.Stats(); st.High != 1 {
		t.Fatalf("stats %+v", st)
	}
}
