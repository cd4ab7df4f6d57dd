//go:build wireinject
// +build wireinject

package di

import (
	"PumpScan/internal/usecase"
	"PumpScan/pkg/config"
	"PumpScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Detection core
		ProvideStore,
		ProvideEngine,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,
		ProvideRateLimiter,

		// Repositories
		ProvideArchive,
		ProvideAlertPublisher,

		// Use cases
		usecase.NewAnalyzer,
		usecase.NewSeedLoader,
		ProvideKafkaRecordsHandler,

		// HTTP
		ProvideStocksHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
