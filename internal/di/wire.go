//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"FinForge/pkg/config"
	"FinForge/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideCatalog,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideJobQueue,

		// Core and use cases
		ProvideEngine,
		ProvideForecastPublisher,
		ProvideForecastUseCase,
		ProvideDashboardUseCase,
		ProvideQuoteCollector,
		ProvideQuoteRefresher,
		ProvidePrewarmer,
		ProvideScheduler,

		// Transport
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
