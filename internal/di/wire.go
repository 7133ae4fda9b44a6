//go:build wireinject
// +build wireinject

package di

import (
	"FinSignal/pkg/config"
	"FinSignal/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure
		ProvideStorage,
		ProvideCache,
		ProvideKafkaProducer,

		// Repositories and engine
		ProvideMarketHistory,
		ProvidePolicy,

		// Use cases
		ProvideSignalGenerator,
		ProvideSignalQueries,
		ProvidePriceRecorder,

		// Transports
		ProvideSignalsHub,
		ProvideRateLimiter,
		ProvideKafkaConsumer,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
