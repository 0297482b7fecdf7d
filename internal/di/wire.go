//go:build wireinject
// +build wireinject

package di

import (
	"foresight/pkg/config"
	"foresight/pkg/server"

	"github.com/google/wire"
)

// InitializeStreamApp wires the tick ingestion service.
func InitializeStreamApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideMetricsServer,
		ProvideClickHouseClient,
		ProvideTickStore,
		ProvideTickSource,
		ProvideMirrorProducer,
		ProvideTickCollector,
		ProvideStreamApp,
	)
	return &server.App{}, nil
}

// InitializeWindowApp wires the window scheduler service.
func InitializeWindowApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideMetricsServer,
		ProvideClickHouseClient,
		ProvideRedisClient,
		ProvideQueueTransport,
		ProvideTickStore,
		ProvideSubscriptionRegistry,
		ProvideWindowCycle,
		ProvideWindowApp,
	)
	return &server.App{}, nil
}

// InitializeIndicatorApp wires one indicator service.
func InitializeIndicatorApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideMetricsServer,
		ProvideClickHouseClient,
		ProvideRedisClient,
		ProvideQueueTransport,
		ProvideSubscriptionRegistry,
		ProvideResultStore,
		ProvideIndicator,
		ProvideIndicatorLoop,
		ProvideIndicatorApp,
	)
	return &server.App{}, nil
}

// InitializeAPIApp wires the read-side HTTP service.
func InitializeAPIApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideClickHouseClient,
		ProvideRedisClient,
		ProvideCache,
		ProvideResultStore,
		ProvideLatestHandler,
		ProvideHTTPServer,
		ProvideAPIApp,
	)
	return &server.App{}, nil
}
