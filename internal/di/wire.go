//go:build wireinject
// +build wireinject

package di

import (
	"CurveWatch/pkg/config"
	"CurveWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideCacheStore,
		ProvideSeriesSource,

		// Use case
		ProvideCurveService,

		// Delivery
		ProvideHandler,
		ProvideHub,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
