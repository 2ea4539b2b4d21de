//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"auri/pkg/config"
	"auri/pkg/server"
)

// InitializeApp assembles the application from configuration.
func InitializeApp(ctx context.Context, cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideRecorder,
		ProvideCache,
		ProvideBirdeye,
		ProvideSolana,
		ProvideCoingecko,
		ProvideNarrator,
		ProvideAuditor,
		ProvidePublisher,
		ProvideRiskAnalyzer,
		ProvidePriceHistory,
		ProvideHandler,
		ProvideServer,
		ProvideApp,
	)
	return nil, nil, nil
}
