//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/config"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		ProvideFetcher,
		ProvidePublisher,
		ProvideHistoryStore,
		ProvideEngine,

		ProvideWSManager,
		ProvideHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
