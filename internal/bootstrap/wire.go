//go:build wireinject

package bootstrap

import (
	"context"

	"marketdata-collector/internal/application"
	httpserver "marketdata-collector/internal/infrastructure/http"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideConfig,
	ProvidePipelines,
	ProvideStore,
	ProvideRegistry,
	ProvideSnapshots,
)

// InitRunner builds the pipeline runner used by cmd/collector.
func InitRunner(ctx context.Context) (*application.Runner, func(), error) {
	wire.Build(
		infraSet,
		ProvideRunLock,
		ProvideSources,
		ProvideRunner,
	)
	return nil, nil, nil
}

// InitAPI builds the read-only inspection server used by cmd/api.
func InitAPI(ctx context.Context) (*httpserver.Server, func(), error) {
	wire.Build(
		infraSet,
		ProvideAPIServer,
	)
	return nil, nil, nil
}
