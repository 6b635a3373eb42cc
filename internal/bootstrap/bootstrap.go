package bootstrap

import (
	"fmt"
	"strings"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/config"
	"marketdata-collector/internal/domain"
	"marketdata-collector/internal/infrastructure/provider"

	"go.uber.org/zap"
)

// buildJob turns one pipelines.yaml entry into a runnable pipeline.
func buildJob(
	cfg config.Config,
	p config.PipelineConfig,
	reg *application.Registry,
	st Store,
	src Sources,
	snaps application.SnapshotStore,
	log *zap.Logger,
) (application.Job, error) {
	switch p.Kind {
	case config.KindMarket:
		return &application.Pipeline[domain.CanonicalRecord]{
			Name:         p.Name,
			Series:       p.DomainSeries(),
			Window:       p.DomainWindow(),
			Adapter:      application.NewMarketAdapter(reg, p.AliasTable(), src.Bars...),
			Snapshots:    snaps,
			SnapshotPath: p.SnapshotPath(cfg.SnapshotDir),
			Sink:         st.Market,
			Preflight:    preflight(cfg, p, log),
			Log:          log,
		}, nil
	case config.KindMacro:
		return &application.Pipeline[domain.MacroObservation]{
			Name:         p.Name,
			Series:       p.DomainSeries(),
			Window:       p.DomainWindow(),
			Adapter:      application.NewMacroAdapter(reg, p.AliasTable(), src.Macro...),
			Snapshots:    snaps,
			SnapshotPath: p.SnapshotPath(cfg.SnapshotDir),
			Sink:         st.Macro,
			Preflight:    preflight(cfg, p, log),
			Log:          log,
		}, nil
	default:
		return nil, fmt.Errorf("pipeline %s: unknown kind %q", p.Name, p.Kind)
	}
}

// preflight checks the API keys the pipeline's sources need. In strict mode
// a missing key stops the pipeline before any request; otherwise it is only
// logged and the affected sources fail one by one.
func preflight(cfg config.Config, p config.PipelineConfig, log *zap.Logger) func() error {
	return func() error {
		if cfg.Provider == "fake" {
			return nil
		}
		missing := cfg.MissingKeys(provider.RequiredKeys(p.Sources()...)...)
		if len(missing) == 0 {
			return nil
		}
		if cfg.Strict {
			return fmt.Errorf("%w: %s", application.ErrConfigMissing, strings.Join(missing, ", "))
		}
		log.Warn("config.missing_keys", zap.String("pipeline", p.Name), zap.Strings("keys", missing))
		return nil
	}
}
