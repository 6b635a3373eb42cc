package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/config"
	"marketdata-collector/internal/domain"
	infraconfig "marketdata-collector/internal/infrastructure/config"
	httpserver "marketdata-collector/internal/infrastructure/http"
	"marketdata-collector/internal/infrastructure/httpx"
	"marketdata-collector/internal/infrastructure/logx"
	"marketdata-collector/internal/infrastructure/memstore"
	"marketdata-collector/internal/infrastructure/pg"
	"marketdata-collector/internal/infrastructure/provider"
	redisstore "marketdata-collector/internal/infrastructure/redis"
	"marketdata-collector/internal/infrastructure/snapshot"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for STORAGE=pg")

// Store is the persistence side of the collector, whichever backend serves it.
type Store struct {
	Loader       application.SymbolLoader
	Market       application.Sink[domain.CanonicalRecord]
	Macro        application.Sink[domain.MacroObservation]
	MarketReader application.MarketDataReader
	MacroReader  application.MacroReader
	Ping         func(ctx context.Context) error
}

// Sources holds one adapter per upstream source name.
type Sources struct {
	Bars  []application.BarSource
	Macro []application.MacroSource
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvidePipelines(cfg config.Config) (config.PipelinesFile, error) {
	return config.LoadPipelines(cfg.PipelinesFile)
}

func ProvideStore(ctx context.Context, log *zap.Logger, cfg config.Config, pf config.PipelinesFile) (Store, func(), error) {
	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return Store{}, func() {}, ErrMissingDBURL
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return Store{}, func() {}, err
		}
		if cfg.DBMigrate {
			if err := pg.RunMigrations(ctx, db); err != nil {
				db.Close()
				return Store{}, func() {}, err
			}
		}
		market, macro := pg.NewMarketDataRepo(db), pg.NewMacroRepo(db)
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return Store{
			Loader:       pg.NewSymbolRepo(db),
			Market:       market,
			Macro:        macro,
			MarketReader: market,
			MacroReader:  macro,
			Ping:         db.Ping,
		}, cleanup, nil
	case "memory":
		// The in-memory registry is seeded with every symbol the pipelines name.
		st := memstore.New()
		for _, p := range pf.Pipelines {
			aliases := p.AliasTable()
			for _, s := range p.DomainSeries() {
				st.EnsureSymbol(aliases.Canonical(s))
			}
		}
		log.Warn("storage.in_memory", zap.String("hint", "data is lost on exit"))
		return Store{
			Loader:       st,
			Market:       st.Market(),
			Macro:        st.Macro(),
			MarketReader: st,
			MacroReader:  st,
			Ping:         st.Ping,
		}, func() {}, nil
	default:
		return Store{}, func() {}, fmt.Errorf("unsupported STORAGE=%q", cfg.Storage)
	}
}

func ProvideRegistry(ctx context.Context, st Store, log *zap.Logger) *application.Registry {
	return application.NewRegistry(ctx, st.Loader, log)
}

func ProvideRunLock(cfg config.Config) (application.RunLock, func(), error) {
	switch cfg.LockBackend {
	case "", "none":
		return application.NoopLock{}, func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return redisstore.New(client, cfg.LockTTL), func() { _ = client.Close() }, nil
	default:
		return nil, func() {}, fmt.Errorf("unsupported LOCK_BACKEND=%q", cfg.LockBackend)
	}
}

func ProvideSnapshots() application.SnapshotStore { return snapshot.NewFileWriter() }

func newClient(cfg config.Config, headers map[string]string) *httpx.Client {
	c := httpx.New(cfg.RequestTimeout)
	c.Headers["User-Agent"] = infraconfig.DefaultUserAgent
	for k, v := range headers {
		c.Headers[k] = v
	}
	return c
}

// ProvideSources builds every known source. With PROVIDER=fake each is
// replaced by a synthetic series under the same name.
func ProvideSources(cfg config.Config) Sources {
	if cfg.Provider == "fake" {
		var s Sources
		for _, name := range []string{
			provider.SourceAlphaVantageEquity, provider.SourceAlphaVantageFX, provider.SourceAlphaVantageCommodity,
			provider.SourceYahoo, provider.SourceEIA, provider.SourceCoinGecko,
		} {
			s.Bars = append(s.Bars, provider.NewFake(name, 100))
		}
		s.Macro = append(s.Macro, provider.NewFake(provider.SourceFRED, 2.5))
		return s
	}

	av := &provider.AlphaVantage{
		BaseURL: cfg.AlphaVantageBase,
		APIKey:  cfg.APIKey(config.KeyAlphaVantage),
		Client:  newClient(cfg, nil),
	}
	return Sources{
		Bars: []application.BarSource{
			provider.AlphaVantageEquity{AlphaVantage: av},
			provider.AlphaVantageFX{AlphaVantage: av},
			provider.AlphaVantageCommodity{AlphaVantage: av},
			&provider.Yahoo{BaseURL: cfg.YahooBase, Client: newClient(cfg, nil)},
			&provider.EIA{
				BaseURL: cfg.EIABase,
				APIKey:  cfg.APIKey(config.KeyEIA),
				Client: newClient(cfg, map[string]string{
					"Accept-Language": "en-US,en;q=0.9",
					"Connection":      "keep-alive",
				}),
			},
			&provider.CoinGecko{BaseURL: cfg.CoinGeckoBase, APIKey: cfg.APIKey(config.KeyCoinGecko), Client: newClient(cfg, nil)},
		},
		Macro: []application.MacroSource{
			&provider.FRED{BaseURL: cfg.FREDBase, APIKey: cfg.APIKey(config.KeyFRED), Client: newClient(cfg, nil)},
		},
	}
}

func ProvideRunner(
	cfg config.Config,
	pf config.PipelinesFile,
	reg *application.Registry,
	st Store,
	src Sources,
	snaps application.SnapshotStore,
	lock application.RunLock,
	log *zap.Logger,
) (*application.Runner, error) {
	jobs := make([]application.Job, 0, len(pf.Pipelines))
	for _, p := range pf.Pipelines {
		j, err := buildJob(cfg, p, reg, st, src, snaps, log)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	r := application.NewRunner(jobs, lock, log)
	r.Refresh = reg.Reload
	return r, nil
}

func ProvideAPIServer(cfg config.Config, pf config.PipelinesFile, reg *application.Registry, st Store, snaps application.SnapshotStore) *httpserver.Server {
	paths := make(map[string]string, len(pf.Pipelines))
	for _, p := range pf.Pipelines {
		paths[p.Name] = p.SnapshotPath(cfg.SnapshotDir)
	}
	srv := httpserver.NewServer(reg, st.MarketReader, st.MacroReader, snaps, paths)
	srv.SetReadyCheck(st.Ping)
	return srv
}
