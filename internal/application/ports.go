package application

import (
	"context"

	"marketdata-collector/internal/domain"
)

// SymbolLoader reads the full symbol registry in one query.
type SymbolLoader interface {
	LoadSymbols(ctx context.Context) (map[string]int64, error)
}

type SymbolResolver interface {
	Resolve(symbol string) (int64, bool)
}

// BarSource fetches OHLC-shaped observations from one upstream provider.
type BarSource interface {
	Name() string
	FetchBars(ctx context.Context, s domain.Series, w domain.Window) ([]domain.Bar, error)
}

// MacroSource fetches single-valued indicator readings.
type MacroSource interface {
	Name() string
	FetchMacro(ctx context.Context, s domain.Series, w domain.Window) ([]domain.MacroPoint, error)
}

// Adapter turns one configured series into resolved, bounded records.
type Adapter[T any] interface {
	Fetch(ctx context.Context, s domain.Series, w domain.Window) ([]T, error)
}

type SnapshotStore interface {
	Write(ctx context.Context, path string, v any) error
	Read(ctx context.Context, path string, v any) error
}

// Sink merges a batch keyed by (symbol_id, date) and reports rows written.
// A failed batch leaves nothing behind.
type Sink[T any] interface {
	Upsert(ctx context.Context, records []T) (int, error)
}

type MarketDataReader interface {
	LatestMarketData(ctx context.Context, symbolID int64, limit int) ([]domain.CanonicalRecord, error)
}

type MacroReader interface {
	LatestMacro(ctx context.Context, symbolID int64, limit int) ([]domain.MacroObservation, error)
}

// Worker keeps collecting on its own schedule until ctx is canceled.
type Worker interface{ Start(ctx context.Context) }
