package application

import (
	"context"
	"fmt"

	"marketdata-collector/internal/domain"
)

// MarketAdapter normalizes bar sources into canonical records for one
// pipeline. Resolution happens before the network call: an unmapped symbol
// never reaches the provider.
type MarketAdapter struct {
	Resolver SymbolResolver
	Aliases  domain.AliasTable
	Sources  map[string]BarSource
}

var _ Adapter[domain.CanonicalRecord] = (*MarketAdapter)(nil)

func NewMarketAdapter(resolver SymbolResolver, aliases domain.AliasTable, sources ...BarSource) *MarketAdapter {
	m := make(map[string]BarSource, len(sources))
	for _, s := range sources {
		m[s.Name()] = s
	}
	return &MarketAdapter{Resolver: resolver, Aliases: aliases, Sources: m}
}

// Fetch returns an empty result together with the reason whenever the
// series cannot be delivered; it never returns partial data.
func (a *MarketAdapter) Fetch(ctx context.Context, s domain.Series, w domain.Window) ([]domain.CanonicalRecord, error) {
	symbol := a.Aliases.Canonical(s)
	id, ok := a.Resolver.Resolve(symbol)
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnresolvedSymbol)
	}
	src, ok := a.Sources[s.Source]
	if !ok {
		return nil, &UpstreamError{Source: s.Source, Symbol: symbol, Err: ErrUnknownSource}
	}
	bars, err := src.FetchBars(ctx, s, w)
	if err != nil {
		return nil, &UpstreamError{Source: s.Source, Symbol: symbol, Err: err}
	}
	bars = domain.Latest(w, bars)
	out := make([]domain.CanonicalRecord, 0, len(bars))
	for _, b := range bars {
		out = append(out, b.Record(id))
	}
	return out, nil
}

// MacroAdapter is the macro-indicator counterpart of MarketAdapter.
type MacroAdapter struct {
	Resolver SymbolResolver
	Aliases  domain.AliasTable
	Sources  map[string]MacroSource
}

var _ Adapter[domain.MacroObservation] = (*MacroAdapter)(nil)

func NewMacroAdapter(resolver SymbolResolver, aliases domain.AliasTable, sources ...MacroSource) *MacroAdapter {
	m := make(map[string]MacroSource, len(sources))
	for _, s := range sources {
		m[s.Name()] = s
	}
	return &MacroAdapter{Resolver: resolver, Aliases: aliases, Sources: m}
}

func (a *MacroAdapter) Fetch(ctx context.Context, s domain.Series, w domain.Window) ([]domain.MacroObservation, error) {
	symbol := a.Aliases.Canonical(s)
	id, ok := a.Resolver.Resolve(symbol)
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnresolvedSymbol)
	}
	src, ok := a.Sources[s.Source]
	if !ok {
		return nil, &UpstreamError{Source: s.Source, Symbol: symbol, Err: ErrUnknownSource}
	}
	points, err := src.FetchMacro(ctx, s, w)
	if err != nil {
		return nil, &UpstreamError{Source: s.Source, Symbol: symbol, Err: err}
	}
	points = domain.Latest(w, points)
	out := make([]domain.MacroObservation, 0, len(points))
	for _, p := range points {
		out = append(out, p.Observation(id))
	}
	return out, nil
}
