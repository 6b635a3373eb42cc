// Package memstore keeps symbols, market data and macro readings in memory
// with the same merge policy as the Postgres repos. It backs STORAGE=memory
// and the tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/domain"
)

type Store struct {
	mu      sync.RWMutex
	nextID  int64
	symbols map[string]int64
	market  map[domain.Key]domain.CanonicalRecord
	macro   map[domain.Key]domain.MacroObservation
}

var (
	_ application.SymbolLoader                  = (*Store)(nil)
	_ application.MarketDataReader              = (*Store)(nil)
	_ application.MacroReader                   = (*Store)(nil)
	_ application.Sink[domain.CanonicalRecord]  = (*MarketSink)(nil)
	_ application.Sink[domain.MacroObservation] = (*MacroSink)(nil)
)

func New() *Store {
	return &Store{
		symbols: map[string]int64{},
		market:  map[domain.Key]domain.CanonicalRecord{},
		macro:   map[domain.Key]domain.MacroObservation{},
	}
}

// EnsureSymbol registers symbol if needed and returns its id.
func (s *Store) EnsureSymbol(symbol string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.symbols[symbol]; ok {
		return id
	}
	s.nextID++
	s.symbols[symbol] = s.nextID
	return s.nextID
}

func (s *Store) LoadSymbols(context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(s.symbols))
	for k, v := range s.symbols {
		out[k] = v
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

// Market returns the market_data sink view of the store.
func (s *Store) Market() *MarketSink { return &MarketSink{s: s} }

// Macro returns the macro_indicators sink view of the store.
func (s *Store) Macro() *MacroSink { return &MacroSink{s: s} }

type MarketSink struct{ s *Store }

// Upsert validates the whole batch before touching the table, so a bad
// record leaves the store unchanged. It counts new or changed rows only.
func (m *MarketSink) Upsert(_ context.Context, records []domain.CanonicalRecord) (int, error) {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return 0, fmt.Errorf("market_data %d %s: %w", r.SymbolID, r.Date, err)
		}
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	written := 0
	for _, r := range records {
		stored, ok := m.s.market[r.Key()]
		merged := domain.MergeRecord(stored, r)
		if !ok || !merged.SameValues(stored) {
			m.s.market[r.Key()] = merged
			written++
		}
	}
	return written, nil
}

type MacroSink struct{ s *Store }

func (m *MacroSink) Upsert(_ context.Context, obs []domain.MacroObservation) (int, error) {
	for _, o := range obs {
		if err := o.Validate(); err != nil {
			return 0, fmt.Errorf("macro_indicators %d %s: %w", o.SymbolID, o.Date, err)
		}
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	written := 0
	for _, o := range obs {
		stored, ok := m.s.macro[o.Key()]
		merged := domain.MergeMacro(stored, o)
		if !ok || !merged.SameValues(stored) {
			m.s.macro[o.Key()] = merged
			written++
		}
	}
	return written, nil
}

func (s *Store) LatestMarketData(_ context.Context, symbolID int64, limit int) ([]domain.CanonicalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.CanonicalRecord{}
	for k, r := range s.market {
		if k.SymbolID == symbolID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Date.Before(out[i].Date) })
	return head(out, limit), nil
}

func (s *Store) LatestMacro(_ context.Context, symbolID int64, limit int) ([]domain.MacroObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.MacroObservation{}
	for k, o := range s.macro {
		if k.SymbolID == symbolID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Date.Before(out[i].Date) })
	return head(out, limit), nil
}

// Len reports stored market and macro row counts.
func (s *Store) Len() (market, macro int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.market), len(s.macro)
}

func head[T any](xs []T, n int) []T {
	if n > 0 && len(xs) > n {
		return xs[:n]
	}
	return xs
}
