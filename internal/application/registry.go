package application

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Registry is the in-memory symbol -> symbol_id cache. It is loaded once,
// eagerly, and serves every lookup of a run from memory.
type Registry struct {
	loader SymbolLoader
	log    *zap.Logger

	mu      sync.RWMutex
	symbols map[string]int64
}

var _ SymbolResolver = (*Registry)(nil)

// NewRegistry loads the registry. A load failure is logged and leaves the
// registry empty, so every Resolve fails closed.
func NewRegistry(ctx context.Context, loader SymbolLoader, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{loader: loader, log: log, symbols: map[string]int64{}}
	if err := r.Reload(ctx); err != nil {
		log.Warn("registry.load_failed", zap.Error(err))
	}
	return r
}

// StaticRegistry serves a fixed mapping.
func StaticRegistry(symbols map[string]int64) *Registry {
	cp := make(map[string]int64, len(symbols))
	for k, v := range symbols {
		cp[k] = v
	}
	return &Registry{log: zap.NewNop(), symbols: cp}
}

// Reload replaces the cache with a fresh read. On error the previous
// contents are kept.
func (r *Registry) Reload(ctx context.Context) error {
	if r.loader == nil {
		return nil
	}
	symbols, err := r.loader.LoadSymbols(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.symbols = symbols
	r.mu.Unlock()
	r.log.Info("registry.loaded", zap.Int("symbols", len(symbols)))
	return nil
}

func (r *Registry) Resolve(symbol string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.symbols[symbol]
	return id, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.symbols)
}

// Symbols returns a copy of the cached mapping.
func (r *Registry) Symbols() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int64, len(r.symbols))
	for k, v := range r.symbols {
		out[k] = v
	}
	return out
}
