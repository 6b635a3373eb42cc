package application

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrUnresolvedSymbol means the registry has no id for a symbol; the
	// symbol is skipped, the batch goes on.
	ErrUnresolvedSymbol = errors.New("symbol not in registry")
	// ErrConfigMissing means a credential a source needs is absent.
	ErrConfigMissing   = errors.New("configuration missing")
	ErrUnknownSource   = errors.New("unknown source")
	ErrUnknownPipeline = errors.New("unknown pipeline")
	ErrLocked          = errors.New("pipeline locked by another run")
)

// UpstreamError wraps a network, status or envelope failure for one symbol.
type UpstreamError struct {
	Source string
	Symbol string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.Symbol, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError is a snapshot or upsert failure for a whole batch.
type PersistenceError struct {
	Pipeline string
	Stage    string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("pipeline %s: %s: %v", e.Pipeline, e.Stage, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
