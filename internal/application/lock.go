package application

import "context"

// RunLock keeps two processes from running the same pipeline at once.
type RunLock interface {
	// TryLock returns ok=false when the key is already held.
	TryLock(ctx context.Context, key string) (unlock func(context.Context) error, ok bool, err error)
}

// NoopLock always grants the lock; used when no lock backend is configured.
type NoopLock struct{}

func (NoopLock) TryLock(context.Context, string) (func(context.Context) error, bool, error) {
	return func(context.Context) error { return nil }, true, nil
}
