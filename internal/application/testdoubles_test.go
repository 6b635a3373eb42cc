package application

import (
	"context"
	"errors"
	"sync"

	"marketdata-collector/internal/domain"
)

var (
	ErrRepo = errors.New("repo error")
)

type fakeLoader struct {
	symbols map[string]int64
	err     error
	calls   int
}

func (f *fakeLoader) LoadSymbols(context.Context) (map[string]int64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := make(map[string]int64, len(f.symbols))
	for k, v := range f.symbols {
		cp[k] = v
	}
	return cp, nil
}

type fakeBarSource struct {
	name  string
	bars  map[string][]domain.Bar
	errs  map[string]error
	calls []string
}

func (f *fakeBarSource) Name() string { return f.name }

func (f *fakeBarSource) FetchBars(_ context.Context, s domain.Series, _ domain.Window) ([]domain.Bar, error) {
	f.calls = append(f.calls, s.Code)
	if err := f.errs[s.Code]; err != nil {
		return nil, err
	}
	return f.bars[s.Code], nil
}

type fakeMacroSource struct {
	points []domain.MacroPoint
	err    error
}

func (fakeMacroSource) Name() string { return "fred" }

func (f fakeMacroSource) FetchMacro(context.Context, domain.Series, domain.Window) ([]domain.MacroPoint, error) {
	return f.points, f.err
}

type memSnapshots struct {
	mu     sync.Mutex
	files  map[string]any
	err    error
	writes []string
}

func (m *memSnapshots) Write(_ context.Context, path string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, path)
	if m.err != nil {
		return m.err
	}
	if m.files == nil {
		m.files = map[string]any{}
	}
	m.files[path] = v
	return nil
}

func (m *memSnapshots) Read(_ context.Context, path string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.files[path]
	if !ok {
		return ErrNotFound
	}
	dst, ok := v.(*[]domain.CanonicalRecord)
	if !ok {
		return errors.New("unsupported snapshot type")
	}
	*dst = append([]domain.CanonicalRecord(nil), src.([]domain.CanonicalRecord)...)
	return nil
}

// recordingSink keeps the order of calls so tests can check snapshot-then-upsert.
type recordingSink struct {
	rows    map[domain.Key]domain.CanonicalRecord
	err     error
	batches int
	onCall  func()
}

func (s *recordingSink) Upsert(_ context.Context, recs []domain.CanonicalRecord) (int, error) {
	if s.onCall != nil {
		s.onCall()
	}
	s.batches++
	if s.err != nil {
		return 0, s.err
	}
	if s.rows == nil {
		s.rows = map[domain.Key]domain.CanonicalRecord{}
	}
	for _, r := range recs {
		s.rows[r.Key()] = domain.MergeRecord(s.rows[r.Key()], r)
	}
	return len(recs), nil
}

type fakeLock struct {
	held     map[string]bool
	err      error
	released []string
}

func (f *fakeLock) TryLock(_ context.Context, key string) (func(context.Context) error, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.held[key] {
		return nil, false, nil
	}
	return func(context.Context) error {
		f.released = append(f.released, key)
		return nil
	}, true, nil
}
