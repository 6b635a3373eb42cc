package application

import (
	"context"
	"errors"
	"fmt"

	"marketdata-collector/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job is one independently run pipeline.
type Job interface {
	PipelineName() string
	Run(ctx context.Context) (Report, error)
	Replay(ctx context.Context) (Report, error)
}

// Omission records a series that produced nothing in a run.
type Omission struct {
	Code   string
	Source string
	Err    error
}

// Unresolved reports whether the omission is a registry miss rather than
// an upstream failure.
func (o Omission) Unresolved() bool { return errors.Is(o.Err, ErrUnresolvedSymbol) }

type Report struct {
	Pipeline  string
	RunID     string
	Requested int
	Fetched   int
	// Rows inserted or changed; a replay of stored data writes 0.
	Written int
	Omitted []Omission
	Skipped bool
}

// Pipeline fetches every configured series in order, then snapshots the
// whole batch once and upserts it once. A failing series only drops its
// own records.
type Pipeline[T any] struct {
	Name         string
	Series       []domain.Series
	Window       domain.Window
	Adapter      Adapter[T]
	Snapshots    SnapshotStore
	SnapshotPath string
	Sink         Sink[T]
	// Preflight runs before any fetch; an error aborts the run.
	Preflight func() error
	Log       *zap.Logger
}

var (
	_ Job = (*Pipeline[domain.CanonicalRecord])(nil)
	_ Job = (*Pipeline[domain.MacroObservation])(nil)
)

func (p *Pipeline[T]) PipelineName() string { return p.Name }

func (p *Pipeline[T]) logger(runID string) *zap.Logger {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return log.With(zap.String("pipeline", p.Name), zap.String("run_id", runID))
}

func (p *Pipeline[T]) Run(ctx context.Context) (Report, error) {
	rep := Report{Pipeline: p.Name, RunID: uuid.NewString(), Requested: len(p.Series)}
	log := p.logger(rep.RunID)

	if p.Preflight != nil {
		if err := p.Preflight(); err != nil {
			log.Error("pipeline.preflight_failed", zap.Error(err))
			return rep, fmt.Errorf("pipeline %s: %w", p.Name, err)
		}
	}

	batch := []T{}
	for _, s := range p.Series {
		symLog := log.With(zap.String("symbol", s.Code), zap.String("source", s.Source))
		recs, err := p.Adapter.Fetch(ctx, s, p.Window)
		if err != nil {
			rep.Omitted = append(rep.Omitted, Omission{Code: s.Code, Source: s.Source, Err: err})
			if errors.Is(err, ErrUnresolvedSymbol) {
				symLog.Warn("pipeline.symbol_unresolved")
			} else {
				symLog.Warn("pipeline.fetch_failed", zap.Error(err))
			}
			continue
		}
		symLog.Info("pipeline.fetched", zap.Int("records", len(recs)))
		batch = append(batch, recs...)
	}
	rep.Fetched = len(batch)

	if p.SnapshotPath != "" && p.Snapshots != nil {
		if err := p.Snapshots.Write(ctx, p.SnapshotPath, batch); err != nil {
			perr := &PersistenceError{Pipeline: p.Name, Stage: "snapshot", Err: err}
			log.Error("pipeline.snapshot_failed", zap.Error(err))
			return rep, perr
		}
		log.Info("pipeline.snapshot_written", zap.String("path", p.SnapshotPath), zap.Int("records", len(batch)))
	}

	n, err := p.upsert(ctx, log, batch)
	rep.Written = n
	return rep, err
}

// Replay upserts the last snapshot without fetching anything.
func (p *Pipeline[T]) Replay(ctx context.Context) (Report, error) {
	rep := Report{Pipeline: p.Name, RunID: uuid.NewString()}
	log := p.logger(rep.RunID)
	if p.SnapshotPath == "" || p.Snapshots == nil {
		return rep, fmt.Errorf("pipeline %s: no snapshot configured", p.Name)
	}
	var batch []T
	if err := p.Snapshots.Read(ctx, p.SnapshotPath, &batch); err != nil {
		log.Error("pipeline.snapshot_read_failed", zap.Error(err))
		return rep, &PersistenceError{Pipeline: p.Name, Stage: "snapshot read", Err: err}
	}
	rep.Fetched = len(batch)
	log.Info("pipeline.snapshot_loaded", zap.String("path", p.SnapshotPath), zap.Int("records", len(batch)))
	n, err := p.upsert(ctx, log, batch)
	rep.Written = n
	return rep, err
}

func (p *Pipeline[T]) upsert(ctx context.Context, log *zap.Logger, batch []T) (int, error) {
	if len(batch) == 0 {
		log.Info("pipeline.empty_batch")
		return 0, nil
	}
	n, err := p.Sink.Upsert(ctx, batch)
	if err != nil {
		log.Error("pipeline.upsert_failed", zap.Int("records", len(batch)), zap.Error(err))
		return 0, &PersistenceError{Pipeline: p.Name, Stage: "upsert", Err: err}
	}
	log.Info("pipeline.upserted", zap.Int("rows", n))
	return n, nil
}
