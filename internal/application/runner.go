package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const lockPrefix = "marketdata-collector:lock:"

// Runner drives several pipelines one after another. It is the only place
// that turns pipeline outcomes into an overall success or failure.
type Runner struct {
	Jobs []Job
	Lock RunLock
	// Refresh re-reads shared state such as the symbol registry between
	// scheduled runs. Nil means nothing to refresh.
	Refresh func(ctx context.Context) error
	Log     *zap.Logger
}

func NewRunner(jobs []Job, lock RunLock, log *zap.Logger) *Runner {
	if lock == nil {
		lock = NoopLock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Jobs: jobs, Lock: lock, Log: log}
}

func (r *Runner) Names() []string {
	out := make([]string, 0, len(r.Jobs))
	for _, j := range r.Jobs {
		out = append(out, j.PipelineName())
	}
	return out
}

// Run fetches and persists the named pipelines, or all when names is empty.
// The returned error joins every failed pipeline; siblings always run.
func (r *Runner) Run(ctx context.Context, names ...string) ([]Report, error) {
	return r.each(ctx, names, Job.Run)
}

// Replay re-applies the last snapshot of the named pipelines.
func (r *Runner) Replay(ctx context.Context, names ...string) ([]Report, error) {
	return r.each(ctx, names, Job.Replay)
}

func (r *Runner) each(ctx context.Context, names []string, op func(Job, context.Context) (Report, error)) ([]Report, error) {
	jobs, err := r.selectJobs(names)
	if err != nil {
		return nil, err
	}
	reports := make([]Report, 0, len(jobs))
	var errs []error
	for _, j := range jobs {
		rep, err := r.runOne(ctx, j, op)
		reports = append(reports, rep)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

func (r *Runner) runOne(ctx context.Context, j Job, op func(Job, context.Context) (Report, error)) (Report, error) {
	name := j.PipelineName()
	log := r.Log.With(zap.String("pipeline", name))

	unlock, ok, err := r.Lock.TryLock(ctx, lockPrefix+name)
	if err != nil {
		log.Error("runner.lock_failed", zap.Error(err))
		return Report{Pipeline: name}, fmt.Errorf("pipeline %s: lock: %w", name, err)
	}
	if !ok {
		log.Warn("runner.pipeline_locked")
		return Report{Pipeline: name, Skipped: true}, nil
	}
	defer func() {
		if err := unlock(context.Background()); err != nil {
			log.Warn("runner.unlock_failed", zap.Error(err))
		}
	}()

	rep, err := op(j, ctx)
	log.Info("runner.pipeline_done",
		zap.String("run_id", rep.RunID),
		zap.Int("requested", rep.Requested),
		zap.Int("fetched", rep.Fetched),
		zap.Int("written", rep.Written),
		zap.Int("omitted", len(rep.Omitted)),
		zap.Bool("failed", err != nil),
	)
	return rep, err
}

func (r *Runner) selectJobs(names []string) ([]Job, error) {
	if len(names) == 0 {
		return r.Jobs, nil
	}
	byName := make(map[string]Job, len(r.Jobs))
	for _, j := range r.Jobs {
		byName[j.PipelineName()] = j
	}
	out := make([]Job, 0, len(names))
	for _, n := range names {
		j, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPipeline, n)
		}
		out = append(out, j)
	}
	return out, nil
}
