package worker

import (
	"context"
	"fmt"
	"time"

	"marketdata-collector/internal/application"

	"go.uber.org/zap"
)

// RunFunc runs the selected pipelines once.
type RunFunc func(ctx context.Context, names ...string) ([]application.Report, error)

var _ application.Worker = (*Scheduler)(nil)

// Scheduler runs the pipelines immediately and then on every tick until the
// context is canceled. A failed or panicking run is logged and the next tick
// runs again.
type Scheduler struct {
	Run       RunFunc
	Pipelines []string
	Every     time.Duration
	// Refresh, when set, runs before every scheduled tick after the first.
	// A failed refresh is logged and the run goes ahead on the old state.
	Refresh func(ctx context.Context) error
	Log     *zap.Logger
}

func (s *Scheduler) Start(ctx context.Context) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	if s.Every <= 0 {
		s.Every = 24 * time.Hour
	}

	t := time.NewTicker(s.Every)
	defer t.Stop()

	log.Info("scheduler.started", zap.Duration("every", s.Every), zap.Strings("pipelines", s.Pipelines))
	s.tick(ctx, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler.stopped")
			return
		case <-t.C:
			if s.Refresh != nil {
				if err := s.Refresh(ctx); err != nil {
					log.Warn("scheduler.refresh_failed", zap.Error(err))
				}
			}
			s.tick(ctx, log)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("scheduler.panic", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	started := time.Now()
	reports, err := s.Run(ctx, s.Pipelines...)
	fields := []zap.Field{zap.Int("pipelines", len(reports)), zap.Duration("took", time.Since(started))}
	if err != nil {
		log.Warn("scheduler.run_failed", append(fields, zap.Error(err))...)
		return
	}
	log.Info("scheduler.run_done", fields...)
}
