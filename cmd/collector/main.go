// Command collector fetches, snapshots and upserts the configured pipelines.
//
//	collector                      run every pipeline once
//	collector equities forex       run the named pipelines
//	collector -replay commodities  upsert the last snapshot without fetching
//	collector -every 24h           keep running on a schedule
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/bootstrap"
	"marketdata-collector/internal/config"
	"marketdata-collector/internal/infrastructure/logx"
	"marketdata-collector/internal/infrastructure/worker"

	"go.uber.org/zap"
)

func init() { config.LoadDotEnv() }

func main() {
	replay := flag.Bool("replay", false, "upsert the last snapshot instead of fetching")
	every := flag.Duration("every", config.Load().ScheduleEvery, "run on this interval until interrupted (0 runs once)")
	list := flag.Bool("list", false, "print pipeline names and exit")
	flag.Parse()
	os.Exit(run(*replay, *every, *list, flag.Args()))
}

func run(replay bool, every time.Duration, list bool, names []string) int {
	log := logx.L()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := bootstrap.InitRunner(ctx)
	if err != nil {
		log.Error("bootstrap runner", zap.Error(err))
		return 1
	}
	defer cleanup()

	if list {
		for _, n := range runner.Names() {
			fmt.Println(n)
		}
		return 0
	}

	if every > 0 && !replay {
		var w application.Worker = &worker.Scheduler{
			Run:       runner.Run,
			Pipelines: names,
			Every:     every,
			Refresh:   runner.Refresh,
			Log:       log,
		}
		w.Start(ctx)
		return 0
	}

	op := runner.Run
	if replay {
		op = runner.Replay
	}
	reports, err := op(ctx, names...)
	summarize(log, reports)
	if err != nil {
		log.Error("collector.failed", zap.Error(err))
		return 1
	}
	return 0
}

func summarize(log *zap.Logger, reports []application.Report) {
	for _, r := range reports {
		unresolved := 0
		for _, o := range r.Omitted {
			if o.Unresolved() {
				unresolved++
			}
		}
		log.Info("collector.report",
			zap.String("pipeline", r.Pipeline),
			zap.String("run_id", r.RunID),
			zap.Bool("skipped", r.Skipped),
			zap.Int("requested", r.Requested),
			zap.Int("fetched", r.Fetched),
			zap.Int("written", r.Written),
			zap.Int("omitted", len(r.Omitted)),
			zap.Int("unresolved", unresolved),
		)
	}
}
