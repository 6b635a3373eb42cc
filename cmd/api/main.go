// Command api serves read-only views of collected market data and snapshots.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"marketdata-collector/internal/bootstrap"
	"marketdata-collector/internal/config"
	infraconfig "marketdata-collector/internal/infrastructure/config"
	httpserver "marketdata-collector/internal/infrastructure/http"
	"marketdata-collector/internal/infrastructure/logx"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func init() { config.LoadDotEnv() }

func main() {
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := bootstrap.InitAPI(ctx)
	if err != nil {
		logger.Fatal("api.bootstrap_failed", zap.Error(err))
	}
	defer cleanup()

	server := &http.Server{
		Addr:              addr,
		Handler:           httpserver.NewRouter(srv),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api.listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("api.stopped", zap.Error(err))
		return
	}
	logger.Info("api.stopped")
}
