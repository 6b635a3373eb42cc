package logx

import (
	"os"
	"path/filepath"
	"strings"

	"marketdata-collector/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

func init() {
	cfg := config.Load()
	logger = New(cfg.LogLevel, cfg.Env).With(zap.String("service", filepath.Base(os.Args[0])))
}

// New builds a JSON logger at level. ENV=local switches to console output.
func New(level, env string) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	if env == "local" {
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
	}
	l, err := zapCfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
	return l.With(zap.String("env", env))
}

// L returns the package-level logger instance.
func L() *zap.Logger {
	return logger
}
