package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/vshulcz/Twintick/internal/config"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadServerConfig(os.Args[1:], os.Stderr)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		logger.Fatal("listen failed", zap.String("addr", cfg.Address), zap.Error(err))
	}

	logger.Info("server started",
		zap.String("addr", ln.Addr().String()),
		zap.Duration("unit", cfg.TimeUnit),
		zap.Uint64("min_step", cfg.MinStep),
		zap.Uint64("max_step", cfg.MaxStep),
		zap.String("mode", cfg.StepMode),
		zap.Duration("query_timeout", cfg.QueryTimeout),
		zap.Bool("legacy_error_status", cfg.LegacyErrorStatus),
	)

	if err := run(ctx, cfg, logger, ln); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
