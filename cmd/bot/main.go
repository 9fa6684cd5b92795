package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/HanovichS/PixelHub/internal/app"
	"github.com/HanovichS/PixelHub/internal/config"
	loginfra "github.com/HanovichS/PixelHub/internal/infra/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("load config: %v", err)
		os.Exit(1)
	}

	logger, err := loginfra.New(cfg.Log.Level)
	if err != nil {
		log.Printf("create logger: %v", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("bot starting", zap.String("env", cfg.Env))
	runErr := application.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}

	if runErr != nil {
		logger.Error("bot stopped with error", zap.Error(runErr))
		os.Exit(1)
	}
	logger.Info("bot stopped")
}
