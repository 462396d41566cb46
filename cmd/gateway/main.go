package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/application"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/config"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/logger"
	"github.com/hashtalk/hashtalk/gateway/internal/interfaces/repl"
)

const (
	appName    = "hashtalk-gateway"
	appVersion = "0.1.0"
)

func main() {
	mode := "gateway"
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "repl":
			mode = "repl"
		case "version":
			fmt.Printf("%s v%s\n", appName, appVersion)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	logFormat := "json"
	logLevel := "info"
	if mode == "repl" {
		logFormat = "console"
		logLevel = "warn" // REPL 模式降噪
	}
	log, err := logger.NewLogger(logger.Config{
		Level:      logLevel,
		Format:     logFormat,
		OutputPath: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// First run writes a commented config.yaml to ~/.hashtalk.
	if err := config.Bootstrap(log); err != nil {
		log.Warn("Bootstrap failed, continuing with env and defaults", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch mode {
	case "repl":
		runREPL(ctx, cfg, log)
	default:
		runGateway(ctx, cfg, log)
	}
}

// runGateway starts the full gateway with all interfaces.
func runGateway(ctx context.Context, cfg *config.Config, log *zap.Logger) {
	log.Info("Starting HashTalk gateway",
		zap.String("name", appName),
		zap.String("version", appVersion),
	)

	app, err := application.NewApp(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}

	if err := app.Start(ctx); err != nil {
		log.Fatal("Failed to start application", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
		os.Exit(1)
	}
}

// runREPL starts the interactive terminal session.
func runREPL(ctx context.Context, cfg *config.Config, log *zap.Logger) {
	app, err := application.NewAppREPL(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}

	r := repl.New(
		app.ProcessMessageUseCase(),
		app.ListTokensUseCase(),
		repl.Config{
			Operator: cfg.Hedera.OperatorID,
			Network:  cfg.Hedera.Network,
		},
		log,
	)

	if err := r.Run(ctx); err != nil {
		log.Error("REPL exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s v%s — conversational Hedera token gateway

Usage:
  gateway           start the gateway (HTTP + WebSocket + Telegram)
  gateway repl      interactive terminal chat
  gateway version   print version
  gateway help      this help
`, appName, appVersion)
}
