package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/config"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/observability"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logFile := observability.SetupLogging(cfg.LogFile)

	if envErr != nil {
		log.Println("No .env file loaded, using process environment.")
	}

	code := run(cfg)
	_ = logFile.Close()
	os.Exit(code)
}

func run(cfg config.Config) int {
	if err := cfg.Validate(); err != nil {
		log.Printf("Critical: invalid configuration: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		log.Printf("Critical: %v", err)
		return 1
	}
	defer a.Close()

	return execute(ctx, a, cfg.PushgatewayURL, time.Now())
}

// execute runs one pass and pushes metrics whatever the outcome.
func execute(ctx context.Context, a *app, pushgatewayURL string, today time.Time) int {
	a.logPreviousRun(ctx)

	_, err := a.orchestrator.Run(ctx, today)

	if pushErr := observability.Push(context.WithoutCancel(ctx), pushgatewayURL); pushErr != nil {
		log.Printf("Failed to push metrics: %v", pushErr)
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrLoginFailed):
		log.Printf("Sync aborted: %v", err)
	default:
		log.Printf("Sync interrupted: %v", err)
	}
	return 1
}
