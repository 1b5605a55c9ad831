package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/adapters/cache"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/adapters/garmin"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/adapters/notion"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/adapters/repository"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/config"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/services"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/observability"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type app struct {
	orchestrator *services.Orchestrator
	runs         domain.SyncRunRepository
	closers      []io.Closer
}

// newApp wires every adapter from cfg. A non-nil tables replaces the Notion
// client.
func newApp(ctx context.Context, cfg config.Config, tables domain.TableClient) (*app, error) {
	a := &app{}

	var fitness domain.FitnessClient = garmin.NewClient(cfg.GarminBaseURL, cfg.GarminToken)
	if cfg.CacheEnabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("[CACHE] Redis unavailable, fetching live: %v", err)
		} else {
			a.closers = append(a.closers, rdb)
			fitness = cache.NewCachedFitnessClient(fitness, rdb, cfg.FetchCacheTTL)
			log.Println("[CACHE] Fetch cache enabled.")
		}
	}

	if tables == nil {
		tables = notion.NewClient(cfg.NotionToken)
	}

	runs, err := a.openJournal(ctx, cfg.DatabaseURL)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.runs = runs

	policies := services.NewRetryPolicies(services.RetrySettings{
		BaseDelay:    cfg.RateLimitBaseDelay,
		MaxRetries:   cfg.RateLimitMaxRetries,
		RequestPause: cfg.RequestPause,
		OnRetry:      observability.RecordRateLimitRetry,
	})

	if !cfg.WellnessEnabled() {
		log.Println("NOTION_WELLNESS_DB_ID not set, wellness sync disabled.")
	}

	a.orchestrator = services.NewOrchestrator(services.OrchestratorDependencies{
		Fitness:     fitness,
		Collector:   services.NewStepsCollector(fitness, policies.Steps, cfg.LookbackDays),
		Steps:       services.NewStepsSyncService(tables, cfg.StepsTableID),
		Wellness:    services.NewWellnessSyncService(fitness, tables, cfg.WellnessTableID, cfg.ActivityTableID, policies.Sleep),
		LoginPolicy: policies.Login,
		Runs:        runs,
	})
	return a, nil
}

func (a *app) openJournal(ctx context.Context, dsn string) (domain.SyncRunRepository, error) {
	if dsn == "" {
		return repository.NewInMemorySyncRunRepository(), nil
	}

	log.Println("Connecting to journal database...")
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect journal database: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	a.closers = append(a.closers, db)

	repo := repository.NewPostgresSyncRunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	log.Println("Journal database connected successfully.")
	return repo, nil
}

func (a *app) logPreviousRun(ctx context.Context) {
	recent, err := a.runs.ListRecent(ctx, 1)
	if err != nil {
		log.Printf("[JOURNAL] Failed to read previous run: %v", err)
		return
	}
	if len(recent) == 0 {
		return
	}

	prev := recent[0]
	log.Printf("[JOURNAL] Previous run %s started %s ended %s: %d writes, %d failures",
		prev.ID, prev.StartedAt.Format(time.RFC3339), prev.State, prev.Writes(), prev.Failures())
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Printf("Close error: %v", err)
		}
	}
}
