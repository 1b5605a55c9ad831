package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/adapters/garmin/garmintest"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/adapters/table"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/config"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

const (
	stepsTable    = "steps-db"
	wellnessTable = "wellness-db"
	activityTable = "activity-db"
)

func testConfig(srv *garmintest.Server) config.Config {
	return config.Config{
		GarminToken:         srv.Token,
		GarminBaseURL:       srv.URL,
		NotionToken:         "secret_test",
		StepsTableID:        stepsTable,
		WellnessTableID:     wellnessTable,
		ActivityTableID:     activityTable,
		LookbackDays:        2,
		RateLimitBaseDelay:  time.Millisecond,
		RateLimitMaxRetries: 3,
		RequestPause:        time.Millisecond,
	}
}

func TestEndToEnd_SyncLifecycle(t *testing.T) {
	ctx := context.Background()
	today, err := domain.ParseDay("2024-01-07")
	require.NoError(t, err)

	srv := garmintest.NewServer("garmin-e2e-token")
	defer srv.Close()

	srv.SetSteps("2024-01-05", 8000, 10000, 6400)
	srv.SetSteps("2024-01-06", 11250, 10000, 9000)
	srv.SetStepsWithoutGoal("2024-01-07", 4200)
	srv.SetSleep("2024-01-06", `{"dailySleepDTO":{"sleepTimeSeconds":27000,"sleepScores":{"overall":{"value":88}}}}`)

	cfg := testConfig(srv)
	require.NoError(t, cfg.Validate())

	tables := table.NewInMemoryTable()
	a, err := newApp(ctx, cfg, tables)
	require.NoError(t, err)
	defer a.Close()

	t.Run("1. First Run Creates Rows", func(t *testing.T) {
		srv.RateLimit(garmintest.KindSteps, 1)

		code := execute(ctx, a, "", today)

		assert.Equal(t, 0, code)
		assert.Len(t, tables.Rows(stepsTable), 3)
		assert.Len(t, tables.Rows(wellnessTable), 3)

		creates, updates := tables.Writes()
		assert.Equal(t, 6, creates)
		assert.Zero(t, updates)
		assert.Equal(t, 4, srv.Calls(garmintest.KindSteps), "three days plus one throttled attempt")
	})

	t.Run("2. Second Run Writes Nothing", func(t *testing.T) {
		code := execute(ctx, a, "", today)

		assert.Equal(t, 0, code)
		creates, updates := tables.Writes()
		assert.Equal(t, 6, creates)
		assert.Zero(t, updates)
	})

	t.Run("3. Moved Steps Update One Row", func(t *testing.T) {
		srv.SetSteps("2024-01-05", 8500, 10000, 6800)

		code := execute(ctx, a, "", today)

		assert.Equal(t, 0, code)
		_, updates := tables.Writes()
		assert.Equal(t, 1, updates)
	})

	t.Run("4. Journal Keeps Every Run", func(t *testing.T) {
		recent, err := a.runs.ListRecent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, recent, 3)

		updated := 0
		for _, run := range recent {
			assert.Equal(t, domain.StateDone, run.State)
			updated += run.StepsUpdated
		}
		assert.Equal(t, 1, updated)
	})
}

func TestEndToEnd_ExitCodes(t *testing.T) {
	ctx := context.Background()
	today, err := domain.ParseDay("2024-01-07")
	require.NoError(t, err)

	t.Run("Failure: Should exit 1 when the token is rejected", func(t *testing.T) {
		srv := garmintest.NewServer("garmin-e2e-token")
		defer srv.Close()

		cfg := testConfig(srv)
		cfg.GarminToken = "stale-token"

		tables := table.NewInMemoryTable()
		a, err := newApp(ctx, cfg, tables)
		require.NoError(t, err)
		defer a.Close()

		code := execute(ctx, a, "", today)

		assert.Equal(t, 1, code)
		assert.Zero(t, srv.Calls(garmintest.KindSteps))
		creates, updates := tables.Writes()
		assert.Zero(t, creates+updates)
	})

	t.Run("Failure: Should exit 1 on invalid configuration", func(t *testing.T) {
		assert.Equal(t, 1, run(config.Config{}))
	})

	t.Run("Failure: Should exit 1 when interrupted", func(t *testing.T) {
		srv := garmintest.NewServer("garmin-e2e-token")
		defer srv.Close()
		srv.SetSteps("2024-01-07", 4200, 10000, 3000)

		a, err := newApp(ctx, testConfig(srv), table.NewInMemoryTable())
		require.NoError(t, err)
		defer a.Close()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		assert.Equal(t, 1, execute(cancelled, a, "", today))
	})
}
