package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

const JobName = "garmin_notion_sync"

// Registry holds only this job's series so a push never carries Go runtime noise.
var Registry = prometheus.NewRegistry()

var (
	rowsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "garmin_notion_sync",
		Subsystem: "tables",
		Name:      "rows_total",
		Help:      "Rows reconciled per table grouped by outcome.",
	}, []string{"table", "outcome"})

	failureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "garmin_notion_sync",
		Subsystem: "tables",
		Name:      "failures_total",
		Help:      "Per-day sync failures swallowed by the batch.",
	}, []string{"table"})

	rateLimitCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "garmin_notion_sync",
		Subsystem: "fitness",
		Name:      "rate_limit_retries_total",
		Help:      "Backoff waits taken after a 429 from the fitness service.",
	}, []string{"operation"})

	skippedDaysCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "garmin_notion_sync",
		Subsystem: "fitness",
		Name:      "skipped_days_total",
		Help:      "Days whose step fetch failed and contributed no records.",
	})

	lastRunGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "garmin_notion_sync",
		Subsystem: "run",
		Name:      "last_finished_timestamp_seconds",
		Help:      "Unix timestamp of the most recent run per terminal state.",
	}, []string{"state"})

	lastRunDurationGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "garmin_notion_sync",
		Subsystem: "run",
		Name:      "last_duration_seconds",
		Help:      "Wall-clock duration of the most recent run.",
	})
)

func init() {
	Registry.MustRegister(rowsCounter, failureCounter, rateLimitCounter, skippedDaysCounter, lastRunGauge, lastRunDurationGauge)
}

func RecordOutcome(table string, outcome domain.Outcome) {
	rowsCounter.WithLabelValues(table, string(outcome)).Inc()
}

func RecordFailure(table string) {
	failureCounter.WithLabelValues(table).Inc()
}

// RecordRateLimitRetry has the retry.Policy OnRetry signature.
func RecordRateLimitRetry(operation string, _ int, _ time.Duration) {
	rateLimitCounter.WithLabelValues(operationLabel(operation)).Inc()
}

func RecordSkippedDays(n int) {
	if n <= 0 {
		return
	}
	skippedDaysCounter.Add(float64(n))
}

func RecordRun(run *domain.SyncRun) {
	if run == nil || run.FinishedAt == nil {
		return
	}
	lastRunGauge.WithLabelValues(string(run.State)).Set(float64(run.FinishedAt.Unix()))
	lastRunDurationGauge.Set(run.FinishedAt.Sub(run.StartedAt).Seconds())
}

// Push sends the registry to a Pushgateway once, at the end of the batch.
func Push(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, JobName).Gatherer(Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushgateway %s: %w", url, err)
	}
	return nil
}

// operationLabel strips the per-day suffix ("steps 2024-01-05" -> "steps")
// to keep label cardinality bounded.
func operationLabel(name string) string {
	op, _, _ := strings.Cut(name, " ")
	return op
}
