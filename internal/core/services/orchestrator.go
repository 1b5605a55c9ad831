package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/retry"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/observability"
)

const (
	tableSteps    = "steps"
	tableWellness = "wellness"
)

type OrchestratorDependencies struct {
	Fitness     domain.FitnessClient
	Collector   *StepsCollector
	Steps       *StepsSyncService
	Wellness    *WellnessSyncService
	LoginPolicy retry.Policy
	Runs        domain.SyncRunRepository
	Clock       func() time.Time
}

type Orchestrator struct {
	deps  OrchestratorDependencies
	state domain.SyncState
}

func NewOrchestrator(deps OrchestratorDependencies) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Orchestrator{
		deps:  deps,
		state: domain.StateLoggedOut,
	}
}

func (o *Orchestrator) State() domain.SyncState {
	return o.state
}

// Run performs one pass: login, collect the day range, then steps and
// wellness sync record by record. Only a failed login aborts the pass.
func (o *Orchestrator) Run(ctx context.Context, today time.Time) (*domain.SyncRun, error) {
	run := domain.NewSyncRun(o.deps.Clock())
	o.transition(run, domain.StateLoggedOut)
	o.journalCreate(ctx, run)

	o.transition(run, domain.StateLoggingIn)
	_, err := retry.Do(ctx, o.deps.LoginPolicy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, o.deps.Fitness.Login(ctx)
	})
	if err != nil {
		log.Printf("Failed to login to fitness service: %v", err)
		o.finish(ctx, run, domain.StateLoginFailed)
		return run, fmt.Errorf("%w: %w", domain.ErrLoginFailed, err)
	}
	log.Println("Successfully logged into fitness service")
	o.transition(run, domain.StateLoggedIn)

	o.transition(run, domain.StateProcessing)
	collection := o.deps.Collector.Collect(ctx, today)
	run.Records = len(collection.Records)
	run.SkippedDays = len(collection.Skipped)
	observability.RecordSkippedDays(len(collection.Skipped))

	for _, record := range collection.Records {
		if err := ctx.Err(); err != nil {
			log.Printf("Sync interrupted before %s: %v", record.Day(), err)
			o.finish(ctx, run, o.state)
			return run, err
		}
		o.processRecord(ctx, run, record)
	}
	if err := ctx.Err(); err != nil {
		log.Printf("Sync interrupted: %v", err)
		o.finish(ctx, run, o.state)
		return run, err
	}

	o.finish(ctx, run, domain.StateDone)
	log.Printf("Sync finished: %d records, %d writes, %d failures, %d skipped days",
		run.Records, run.Writes(), run.Failures(), run.SkippedDays)

	return run, nil
}

func (o *Orchestrator) processRecord(ctx context.Context, run *domain.SyncRun, record domain.DailyStepRecord) {
	outcome, err := o.deps.Steps.Sync(ctx, record)
	if err != nil {
		log.Printf("Error syncing steps for %s: %v", record.Day(), err)
		run.StepsFailed++
		observability.RecordFailure(tableSteps)
	} else {
		run.RecordSteps(outcome)
		observability.RecordOutcome(tableSteps, outcome)
	}

	outcome, err = o.deps.Wellness.Sync(ctx, record)
	if err != nil {
		log.Printf("Error updating wellness entry for %s: %v", record.Day(), err)
		run.WellnessFailed++
		observability.RecordFailure(tableWellness)
		return
	}
	run.RecordWellness(outcome)
	observability.RecordOutcome(tableWellness, outcome)
}

func (o *Orchestrator) transition(run *domain.SyncRun, next domain.SyncState) {
	o.state = next
	run.State = next
}

func (o *Orchestrator) finish(ctx context.Context, run *domain.SyncRun, state domain.SyncState) {
	o.state = state
	run.Finish(state, o.deps.Clock())
	observability.RecordRun(run)

	if o.deps.Runs == nil {
		return
	}
	if err := o.deps.Runs.Update(context.WithoutCancel(ctx), run); err != nil {
		log.Printf("[JOURNAL] Failed to record run %s: %v", run.ID, err)
	}
}

func (o *Orchestrator) journalCreate(ctx context.Context, run *domain.SyncRun) {
	if o.deps.Runs == nil {
		return
	}
	if err := o.deps.Runs.Create(ctx, run); err != nil {
		log.Printf("[JOURNAL] Failed to open run %s: %v", run.ID, err)
	}
}
