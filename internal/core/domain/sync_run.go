package domain

import (
	"time"

	"github.com/google/uuid"
)

type SyncState string

const (
	StateLoggedOut   SyncState = "logged_out"
	StateLoggingIn   SyncState = "logging_in"
	StateLoggedIn    SyncState = "logged_in"
	StateProcessing  SyncState = "processing"
	StateDone        SyncState = "done"
	StateLoginFailed SyncState = "login_failed"
)

func (s SyncState) Terminal() bool {
	return s == StateDone || s == StateLoginFailed
}

type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
)

// SyncRun is the audit record of one batch pass. It is written for operators
// and never read back to drive reconciliation.
type SyncRun struct {
	ID         string     `json:"id" db:"id"`
	State      SyncState  `json:"state" db:"state"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`

	Records     int `json:"records" db:"records"`
	SkippedDays int `json:"skipped_days" db:"skipped_days"`

	StepsCreated   int `json:"steps_created" db:"steps_created"`
	StepsUpdated   int `json:"steps_updated" db:"steps_updated"`
	StepsUnchanged int `json:"steps_unchanged" db:"steps_unchanged"`
	StepsFailed    int `json:"steps_failed" db:"steps_failed"`

	WellnessCreated   int `json:"wellness_created" db:"wellness_created"`
	WellnessUpdated   int `json:"wellness_updated" db:"wellness_updated"`
	WellnessUnchanged int `json:"wellness_unchanged" db:"wellness_unchanged"`
	WellnessSkipped   int `json:"wellness_skipped" db:"wellness_skipped"`
	WellnessFailed    int `json:"wellness_failed" db:"wellness_failed"`
}

func NewSyncRun(now time.Time) *SyncRun {
	return &SyncRun{
		ID:        uuid.NewString(),
		State:     StateLoggedOut,
		StartedAt: now.UTC(),
	}
}

func (r *SyncRun) RecordSteps(o Outcome) {
	switch o {
	case OutcomeCreated:
		r.StepsCreated++
	case OutcomeUpdated:
		r.StepsUpdated++
	case OutcomeUnchanged:
		r.StepsUnchanged++
	}
}

func (r *SyncRun) RecordWellness(o Outcome) {
	switch o {
	case OutcomeCreated:
		r.WellnessCreated++
	case OutcomeUpdated:
		r.WellnessUpdated++
	case OutcomeUnchanged:
		r.WellnessUnchanged++
	case OutcomeSkipped:
		r.WellnessSkipped++
	}
}

// Writes counts remote create and update calls issued during the run.
func (r *SyncRun) Writes() int {
	return r.StepsCreated + r.StepsUpdated + r.WellnessCreated + r.WellnessUpdated
}

func (r *SyncRun) Failures() int {
	return r.StepsFailed + r.WellnessFailed
}

func (r *SyncRun) Finish(state SyncState, now time.Time) {
	finished := now.UTC()
	r.State = state
	r.FinishedAt = &finished
}
