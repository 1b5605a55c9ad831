package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewWellnessFlags(t *testing.T) {
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("Step goal met, short night", func(t *testing.T) {
		steps := DailyStepRecord{Date: day, TotalSteps: 15000, StepGoal: 10000}
		sleep := SleepMetrics{DurationHours: 6.5, Score: 90}

		flags := NewWellnessFlags(steps, sleep, false)

		assert.True(t, flags.StepsGoalMet)
		assert.False(t, flags.SleepGoalMet, "duration below 7h floor despite high score")
		assert.False(t, flags.ExerciseLogged)
	})

	t.Run("Exactly at every threshold", func(t *testing.T) {
		steps := DailyStepRecord{Date: day, TotalSteps: 10000, StepGoal: 10000}
		sleep := SleepMetrics{DurationHours: 7, Score: 85}

		flags := NewWellnessFlags(steps, sleep, true)

		assert.Equal(t, WellnessFlags{StepsGoalMet: true, SleepGoalMet: true, ExerciseLogged: true}, flags)
	})

	t.Run("Below step goal", func(t *testing.T) {
		steps := DailyStepRecord{Date: day, TotalSteps: 9999, StepGoal: 10000}
		assert.False(t, NewWellnessFlags(steps, SleepMetrics{}, false).StepsGoalMet)
	})
}

func TestWellnessFlags_RoundTrip(t *testing.T) {
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	flags := WellnessFlags{StepsGoalMet: true, SleepGoalMet: false, ExerciseLogged: true}

	props := flags.Properties(day)

	assert.Len(t, props, 4, "date plus all three flags")
	assert.Equal(t, flags, WellnessFlagsFromRow(Row{ID: "w-1", Properties: props}))

	date, ok := props.Date(ColumnDate)
	assert.True(t, ok)
	assert.Equal(t, day, date)
}

func TestSyncRun_Counters(t *testing.T) {
	run := NewSyncRun(time.Now())

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, StateLoggedOut, run.State)
	assert.Nil(t, run.FinishedAt)

	run.RecordSteps(OutcomeCreated)
	run.RecordSteps(OutcomeUnchanged)
	run.RecordWellness(OutcomeUpdated)
	run.RecordWellness(OutcomeSkipped)
	run.StepsFailed++

	assert.Equal(t, 2, run.Writes())
	assert.Equal(t, 1, run.Failures())
	assert.Equal(t, 1, run.WellnessSkipped)

	run.Finish(StateDone, time.Now())
	assert.Equal(t, StateDone, run.State)
	assert.NotNil(t, run.FinishedAt)
	assert.True(t, run.State.Terminal())
	assert.False(t, StateProcessing.Terminal())
}
