package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundDistanceKm(t *testing.T) {
	tests := []struct {
		meters float64
		want   float64
	}{
		{0, 0},
		{1000, 1},
		{6543.21, 6.54},
		{6546, 6.55},
		{12, 0.01},
		{4, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2fm", tt.meters), func(t *testing.T) {
			assert.Equal(t, tt.want, RoundDistanceKm(tt.meters))
		})
	}
}

func TestDailyStepRecord_Validate(t *testing.T) {
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, DailyStepRecord{Date: day, TotalSteps: 1, StepGoal: 1}.Validate())
	assert.Error(t, DailyStepRecord{TotalSteps: 1}.Validate(), "missing date")
	assert.ErrorIs(t, DailyStepRecord{Date: day, TotalSteps: -1}.Validate(), ErrInvalidStepRecord)
	assert.ErrorIs(t, DailyStepRecord{Date: day, TotalDistanceMeters: -0.5}.Validate(), ErrInvalidStepRecord)
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	in := time.Date(2024, 1, 5, 23, 30, 0, 0, loc)

	got := Day(in)

	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), got, "calendar date must be kept, not the UTC instant")
	assert.True(t, Day(time.Time{}).IsZero())
}

func TestStepsRow_NeedsUpdate(t *testing.T) {
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	record := DailyStepRecord{Date: day, TotalSteps: 8000, StepGoal: 10000, TotalDistanceMeters: 6123}

	existing := StepsRowFromRow(Row{ID: "row-1", Properties: StepsCreateProperties(record)})

	t.Run("Should be a no-op when every field matches", func(t *testing.T) {
		assert.False(t, existing.NeedsUpdate(record))
		assert.Equal(t, "row-1", existing.ID)
		assert.Equal(t, day, existing.Date)
		assert.Equal(t, 6.12, existing.TotalDistanceKm)
	})

	t.Run("Should detect a step change", func(t *testing.T) {
		changed := record
		changed.TotalSteps = 8500
		assert.True(t, existing.NeedsUpdate(changed))
	})

	t.Run("Should detect a goal change", func(t *testing.T) {
		changed := record
		changed.StepGoal = 12000
		assert.True(t, existing.NeedsUpdate(changed))
	})

	t.Run("Should ignore distance noise below rounding precision", func(t *testing.T) {
		changed := record
		changed.TotalDistanceMeters = 6124
		assert.False(t, existing.NeedsUpdate(changed))
	})

	t.Run("Should detect a distance change after rounding", func(t *testing.T) {
		changed := record
		changed.TotalDistanceMeters = 6200
		assert.True(t, existing.NeedsUpdate(changed))
	})

	t.Run("Should detect a wrong category label", func(t *testing.T) {
		relabeled := existing
		relabeled.ActivityType = "walking"
		assert.True(t, relabeled.NeedsUpdate(record))
	})
}

func TestStepsProperties(t *testing.T) {
	day := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	record := DailyStepRecord{Date: day, TotalSteps: 4321, StepGoal: 7000, TotalDistanceMeters: 3456.7}

	t.Run("Create carries the date and fixed category", func(t *testing.T) {
		props := StepsCreateProperties(record)

		title, ok := props.Text(ColumnActivityType)
		assert.True(t, ok)
		assert.Equal(t, ActivityWalking, title)
		assert.Equal(t, PropertyTitle, props[ColumnActivityType].Type)

		date, ok := props.Date(ColumnDate)
		assert.True(t, ok)
		assert.Equal(t, day, date)

		dist, _ := props.Number(ColumnDistanceKm)
		assert.Equal(t, 3.46, dist)
	})

	t.Run("Update replaces every tracked field but not the key date", func(t *testing.T) {
		props := StepsUpdateProperties(record)

		assert.Len(t, props, 4)
		_, hasDate := props[ColumnDate]
		assert.False(t, hasDate)

		steps, _ := props.Number(ColumnTotalSteps)
		goal, _ := props.Number(ColumnStepGoal)
		assert.Equal(t, 4321.0, steps)
		assert.Equal(t, 7000.0, goal)
	})
}

func TestProperties_TypedAccessors(t *testing.T) {
	props := Properties{
		"n": NumberValue(3),
		"c": CheckboxValue(true),
		"s": SelectValue("Run"),
	}

	_, ok := props.Number("c")
	assert.False(t, ok, "checkbox is not a number")

	_, ok = props.Checkbox("missing")
	assert.False(t, ok)

	text, ok := props.Text("s")
	assert.True(t, ok)
	assert.Equal(t, "Run", text)

	_, ok = props.Date("n")
	assert.False(t, ok)
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(errors.New("GET /steps: 429")))
	assert.True(t, IsRateLimited(errors.New("Too Many Requests")))
	assert.True(t, IsRateLimited(fmt.Errorf("wrapped: %w", ErrRateLimited)))
	assert.False(t, IsRateLimited(errors.New("500 Internal Server Error")))
	assert.False(t, IsRateLimited(nil))
}
