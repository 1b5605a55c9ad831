package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/services"
)

func TestDateRange(t *testing.T) {
	today := time.Date(2024, 1, 7, 23, 30, 0, 0, time.UTC)

	days := services.DateRange(today, 7)

	require.Len(t, days, 8)
	assert.Equal(t, day("2023-12-31"), days[0])
	assert.Equal(t, day("2024-01-07"), days[7])
	for i := 1; i < len(days); i++ {
		assert.True(t, days[i].After(days[i-1]))
	}

	assert.Equal(t, []time.Time{day("2024-01-07")}, services.DateRange(today, 0))
}

func TestStepsCollector_Collect(t *testing.T) {
	ctx := context.Background()
	today := day("2024-01-07")

	t.Run("Success: Should fetch each day once in ascending order", func(t *testing.T) {
		fitness := new(MockFitnessClient)
		sleeper := &recordingSleeper{}

		for _, d := range services.DateRange(today, 2) {
			fitness.On("GetDailySteps", mock.Anything, d, d).
				Return([]domain.DailyStepRecord{{Date: d, TotalSteps: 1000, StepGoal: 10000}}, nil).Once()
		}

		got := services.NewStepsCollector(fitness, testPolicy("steps", sleeper), 2).Collect(ctx, today)

		require.Len(t, got.Records, 3)
		assert.Equal(t, day("2024-01-05"), got.Records[0].Date)
		assert.Equal(t, day("2024-01-07"), got.Records[2].Date)
		assert.Empty(t, got.Skipped)
		fitness.AssertExpectations(t)
	})

	t.Run("Success: Should skip a day that keeps failing and keep the rest", func(t *testing.T) {
		fitness := new(MockFitnessClient)
		sleeper := &recordingSleeper{}

		fitness.On("GetDailySteps", mock.Anything, day("2024-01-06"), day("2024-01-06")).
			Return(nil, errTooManyRequests)
		fitness.On("GetDailySteps", mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.DailyStepRecord{{Date: today, TotalSteps: 1}}, nil)

		got := services.NewStepsCollector(fitness, testPolicy("steps", sleeper), 1).Collect(ctx, today)

		assert.Len(t, got.Records, 1)
		assert.Equal(t, []time.Time{day("2024-01-06")}, got.Skipped)
		assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second, 40 * time.Second, 80 * time.Second}, sleeper.waits)
		fitness.AssertNumberOfCalls(t, "GetDailySteps", 5)
	})

	t.Run("Success: Should not retry non rate limit errors", func(t *testing.T) {
		fitness := new(MockFitnessClient)
		sleeper := &recordingSleeper{}

		fitness.On("GetDailySteps", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection reset")).Once()

		got := services.NewStepsCollector(fitness, testPolicy("steps", sleeper), 0).Collect(ctx, today)

		assert.Empty(t, got.Records)
		assert.Len(t, got.Skipped, 1)
		assert.Empty(t, sleeper.waits)
	})

	t.Run("Success: Should skip remaining days once the context is done", func(t *testing.T) {
		fitness := new(MockFitnessClient)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		got := services.NewStepsCollector(fitness, testPolicy("steps", &recordingSleeper{}), 3).Collect(cancelled, today)

		assert.Empty(t, got.Records)
		assert.Len(t, got.Skipped, 4)
		fitness.AssertNotCalled(t, "GetDailySteps", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success: Should fall back to the default look-back", func(t *testing.T) {
		fitness := new(MockFitnessClient)
		fitness.On("GetDailySteps", mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.DailyStepRecord{}, nil)

		services.NewStepsCollector(fitness, testPolicy("steps", &recordingSleeper{}), -1).Collect(ctx, today)

		fitness.AssertNumberOfCalls(t, "GetDailySteps", services.DefaultLookbackDays+1)
	})
}
