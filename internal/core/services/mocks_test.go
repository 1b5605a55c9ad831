package services_test

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/retry"
)

var errTooManyRequests = errors.New("429 Client Error: Too Many Requests")

type MockFitnessClient struct {
	mock.Mock
}

func (m *MockFitnessClient) Login(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFitnessClient) GetDailySteps(ctx context.Context, start, end time.Time) ([]domain.DailyStepRecord, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyStepRecord), args.Error(1)
}

func (m *MockFitnessClient) GetSleepData(ctx context.Context, date time.Time) (domain.SleepRecord, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(domain.SleepRecord), args.Error(1)
}

type MockTableClient struct {
	mock.Mock
}

func (m *MockTableClient) Query(ctx context.Context, tableID string, filter domain.Filter) ([]domain.Row, error) {
	args := m.Called(ctx, tableID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Row), args.Error(1)
}

func (m *MockTableClient) Create(ctx context.Context, tableID string, props domain.Properties) error {
	args := m.Called(ctx, tableID, props)
	return args.Error(0)
}

func (m *MockTableClient) Update(ctx context.Context, rowID string, props domain.Properties) error {
	args := m.Called(ctx, rowID, props)
	return args.Error(0)
}

// recordingSleeper captures every wait instead of blocking.
type recordingSleeper struct {
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func testPolicy(name string, sleeper *recordingSleeper) retry.Policy {
	return retry.Policy{
		Name:          name,
		MaxRetries:    3,
		BaseDelay:     10 * time.Second,
		WaitAfterLast: true,
		Sleep:         sleeper.Sleep,
	}
}

func day(s string) time.Time {
	d, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func stepsRow(id, date string, steps, goal, km float64) domain.Row {
	return domain.Row{
		ID: id,
		Properties: domain.Properties{
			domain.ColumnDate:         domain.DateValue(day(date)),
			domain.ColumnActivityType: domain.TitleValue(domain.ActivityWalking),
			domain.ColumnTotalSteps:   domain.NumberValue(steps),
			domain.ColumnStepGoal:     domain.NumberValue(goal),
			domain.ColumnDistanceKm:   domain.NumberValue(km),
		},
	}
}
