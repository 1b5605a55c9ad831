package services

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/retry"
)

const DefaultLookbackDays = 7

type StepsCollector struct {
	client       domain.FitnessClient
	policy       retry.Policy
	lookbackDays int
}

func NewStepsCollector(client domain.FitnessClient, policy retry.Policy, lookbackDays int) *StepsCollector {
	if lookbackDays < 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &StepsCollector{
		client:       client,
		policy:       policy,
		lookbackDays: lookbackDays,
	}
}

type Collection struct {
	Records []domain.DailyStepRecord
	Skipped []time.Time
}

// DateRange returns [today-lookbackDays, today] inclusive, ascending.
func DateRange(today time.Time, lookbackDays int) []time.Time {
	end := domain.Day(today)
	start := end.AddDate(0, 0, -lookbackDays)

	days := make([]time.Time, 0, lookbackDays+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Collect fetches each day separately so one failing day never hides the others.
func (c *StepsCollector) Collect(ctx context.Context, today time.Time) Collection {
	var out Collection

	for _, day := range DateRange(today, c.lookbackDays) {
		if ctx.Err() != nil {
			out.Skipped = append(out.Skipped, day)
			continue
		}

		policy := c.policy.WithName("steps " + day.Format(domain.DateLayout))
		records, err := retry.Do(ctx, policy, func(ctx context.Context) ([]domain.DailyStepRecord, error) {
			return c.client.GetDailySteps(ctx, day, day)
		})
		if err != nil {
			log.Printf("Error getting steps for %s: %v. Skipping day.", day.Format(domain.DateLayout), err)
			out.Skipped = append(out.Skipped, day)
			continue
		}

		out.Records = append(out.Records, records...)
	}

	return out
}
