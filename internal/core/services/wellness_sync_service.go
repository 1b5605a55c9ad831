package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/retry"
)

type WellnessSyncService struct {
	fitness         domain.FitnessClient
	tables          domain.TableClient
	wellnessTableID string
	activityTableID string
	sleepPolicy     retry.Policy
}

func NewWellnessSyncService(fitness domain.FitnessClient, tables domain.TableClient, wellnessTableID, activityTableID string, sleepPolicy retry.Policy) *WellnessSyncService {
	return &WellnessSyncService{
		fitness:         fitness,
		tables:          tables,
		wellnessTableID: wellnessTableID,
		activityTableID: activityTableID,
		sleepPolicy:     sleepPolicy,
	}
}

func (s *WellnessSyncService) Enabled() bool {
	return s.wellnessTableID != ""
}

func (s *WellnessSyncService) Sync(ctx context.Context, record domain.DailyStepRecord) (domain.Outcome, error) {
	if !s.Enabled() {
		return domain.OutcomeSkipped, nil
	}

	sleep := s.FetchSleep(ctx, record.Date)

	exercise, err := s.ExerciseLogged(ctx, record.Date)
	if err != nil {
		return "", fmt.Errorf("wellness %s: exercise lookup: %w", record.Day(), err)
	}

	flags := domain.NewWellnessFlags(record, sleep.Metrics(), exercise)

	rows, err := s.tables.Query(ctx, s.wellnessTableID, domain.Filter{
		domain.Equals(domain.ColumnDate, domain.DateValue(record.Date)),
	})
	if err != nil {
		return "", fmt.Errorf("wellness %s: lookup: %w", record.Day(), err)
	}

	props := flags.Properties(record.Date)

	if len(rows) == 0 {
		if err := s.tables.Create(ctx, s.wellnessTableID, props); err != nil {
			return "", fmt.Errorf("wellness %s: create: %w", record.Day(), err)
		}
		log.Printf("Created wellness entry for %s", record.Day())
		return domain.OutcomeCreated, nil
	}

	if domain.WellnessFlagsFromRow(rows[0]) == flags {
		return domain.OutcomeUnchanged, nil
	}

	if err := s.tables.Update(ctx, rows[0].ID, props); err != nil {
		return "", fmt.Errorf("wellness %s: update %s: %w", record.Day(), rows[0].ID, err)
	}
	log.Printf("Updated wellness entry for %s", record.Day())
	return domain.OutcomeUpdated, nil
}

// FetchSleep degrades to an empty record when the fetch fails for good.
func (s *WellnessSyncService) FetchSleep(ctx context.Context, date time.Time) domain.SleepRecord {
	policy := s.sleepPolicy.WithName("sleep " + date.Format(domain.DateLayout))
	record, err := retry.Do(ctx, policy, func(ctx context.Context) (domain.SleepRecord, error) {
		return s.fitness.GetSleepData(ctx, date)
	})
	if err != nil {
		log.Printf("Error getting sleep data for %s: %v", date.Format(domain.DateLayout), err)
		return domain.SleepRecord{}
	}
	return record
}

// ExerciseLogged looks for any non-walking activity on date in the general activity table.
func (s *WellnessSyncService) ExerciseLogged(ctx context.Context, date time.Time) (bool, error) {
	if s.activityTableID == "" {
		return false, nil
	}

	rows, err := s.tables.Query(ctx, s.activityTableID, domain.Filter{
		domain.Equals(domain.ColumnDate, domain.DateValue(date)),
		domain.IsNotEmpty(domain.ColumnActivityType, domain.PropertySelect),
		domain.DoesNotEqual(domain.ColumnActivityType, domain.SelectValue(domain.ActivityWalking)),
	})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
