package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

type StepsSyncService struct {
	tables  domain.TableClient
	tableID string
}

func NewStepsSyncService(tables domain.TableClient, tableID string) *StepsSyncService {
	return &StepsSyncService{
		tables:  tables,
		tableID: tableID,
	}
}

func (s *StepsSyncService) Sync(ctx context.Context, record domain.DailyStepRecord) (domain.Outcome, error) {
	if s.tableID == "" {
		return "", fmt.Errorf("steps table: %w", domain.ErrTableNotSet)
	}
	if err := record.Validate(); err != nil {
		return "", fmt.Errorf("steps %s: %w", record.Day(), err)
	}

	existing, err := s.FindExisting(ctx, record.Date)
	if err != nil && !errors.Is(err, domain.ErrRowNotFound) {
		return "", fmt.Errorf("steps %s: lookup: %w", record.Day(), err)
	}

	if existing == nil {
		if err := s.tables.Create(ctx, s.tableID, domain.StepsCreateProperties(record)); err != nil {
			return "", fmt.Errorf("steps %s: create: %w", record.Day(), err)
		}
		log.Printf("Created daily steps for %s: %d steps", record.Day(), record.TotalSteps)
		return domain.OutcomeCreated, nil
	}

	if !existing.NeedsUpdate(record) {
		return domain.OutcomeUnchanged, nil
	}

	if err := s.tables.Update(ctx, existing.ID, domain.StepsUpdateProperties(record)); err != nil {
		return "", fmt.Errorf("steps %s: update %s: %w", record.Day(), existing.ID, err)
	}
	log.Printf("Updated daily steps for %s: %d steps", record.Day(), record.TotalSteps)
	return domain.OutcomeUpdated, nil
}

// FindExisting returns the first Walking row for date. Duplicates are not
// merged; which one the table returns first is up to the table.
func (s *StepsSyncService) FindExisting(ctx context.Context, date time.Time) (*domain.StepsRow, error) {
	rows, err := s.tables.Query(ctx, s.tableID, domain.Filter{
		domain.Equals(domain.ColumnDate, domain.DateValue(date)),
		domain.Equals(domain.ColumnActivityType, domain.TitleValue(domain.ActivityWalking)),
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrRowNotFound
	}
	if len(rows) > 1 {
		log.Printf("Warning: %d Walking rows for %s, using %s", len(rows), date.Format(domain.DateLayout), rows[0].ID)
	}

	row := domain.StepsRowFromRow(rows[0])
	return &row, nil
}
