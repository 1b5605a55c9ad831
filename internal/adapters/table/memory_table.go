package table

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

var _ domain.TableClient = (*InMemoryTable)(nil)

// InMemoryTable keeps rows per table in insertion order, which is the order
// Query returns them in.
type InMemoryTable struct {
	tables map[string][]*domain.Row
	owner  map[string]string

	creates int
	updates int

	mu sync.RWMutex
}

func NewInMemoryTable() *InMemoryTable {
	return &InMemoryTable{
		tables: make(map[string][]*domain.Row),
		owner:  make(map[string]string),
	}
}

func (t *InMemoryTable) Query(ctx context.Context, tableID string, filter domain.Filter) ([]domain.Row, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []domain.Row
	for _, row := range t.tables[tableID] {
		if matchesAll(filter, row.Properties) {
			out = append(out, copyRow(row))
		}
	}
	return out, nil
}

func (t *InMemoryTable) Create(ctx context.Context, tableID string, props domain.Properties) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.insert(tableID, props)
	t.creates++
	return nil
}

func (t *InMemoryTable) Update(ctx context.Context, rowID string, props domain.Properties) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tableID, ok := t.owner[rowID]
	if !ok {
		return fmt.Errorf("row %s: %w", rowID, domain.ErrRowNotFound)
	}

	for _, row := range t.tables[tableID] {
		if row.ID == rowID {
			for name, value := range props {
				row.Properties[name] = value
			}
			t.updates++
			return nil
		}
	}
	return fmt.Errorf("row %s: %w", rowID, domain.ErrRowNotFound)
}

// Seed inserts a row without counting it as a write and returns its ID.
func (t *InMemoryTable) Seed(tableID string, props domain.Properties) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.insert(tableID, props)
}

func (t *InMemoryTable) Rows(tableID string) []domain.Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Row, 0, len(t.tables[tableID]))
	for _, row := range t.tables[tableID] {
		out = append(out, copyRow(row))
	}
	return out
}

func (t *InMemoryTable) Writes() (creates, updates int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.creates, t.updates
}

func (t *InMemoryTable) insert(tableID string, props domain.Properties) string {
	row := &domain.Row{ID: uuid.NewString(), Properties: make(domain.Properties, len(props))}
	for name, value := range props {
		row.Properties[name] = value
	}
	t.tables[tableID] = append(t.tables[tableID], row)
	t.owner[row.ID] = tableID
	return row.ID
}

func copyRow(row *domain.Row) domain.Row {
	props := make(domain.Properties, len(row.Properties))
	for name, value := range row.Properties {
		props[name] = value
	}
	return domain.Row{ID: row.ID, Properties: props}
}

func matchesAll(filter domain.Filter, props domain.Properties) bool {
	for _, cond := range filter {
		if !matches(cond, props) {
			return false
		}
	}
	return true
}

func matches(cond domain.Condition, props domain.Properties) bool {
	value, present := props[cond.Property]
	if present && value.Type != cond.Value.Type {
		present = false
	}

	switch cond.Operator {
	case domain.OpIsNotEmpty:
		return present && !isEmpty(value)
	case domain.OpEquals:
		return present && equal(value, cond.Value)
	case domain.OpDoesNotEqual:
		return !present || !equal(value, cond.Value)
	}
	return false
}

func isEmpty(v domain.PropertyValue) bool {
	switch v.Type {
	case domain.PropertyTitle, domain.PropertySelect:
		return v.Text == ""
	case domain.PropertyDate:
		return v.Date.IsZero()
	}
	return false
}

func equal(a, b domain.PropertyValue) bool {
	switch a.Type {
	case domain.PropertyDate:
		return domain.Day(a.Date).Equal(domain.Day(b.Date))
	case domain.PropertyNumber:
		return a.Number == b.Number
	case domain.PropertyCheckbox:
		return a.Checkbox == b.Checkbox
	default:
		return a.Text == b.Text
	}
}
