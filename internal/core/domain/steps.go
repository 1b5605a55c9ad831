package domain

import (
	"errors"
	"math"
	"time"
)

var (
	ErrInvalidStepRecord = errors.New("invalid daily step record")
)

const (
	DateLayout      = "2006-01-02"
	ActivityWalking = "Walking"
	DefaultStepGoal = 10000
)

type DailyStepRecord struct {
	Date                time.Time `json:"date"`
	TotalSteps          int       `json:"total_steps"`
	StepGoal            int       `json:"step_goal"`
	TotalDistanceMeters float64   `json:"total_distance_meters"`
}

func (r DailyStepRecord) Validate() error {
	if r.Date.IsZero() {
		return errors.New("date is required")
	}
	if r.TotalSteps < 0 || r.StepGoal < 0 || r.TotalDistanceMeters < 0 {
		return ErrInvalidStepRecord
	}
	return nil
}

func (r DailyStepRecord) Day() string {
	return r.Date.Format(DateLayout)
}

func (r DailyStepRecord) DistanceKm() float64 {
	return RoundDistanceKm(r.TotalDistanceMeters)
}

func (r DailyStepRecord) GoalMet() bool {
	return r.TotalSteps >= r.StepGoal
}

// RoundDistanceKm converts meters to kilometers rounded to two decimals.
func RoundDistanceKm(meters float64) float64 {
	return math.Round(meters/1000*100) / 100
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// StepsRow is the steps table view of one day, keyed by (Date, ActivityType).
type StepsRow struct {
	ID              string
	Date            time.Time
	ActivityType    string
	TotalSteps      float64
	StepGoal        float64
	TotalDistanceKm float64
}

func StepsRowFromRow(row Row) StepsRow {
	s := StepsRow{ID: row.ID}
	s.Date, _ = row.Properties.Date(ColumnDate)
	s.ActivityType, _ = row.Properties.Text(ColumnActivityType)
	s.TotalSteps, _ = row.Properties.Number(ColumnTotalSteps)
	s.StepGoal, _ = row.Properties.Number(ColumnStepGoal)
	s.TotalDistanceKm, _ = row.Properties.Number(ColumnDistanceKm)
	return s
}

func (s StepsRow) NeedsUpdate(r DailyStepRecord) bool {
	return s.TotalSteps != float64(r.TotalSteps) ||
		s.StepGoal != float64(r.StepGoal) ||
		s.TotalDistanceKm != r.DistanceKm() ||
		s.ActivityType != ActivityWalking
}

// StepsUpdateProperties is the full replacement written over an existing row.
func StepsUpdateProperties(r DailyStepRecord) Properties {
	return Properties{
		ColumnActivityType: TitleValue(ActivityWalking),
		ColumnTotalSteps:   NumberValue(float64(r.TotalSteps)),
		ColumnStepGoal:     NumberValue(float64(r.StepGoal)),
		ColumnDistanceKm:   NumberValue(r.DistanceKm()),
	}
}

func StepsCreateProperties(r DailyStepRecord) Properties {
	props := StepsUpdateProperties(r)
	props[ColumnDate] = DateValue(r.Date)
	return props
}
