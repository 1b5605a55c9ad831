package domain

import (
	"errors"
	"time"
)

var (
	ErrRowNotFound         = errors.New("table row not found")
	ErrUnsupportedProperty = errors.New("unsupported property type")
)

const (
	ColumnDate         = "Date"
	ColumnActivityType = "Activity Type"
	ColumnTotalSteps   = "Total Steps"
	ColumnStepGoal     = "Step Goal"
	ColumnDistanceKm   = "Total Distance (km)"

	ColumnStepsGoalMet   = "15000 Steps"
	ColumnSleepGoalMet   = "\U0001F6347+ hrs Sleep, 85+ Score"
	ColumnExerciseLogged = "\U0001F3C3\U0001F3FE\u200D\u2642\uFE0F Excersice"
)

type PropertyType string

const (
	PropertyDate     PropertyType = "date"
	PropertyNumber   PropertyType = "number"
	PropertyCheckbox PropertyType = "checkbox"
	PropertyTitle    PropertyType = "title"
	PropertySelect   PropertyType = "select"
)

// PropertyValue is a typed cell value. Text carries both title and select values.
type PropertyValue struct {
	Type     PropertyType
	Date     time.Time
	Number   float64
	Checkbox bool
	Text     string
}

func DateValue(t time.Time) PropertyValue {
	return PropertyValue{Type: PropertyDate, Date: Day(t)}
}

func NumberValue(n float64) PropertyValue {
	return PropertyValue{Type: PropertyNumber, Number: n}
}

func CheckboxValue(b bool) PropertyValue {
	return PropertyValue{Type: PropertyCheckbox, Checkbox: b}
}

func TitleValue(s string) PropertyValue {
	return PropertyValue{Type: PropertyTitle, Text: s}
}

func SelectValue(s string) PropertyValue {
	return PropertyValue{Type: PropertySelect, Text: s}
}

type Properties map[string]PropertyValue

func (p Properties) Number(name string) (float64, bool) {
	v, ok := p[name]
	if !ok || v.Type != PropertyNumber {
		return 0, false
	}
	return v.Number, true
}

func (p Properties) Text(name string) (string, bool) {
	v, ok := p[name]
	if !ok || (v.Type != PropertyTitle && v.Type != PropertySelect) {
		return "", false
	}
	return v.Text, true
}

func (p Properties) Checkbox(name string) (bool, bool) {
	v, ok := p[name]
	if !ok || v.Type != PropertyCheckbox {
		return false, false
	}
	return v.Checkbox, true
}

func (p Properties) Date(name string) (time.Time, bool) {
	v, ok := p[name]
	if !ok || v.Type != PropertyDate || v.Date.IsZero() {
		return time.Time{}, false
	}
	return v.Date, true
}

type Row struct {
	ID         string
	Properties Properties
}

type Operator string

const (
	OpEquals       Operator = "equals"
	OpDoesNotEqual Operator = "does_not_equal"
	OpIsNotEmpty   Operator = "is_not_empty"
)

// Condition is a single predicate on a named property. Value.Type selects the
// property kind even for OpIsNotEmpty, where the rest of Value is ignored.
type Condition struct {
	Property string
	Operator Operator
	Value    PropertyValue
}

// Filter is a conjunction of conditions.
type Filter []Condition

func Equals(property string, value PropertyValue) Condition {
	return Condition{Property: property, Operator: OpEquals, Value: value}
}

func DoesNotEqual(property string, value PropertyValue) Condition {
	return Condition{Property: property, Operator: OpDoesNotEqual, Value: value}
}

func IsNotEmpty(property string, kind PropertyType) Condition {
	return Condition{Property: property, Operator: OpIsNotEmpty, Value: PropertyValue{Type: kind}}
}
