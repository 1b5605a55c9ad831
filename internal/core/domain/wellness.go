package domain

import "time"

// WellnessFlags are derived fresh on every pass and always written together.
type WellnessFlags struct {
	StepsGoalMet   bool
	SleepGoalMet   bool
	ExerciseLogged bool
}

func NewWellnessFlags(steps DailyStepRecord, sleep SleepMetrics, exerciseLogged bool) WellnessFlags {
	return WellnessFlags{
		StepsGoalMet:   steps.GoalMet(),
		SleepGoalMet:   sleep.GoalMet(),
		ExerciseLogged: exerciseLogged,
	}
}

func WellnessFlagsFromRow(row Row) WellnessFlags {
	var f WellnessFlags
	f.StepsGoalMet, _ = row.Properties.Checkbox(ColumnStepsGoalMet)
	f.SleepGoalMet, _ = row.Properties.Checkbox(ColumnSleepGoalMet)
	f.ExerciseLogged, _ = row.Properties.Checkbox(ColumnExerciseLogged)
	return f
}

func (f WellnessFlags) Properties(date time.Time) Properties {
	return Properties{
		ColumnDate:           DateValue(date),
		ColumnStepsGoalMet:   CheckboxValue(f.StepsGoalMet),
		ColumnSleepGoalMet:   CheckboxValue(f.SleepGoalMet),
		ColumnExerciseLogged: CheckboxValue(f.ExerciseLogged),
	}
}
