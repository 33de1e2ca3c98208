package workouts

import (
	"regexp"
	"time"
)

// wire format of all date path params
var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a YYYY-MM-DD wire date into a UTC midnight timestamp.
func ParseDate(date string) (time.Time, error) {
	if !dateRegex.MatchString(date) {
		return time.Time{}, &ValidationError{Field: "date", Reason: "must be formatted as YYYY-MM-DD"}
	}
	parsed, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Reason: err.Error()}
	}
	return parsed, nil
}

// DayResult is the resolved outcome for one calendar date: the first
// workout whose schedule matches it, or the rest sentinel
// (WorkoutID 0, category "Rest", no exercises).
type DayResult struct {
	Date      time.Time
	WorkoutID int
	Category  string
	Exercises []Exercise
}

func (d DayResult) IsRest() bool {
	return d.WorkoutID == 0
}

func restDay(date time.Time) DayResult {
	return DayResult{
		Date:      date,
		WorkoutID: 0,
		Category:  CategoryRest,
		Exercises: []Exercise{},
	}
}

// ResolveDay returns the single workout applicable to the given date.
// Workouts are checked in the given order and the first schedule match
// wins, so with a stable input order (the repo lists them by id
// ascending) resolution is deterministic even when schedules overlap.
func ResolveDay(userWorkouts []Workout, date time.Time) DayResult {
	for _, workout := range userWorkouts {
		if workout.Schedule.Matches(date) {
			exercises := workout.Exercises
			if exercises == nil {
				exercises = []Exercise{}
			}
			return DayResult{
				Date:      date,
				WorkoutID: workout.ID,
				Category:  workout.Category,
				Exercises: exercises,
			}
		}
	}
	return restDay(date)
}

// ResolveWeek resolves 7 consecutive days starting at startDate,
// normalized to UTC midnight. Every day is present in the result, rest
// days included, ordered by date ascending.
func ResolveWeek(userWorkouts []Workout, startDate time.Time) []DayResult {
	start := time.Date(
		startDate.Year(), startDate.Month(), startDate.Day(),
		0, 0, 0, 0, time.UTC,
	)

	week := make([]DayResult, 0, 7)
	for i := 0; i < 7; i++ {
		week = append(week, ResolveDay(userWorkouts, start.AddDate(0, 0, i)))
	}
	return week
}
