package workouts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), date)

	for _, malformed := range []string{
		"", "2024-3-15", "15-03-2024", "2024/03/15", "2024-03-15T00:00:00Z", "yesterday",
	} {
		_, err := ParseDate(malformed)
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr, "input %q", malformed)
		assert.Equal(t, "date", valErr.Field)
	}

	// regex-valid but not a real calendar date
	_, err = ParseDate("2024-13-77")
	assert.Error(t, err)
}

func TestResolveDay_FirstMatchWins(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	userWorkouts := []Workout{
		{ID: 1, Category: CategoryPush, Schedule: Schedule{Type: ScheduleWeekly, Days: []int{1, 3, 5}}},
		{ID: 2, Category: CategoryLegs, Schedule: Schedule{Type: ScheduleDaily}},
	}

	// both match monday, the lower id is listed first and wins
	day := ResolveDay(userWorkouts, monday)
	assert.Equal(t, 1, day.WorkoutID)
	assert.Equal(t, CategoryPush, day.Category)
	assert.False(t, day.IsRest())

	// tuesday only matches the daily one
	day = ResolveDay(userWorkouts, monday.AddDate(0, 0, 1))
	assert.Equal(t, 2, day.WorkoutID)
	assert.Equal(t, CategoryLegs, day.Category)
}

func TestResolveDay_RestDay(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	userWorkouts := []Workout{
		{ID: 1, Category: CategoryPush, Schedule: Schedule{Type: ScheduleWeekly, Days: []int{1, 3, 5}}},
	}

	tuesday := monday.AddDate(0, 0, 1)
	day := ResolveDay(userWorkouts, tuesday)
	assert.True(t, day.IsRest())
	assert.Equal(t, 0, day.WorkoutID)
	assert.Equal(t, CategoryRest, day.Category)
	assert.NotNil(t, day.Exercises)
	assert.Empty(t, day.Exercises)
	assert.Equal(t, tuesday, day.Date)

	// no workouts at all: every day is a rest day
	assert.True(t, ResolveDay(nil, monday).IsRest())
}

func TestResolveDay_NilExercisesNormalized(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day := ResolveDay([]Workout{
		{ID: 3, Category: CategoryUpper, Schedule: Schedule{Type: ScheduleDaily}, Exercises: nil},
	}, monday)
	assert.NotNil(t, day.Exercises)
	assert.Empty(t, day.Exercises)
}

func TestResolveWeek(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	userWorkouts := []Workout{
		{ID: 1, Category: CategoryPush, Schedule: Schedule{Type: ScheduleWeekly, Days: []int{1, 3, 5}}},
	}

	week := ResolveWeek(userWorkouts, monday)
	require.Len(t, week, 7)

	for i, day := range week {
		assert.Equal(t, monday.AddDate(0, 0, i), day.Date)
	}

	// mon, wed, fri are workout days, the rest are rest days
	assert.False(t, week[0].IsRest())
	assert.True(t, week[1].IsRest())
	assert.False(t, week[2].IsRest())
	assert.True(t, week[3].IsRest())
	assert.False(t, week[4].IsRest())
	assert.True(t, week[5].IsRest())
	assert.True(t, week[6].IsRest())
}

func TestResolveWeek_NormalizesStart(t *testing.T) {
	// mid-day start is snapped to UTC midnight
	start := time.Date(2024, 5, 8, 15, 4, 5, 0, time.UTC)
	week := ResolveWeek(nil, start)
	require.Len(t, week, 7)
	assert.Equal(t, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), week[0].Date)
	assert.Equal(t, time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC), week[6].Date)
}
