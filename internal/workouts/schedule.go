package workouts

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type ScheduleType string

const (
	ScheduleDaily  ScheduleType = "daily"
	ScheduleWeekly ScheduleType = "weekly"
)

// ValidationError describes a rejected field of an incoming request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Schedule is the recurrence rule of a workout: either every day, or
// weekly on an explicit set of weekdays (0 = Sunday .. 6 = Saturday).
// Frequency is an informational repeat count, not used for resolution.
type Schedule struct {
	Type      ScheduleType `json:"type"`
	Days      []int        `json:"days"`
	Frequency int          `json:"frequency"`
}

func (s Schedule) Validate() error {
	switch s.Type {
	case ScheduleDaily:
		return nil
	case ScheduleWeekly:
		if len(s.Days) == 0 {
			return &ValidationError{Field: "schedule.days", Reason: "must not be empty for a weekly schedule"}
		}
		seen := make(map[int]bool, len(s.Days))
		for _, day := range s.Days {
			if day < 0 || day > 6 {
				return &ValidationError{Field: "schedule.days", Reason: fmt.Sprintf("weekday %d out of range [0, 6]", day)}
			}
			if seen[day] {
				return &ValidationError{Field: "schedule.days", Reason: fmt.Sprintf("duplicate weekday %d", day)}
			}
			seen[day] = true
		}
		return nil
	default:
		return &ValidationError{Field: "schedule.type", Reason: `must be "daily" or "weekly"`}
	}
}

// Matches reports whether the schedule is active on the given date.
// The weekday is always taken in UTC, so that local daylight shifts
// can never move a workout to the neighbouring day.
func (s Schedule) Matches(date time.Time) bool {
	if s.Type == ScheduleDaily {
		return true
	}

	weekday := int(date.UTC().Weekday())
	for _, day := range s.Days {
		if day == weekday {
			return true
		}
	}
	return false
}

// DaysCSV serializes weekdays to the stored form, e.g. "1,3,5".
// Used only at the persistence boundary.
func DaysCSV(days []int) string {
	if len(days) == 0 {
		return ""
	}
	strs := make([]string, 0, len(days))
	for _, day := range days {
		strs = append(strs, strconv.Itoa(day))
	}
	return strings.Join(strs, ",")
}

// ParseDaysCSV is the inverse of DaysCSV, order preserved.
func ParseDaysCSV(csv string) ([]int, error) {
	if csv == "" {
		return []int{}, nil
	}
	parts := strings.Split(csv, ",")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parse schedule days %q: %w", csv, err)
		}
		days = append(days, day)
	}
	return days, nil
}
