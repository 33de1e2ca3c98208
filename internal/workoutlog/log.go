package workoutlog

import (
	"errors"
	"time"
)

var ErrLogNotFound = errors.New("workout log not found")

// ExerciseResult is what was actually performed in a session. It is a
// snapshot: results never reference live exercise rows, so editing or
// deleting a workout template leaves history untouched.
type ExerciseResult struct {
	Name   string `json:"name"`
	Sets   int    `json:"sets"`
	Reps   int    `json:"reps"`
	Weight int    `json:"weight"`
	Notes  string `json:"notes,omitempty"`
}

// WorkoutLog is an immutable record of one performed session.
type WorkoutLog struct {
	ID        int              `json:"id"`
	UserID    int              `json:"userId"`
	WorkoutID int              `json:"workoutId"`
	Date      time.Time        `json:"date"`
	Results   []ExerciseResult `json:"results"`
	CreatedAt time.Time        `json:"createdAt"`
}

// WorkoutInfo is the slim projection of the originating workout
// attached to enriched log reads.
type WorkoutInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// EnrichedLog pairs a log with its originating workout. Workout is nil
// when the template was deleted after the session was logged.
type EnrichedLog struct {
	WorkoutLog
	Workout *WorkoutInfo `json:"workout"`
}
