package workouts

import "time"

const (
	CategoryPush  = "Push"
	CategoryPull  = "Pull"
	CategoryLegs  = "Legs"
	CategoryUpper = "Upper"
	CategoryLower = "Lower"

	// CategoryRest marks a resolved day with no matching workout.
	CategoryRest = "Rest"
)

var validCategories = map[string]bool{
	CategoryPush:  true,
	CategoryPull:  true,
	CategoryLegs:  true,
	CategoryUpper: true,
	CategoryLower: true,
}

func ValidCategory(category string) bool {
	return validCategories[category]
}

// Workout is a named training template owned by a single user,
// with a recurrence schedule and an ordered list of exercises.
type Workout struct {
	ID        int        `json:"id"`
	UserID    int        `json:"userId"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	Schedule  Schedule   `json:"schedule"`
	Exercises []Exercise `json:"exercises"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Exercise struct {
	ID        int    `json:"id"`
	WorkoutID int    `json:"workoutId"`
	Name      string `json:"name"`
	Sets      int    `json:"sets"`
	Reps      int    `json:"reps"`
	Weight    int    `json:"weight"`
	Progress  int    `json:"progress"`
	Notes     string `json:"notes,omitempty"`
}
