package workoutlog

import (
	"context"
	"sort"
	"time"

	"github.com/mpetrovic/liftlog/internal/workouts"
)

type logsRepoMock struct {
	nextID int
	logs   []WorkoutLog
}

func NewMockLogsRepo() *logsRepoMock {
	return &logsRepoMock{
		nextID: 1,
	}
}

func (r *logsRepoMock) Add(_ context.Context, workoutLog WorkoutLog) (*WorkoutLog, error) {
	workoutLog.ID = r.nextID
	r.nextID++
	if workoutLog.CreatedAt.IsZero() {
		workoutLog.CreatedAt = time.Now()
	}
	r.logs = append(r.logs, workoutLog)
	return &workoutLog, nil
}

func (r *logsRepoMock) Get(_ context.Context, userID, id int) (*WorkoutLog, error) {
	for _, workoutLog := range r.logs {
		if workoutLog.ID == id && workoutLog.UserID == userID {
			return &workoutLog, nil
		}
	}
	return nil, ErrLogNotFound
}

func (r *logsRepoMock) ListForDate(_ context.Context, userID int, from, to time.Time) ([]WorkoutLog, error) {
	logs := make([]WorkoutLog, 0)
	for _, workoutLog := range r.logs {
		if workoutLog.UserID != userID {
			continue
		}
		if workoutLog.Date.Before(from) || workoutLog.Date.After(to) {
			continue
		}
		logs = append(logs, workoutLog)
	}
	sortByDateDesc(logs)
	return logs, nil
}

func (r *logsRepoMock) ListForWorkout(_ context.Context, userID, workoutID int) ([]WorkoutLog, error) {
	logs := make([]WorkoutLog, 0)
	for _, workoutLog := range r.logs {
		if workoutLog.UserID == userID && workoutLog.WorkoutID == workoutID {
			logs = append(logs, workoutLog)
		}
	}
	sortByDateDesc(logs)
	return logs, nil
}

func (r *logsRepoMock) ListForUser(_ context.Context, userID int) ([]WorkoutLog, error) {
	logs := make([]WorkoutLog, 0)
	for _, workoutLog := range r.logs {
		if workoutLog.UserID == userID {
			logs = append(logs, workoutLog)
		}
	}
	sortByDateDesc(logs)
	return logs, nil
}

func sortByDateDesc(logs []WorkoutLog) {
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].Date.Equal(logs[j].Date) {
			return logs[i].ID > logs[j].ID
		}
		return logs[i].Date.After(logs[j].Date)
	})
}

type workoutsRepoMock struct {
	workouts map[int]workouts.Workout
}

func NewMockWorkoutsRepo(userWorkouts ...workouts.Workout) *workoutsRepoMock {
	mock := &workoutsRepoMock{
		workouts: make(map[int]workouts.Workout),
	}
	for _, workout := range userWorkouts {
		mock.workouts[workout.ID] = workout
	}
	return mock
}

func (r *workoutsRepoMock) Remove(id int) {
	delete(r.workouts, id)
}

func (r *workoutsRepoMock) Get(_ context.Context, userID, id int) (*workouts.Workout, error) {
	workout, ok := r.workouts[id]
	if !ok || workout.UserID != userID {
		return nil, workouts.ErrWorkoutNotFound
	}
	return &workout, nil
}

func (r *workoutsRepoMock) ListForUser(_ context.Context, userID int) ([]workouts.Workout, error) {
	list := make([]workouts.Workout, 0)
	for _, workout := range r.workouts {
		if workout.UserID == userID {
			list = append(list, workout)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}
