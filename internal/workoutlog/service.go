package workoutlog

import (
	"context"
	"fmt"
	"time"

	"github.com/mpetrovic/liftlog/internal/telemetry/tracing"
	"github.com/mpetrovic/liftlog/internal/workouts"

	"go.opentelemetry.io/otel/attribute"
)

type logsRepo interface {
	Add(ctx context.Context, workoutLog WorkoutLog) (*WorkoutLog, error)
	Get(ctx context.Context, userID, id int) (*WorkoutLog, error)
	ListForDate(ctx context.Context, userID int, from, to time.Time) ([]WorkoutLog, error)
	ListForWorkout(ctx context.Context, userID, workoutID int) ([]WorkoutLog, error)
	ListForUser(ctx context.Context, userID int) ([]WorkoutLog, error)
}

type workoutsRepo interface {
	Get(ctx context.Context, userID, id int) (*workouts.Workout, error)
	ListForUser(ctx context.Context, userID int) ([]workouts.Workout, error)
}

// Service reconciles logged sessions with the workout templates they
// came from.
type Service struct {
	logs         logsRepo
	workoutsRepo workoutsRepo
}

func NewService(logs logsRepo, workoutsRepo workoutsRepo) *Service {
	return &Service{
		logs:         logs,
		workoutsRepo: workoutsRepo,
	}
}

// LogSession persists a performed session. The workout must belong to
// the calling user: an unknown or foreign workout id yields
// workouts.ErrWorkoutNotFound, indistinguishable from a missing row.
// The date is client-supplied, so sessions can be backfilled.
func (s *Service) LogSession(ctx context.Context, workoutLog WorkoutLog) (_ *WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutlog.logSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutLog.WorkoutID))

	if _, err := s.workoutsRepo.Get(ctx, workoutLog.UserID, workoutLog.WorkoutID); err != nil {
		return nil, err
	}

	return s.logs.Add(ctx, workoutLog)
}

// LogsForDate returns the sessions logged on the given UTC calendar
// day, each enriched with the originating workout. A log whose workout
// was deleted in the meantime is still returned, with a nil workout
// projection.
func (s *Service) LogsForDate(ctx context.Context, userID int, date time.Time) (_ []EnrichedLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutlog.logsForDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Nanosecond)

	logs, err := s.logs.ListForDate(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	return s.enrich(ctx, userID, logs)
}

// LogsForWorkout returns the history of one workout, date descending.
func (s *Service) LogsForWorkout(ctx context.Context, userID, workoutID int) (_ []WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutlog.logsForWorkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.workoutsRepo.Get(ctx, userID, workoutID); err != nil {
		return nil, err
	}

	return s.logs.ListForWorkout(ctx, userID, workoutID)
}

// LogsForUser returns the full session history of a user, enriched,
// date descending.
func (s *Service) LogsForUser(ctx context.Context, userID int) (_ []EnrichedLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutlog.logsForUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	logs, err := s.logs.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	return s.enrich(ctx, userID, logs)
}

func (s *Service) enrich(ctx context.Context, userID int, logs []WorkoutLog) ([]EnrichedLog, error) {
	userWorkouts, err := s.workoutsRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	infoByID := make(map[int]*WorkoutInfo, len(userWorkouts))
	for _, workout := range userWorkouts {
		infoByID[workout.ID] = &WorkoutInfo{
			ID:       workout.ID,
			Name:     workout.Name,
			Category: workout.Category,
		}
	}

	enriched := make([]EnrichedLog, 0, len(logs))
	for _, workoutLog := range logs {
		enriched = append(enriched, EnrichedLog{
			WorkoutLog: workoutLog,
			Workout:    infoByID[workoutLog.WorkoutID],
		})
	}
	return enriched, nil
}
