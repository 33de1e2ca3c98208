package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mpetrovic/liftlog/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrExerciseNotFound = errors.New("exercise not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add stores the workout and its exercises in a single transaction.
func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = time.Now()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(
		ctx,
		`INSERT INTO workouts
				(user_id, name, category, schedule_type, schedule_days, frequency, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		workout.UserID, workout.Name, workout.Category,
		workout.Schedule.Type, DaysCSV(workout.Schedule.Days), workout.Schedule.Frequency,
		workout.CreatedAt,
	).Scan(&workout.ID)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	for i := range workout.Exercises {
		exercise := &workout.Exercises[i]
		err = tx.QueryRow(
			ctx,
			`INSERT INTO exercises
					(workout_id, name, sets, reps, weight, progress, notes, position)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id;`,
			workout.ID, exercise.Name, exercise.Sets, exercise.Reps,
			exercise.Weight, exercise.Progress, exercise.Notes, i,
		).Scan(&exercise.ID)
		if err != nil {
			return nil, fmt.Errorf("insert exercise %d: %w", i, err)
		}
		exercise.WorkoutID = workout.ID
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", workout.ID))
	return &workout, nil
}

// Get returns the workout with its exercises, scoped to the owning
// user: a foreign workout id behaves exactly like a missing one.
func (r *Repo) Get(ctx context.Context, userID, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, category, schedule_type, schedule_days, frequency, created_at
			FROM workouts
			WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return nil, err
	}

	workouts, err := r.rows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) != 1 {
		return nil, ErrWorkoutNotFound
	}

	workout := &workouts[0]
	if err := r.attachExercises(ctx, map[int]*Workout{workout.ID: workout}); err != nil {
		return nil, err
	}
	return workout, nil
}

// ListForUser returns all workouts of the user, ordered by id
// ascending. The order is part of the contract: the day resolver
// relies on it for deterministic tie-breaks.
func (r *Repo) ListForUser(ctx context.Context, userID int) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listForUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, category, schedule_type, schedule_days, frequency, created_at
			FROM workouts
			WHERE user_id = $1
			ORDER BY id ASC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	workouts, err := r.rows2workouts(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2workouts: %w", err)
	}

	byID := make(map[int]*Workout, len(workouts))
	for i := range workouts {
		byID[workouts[i].ID] = &workouts[i]
	}
	if err := r.attachExercises(ctx, byID); err != nil {
		return nil, err
	}

	return workouts, nil
}

// Delete removes the workout together with its exercises and logs.
// All three deletes run in one transaction: a failure mid-way leaves
// no orphaned rows behind.
func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(
		ctx,
		`DELETE FROM workout_logs WHERE workout_id = $1 AND user_id = $2;`,
		id, userID,
	); err != nil {
		return fmt.Errorf("delete workout logs: %w", err)
	}

	if _, err := tx.Exec(
		ctx,
		`DELETE FROM exercises WHERE workout_id IN (
			SELECT id FROM workouts WHERE id = $1 AND user_id = $2
		);`,
		id, userID,
	); err != nil {
		return fmt.Errorf("delete exercises: %w", err)
	}

	tag, err := tx.Exec(
		ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// UpdateExercise updates an exercise template in place, scoped to the
// owning user via its workout.
func (r *Repo) UpdateExercise(ctx context.Context, userID int, exercise Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.updateExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exercise.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE exercises e SET
				name = $1, sets = $2, reps = $3, weight = $4, progress = $5, notes = $6
			FROM workouts w
			WHERE e.workout_id = w.id AND e.id = $7 AND w.user_id = $8;`,
		exercise.Name, exercise.Sets, exercise.Reps, exercise.Weight,
		exercise.Progress, exercise.Notes,
		exercise.ID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *Repo) rows2workouts(rows pgx.Rows) ([]Workout, error) {
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		var w Workout
		var scheduleType string
		var scheduleDays string
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Name, &w.Category,
			&scheduleType, &scheduleDays, &w.Schedule.Frequency, &w.CreatedAt,
		); err != nil {
			return nil, err
		}

		w.Schedule.Type = ScheduleType(scheduleType)
		days, err := ParseDaysCSV(scheduleDays)
		if err != nil {
			return nil, fmt.Errorf("workout %d: %w", w.ID, err)
		}
		w.Schedule.Days = days
		w.Exercises = []Exercise{}

		workouts = append(workouts, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if workouts == nil {
		workouts = make([]Workout, 0)
	}
	return workouts, nil
}

func (r *Repo) attachExercises(ctx context.Context, workoutsByID map[int]*Workout) error {
	if len(workoutsByID) == 0 {
		return nil
	}

	workoutIDs := make([]int, 0, len(workoutsByID))
	for id := range workoutsByID {
		workoutIDs = append(workoutIDs, id)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, workout_id, name, sets, reps, weight, progress, notes
			FROM exercises
			WHERE workout_id = ANY($1)
			ORDER BY workout_id, position, id;`,
		workoutIDs,
	)
	if err != nil {
		return fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Exercise
		if err := rows.Scan(
			&e.ID, &e.WorkoutID, &e.Name, &e.Sets, &e.Reps,
			&e.Weight, &e.Progress, &e.Notes,
		); err != nil {
			return err
		}
		if workout, ok := workoutsByID[e.WorkoutID]; ok {
			workout.Exercises = append(workout.Exercises, e)
		}
	}

	return rows.Err()
}
