package workoutlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mpetrovic/liftlog/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, workoutLog WorkoutLog) (_ *WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if workoutLog.CreatedAt.IsZero() {
		workoutLog.CreatedAt = time.Now()
	}
	if workoutLog.Results == nil {
		workoutLog.Results = []ExerciseResult{}
	}

	resultsJson, err := json.Marshal(workoutLog.Results)
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_logs (user_id, workout_id, date, results, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id;`,
		workoutLog.UserID, workoutLog.WorkoutID, workoutLog.Date, resultsJson, workoutLog.CreatedAt,
	).Scan(&workoutLog.ID)
	if err != nil {
		return nil, fmt.Errorf("insert workout log: %w", err)
	}

	span.SetAttributes(attribute.Int("workoutlog.id", workoutLog.ID))
	return &workoutLog, nil
}

func (r *Repo) Get(ctx context.Context, userID, id int) (_ *WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, workout_id, date, results, created_at
			FROM workout_logs
			WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return nil, err
	}

	logs, err := r.rows2logs(rows)
	if err != nil {
		return nil, err
	}
	if len(logs) != 1 {
		return nil, ErrLogNotFound
	}
	return &logs[0], nil
}

// ListForDate returns the logs whose date falls in [from, to], both
// bounds inclusive, newest first.
func (r *Repo) ListForDate(ctx context.Context, userID int, from, to time.Time) (_ []WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.listForDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, workout_id, date, results, created_at
			FROM workout_logs
			WHERE user_id = $1 AND date >= $2 AND date <= $3
			ORDER BY date DESC, id DESC;`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return r.rows2logs(rows)
}

// ListForWorkout returns all logs of one workout, date descending.
func (r *Repo) ListForWorkout(ctx context.Context, userID, workoutID int) (_ []WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.listForWorkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, workout_id, date, results, created_at
			FROM workout_logs
			WHERE user_id = $1 AND workout_id = $2
			ORDER BY date DESC, id DESC;`,
		userID, workoutID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return r.rows2logs(rows)
}

func (r *Repo) ListForUser(ctx context.Context, userID int) (_ []WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.listForUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, workout_id, date, results, created_at
			FROM workout_logs
			WHERE user_id = $1
			ORDER BY date DESC, id DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return r.rows2logs(rows)
}

func (r *Repo) rows2logs(rows pgx.Rows) ([]WorkoutLog, error) {
	defer rows.Close()

	logs := make([]WorkoutLog, 0)
	for rows.Next() {
		var workoutLog WorkoutLog
		var resultsJson []byte
		if err := rows.Scan(
			&workoutLog.ID, &workoutLog.UserID, &workoutLog.WorkoutID,
			&workoutLog.Date, &resultsJson, &workoutLog.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(resultsJson, &workoutLog.Results); err != nil {
			return nil, fmt.Errorf("log %d: unmarshal results: %w", workoutLog.ID, err)
		}
		logs = append(logs, workoutLog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
