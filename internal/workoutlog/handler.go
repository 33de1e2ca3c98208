package workoutlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mpetrovic/liftlog/internal/middleware"
	"github.com/mpetrovic/liftlog/internal/telemetry/metrics"
	"github.com/mpetrovic/liftlog/internal/telemetry/tracing"
	"github.com/mpetrovic/liftlog/internal/workouts"
	"github.com/mpetrovic/liftlog/pkg"
)

type logSessionRequest struct {
	WorkoutID int              `json:"workoutId"`
	Date      string           `json:"date"`
	Exercises []ExerciseResult `json:"exercises"`
}

type LogsResponse struct {
	Logs []WorkoutLog `json:"logs"`
}

type EnrichedLogsResponse struct {
	Logs []EnrichedLog `json:"logs"`
}

type Handler struct {
	service *Service
	metrics *metrics.Manager
}

func NewHandler(service *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service: service,
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	// literal "logs" segments have to go in before the {id} routes
	router.HandleFunc("/workouts/logs", handler.HandleListAll).Methods("GET", "OPTIONS").Name("all-workout-logs")
	router.HandleFunc("/workouts/logs", handler.HandleLogSession).Methods("POST", "OPTIONS").Name("new-workout-log")
	router.HandleFunc("/workouts/logs/{date}", handler.HandleListForDate).Methods("GET", "OPTIONS").Name("workout-logs-for-date")
	router.HandleFunc("/workouts/{id}/log", handler.HandleLogSessionForWorkout).Methods("POST", "OPTIONS").Name("new-workout-log-for-workout")
	router.HandleFunc("/workouts/{id}/logs", handler.HandleListForWorkout).Methods("GET", "OPTIONS").Name("workout-logs-for-workout")
}

func (handler *Handler) HandleLogSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.new")
	defer span.End()

	handler.logSession(ctx, w, r, 0)
}

func (handler *Handler) HandleLogSessionForWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.new-for-workout")
	defer span.End()

	workoutID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, workout id NaN", http.StatusBadRequest)
		return
	}

	handler.logSession(ctx, w, r, workoutID)
}

// logSession is shared between the two log-a-session routes. With a
// zero workoutID the id is taken from the request body instead of the
// path.
func (handler *Handler) logSession(ctx context.Context, w http.ResponseWriter, r *http.Request, workoutID int) {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req logSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("log session, unmarshal json params: %s", err)
		http.Error(w, "log session failed", http.StatusBadRequest)
		return
	}

	if workoutID == 0 {
		workoutID = req.WorkoutID
	}
	if workoutID == 0 {
		http.Error(w, "error, workout id empty", http.StatusBadRequest)
		return
	}
	if len(req.Exercises) == 0 {
		http.Error(w, "error, exercises empty", http.StatusBadRequest)
		return
	}
	if req.Date == "" {
		http.Error(w, "error, date empty", http.StatusBadRequest)
		return
	}
	date, err := workouts.ParseDate(req.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := middleware.UserIDFromContext(ctx)
	addedLog, err := handler.service.LogSession(ctx, WorkoutLog{
		UserID:    userID,
		WorkoutID: workoutID,
		Date:      date,
		Results:   req.Exercises,
	})
	if err != nil {
		if errors.Is(err, workouts.ErrWorkoutNotFound) {
			log.Debugf("log session, workout %d not found for user %d", workoutID, userID)
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to log session for workout %d: %s", workoutID, err)
		http.Error(w, "error, failed to log session", http.StatusInternalServerError)
		return
	}

	addedLogJson, err := json.Marshal(addedLog)
	if err != nil {
		log.Errorf("failed to marshal new workout log: %s", err)
		http.Error(w, "error, failed to log session", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterSessionsLogged.Inc()
	log.Debugf("session logged: %s", addedLogJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedLogJson, http.StatusCreated)
}

func (handler *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.list")
	defer span.End()

	userID := middleware.UserIDFromContext(ctx)
	logs, err := handler.service.LogsForUser(ctx, userID)
	if err != nil {
		log.Errorf("list workout logs for user %d: %s", userID, err)
		http.Error(w, "failed to get workout logs", http.StatusInternalServerError)
		return
	}

	logsJson, err := json.Marshal(EnrichedLogsResponse{Logs: logs})
	if err != nil {
		log.Errorf("marshal workout logs: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, logsJson, http.StatusOK)
}

func (handler *Handler) HandleListForDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.list-for-date")
	defer span.End()

	date, err := workouts.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := middleware.UserIDFromContext(ctx)
	logs, err := handler.service.LogsForDate(ctx, userID, date)
	if err != nil {
		log.Errorf("list workout logs for user %d, date %s: %s", userID, date, err)
		http.Error(w, "failed to get workout logs", http.StatusInternalServerError)
		return
	}

	logsJson, err := json.Marshal(EnrichedLogsResponse{Logs: logs})
	if err != nil {
		log.Errorf("marshal workout logs: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, logsJson, http.StatusOK)
}

func (handler *Handler) HandleListForWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.list-for-workout")
	defer span.End()

	workoutID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, workout id NaN", http.StatusBadRequest)
		return
	}

	userID := middleware.UserIDFromContext(ctx)
	logs, err := handler.service.LogsForWorkout(ctx, userID, workoutID)
	if err != nil {
		if errors.Is(err, workouts.ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("list workout logs for workout %d: %s", workoutID, err)
		http.Error(w, "failed to get workout logs", http.StatusInternalServerError)
		return
	}

	logsJson, err := json.Marshal(LogsResponse{Logs: logs})
	if err != nil {
		log.Errorf("marshal workout logs: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, logsJson, http.StatusOK)
}
