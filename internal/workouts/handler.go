package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mpetrovic/liftlog/internal/middleware"
	"github.com/mpetrovic/liftlog/internal/telemetry/metrics"
	"github.com/mpetrovic/liftlog/internal/telemetry/tracing"
	"github.com/mpetrovic/liftlog/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	Get(ctx context.Context, userID, id int) (*Workout, error)
	ListForUser(ctx context.Context, userID int) ([]Workout, error)
	UpdateExercise(ctx context.Context, userID int, exercise Exercise) error
	Delete(ctx context.Context, userID, id int) error
}

// DayResponse is the wire form of a resolved day. WorkoutID is null on
// rest days so that clients cannot mistake the rest sentinel for a
// real workout id.
type DayResponse struct {
	Date      string     `json:"date"`
	WorkoutID *int       `json:"workoutId"`
	Category  string     `json:"category"`
	Exercises []Exercise `json:"exercises"`
}

func dayResponseFrom(day DayResult) DayResponse {
	resp := DayResponse{
		Date:      day.Date.Format("2006-01-02"),
		Category:  day.Category,
		Exercises: day.Exercises,
	}
	if !day.IsRest() {
		workoutID := day.WorkoutID
		resp.WorkoutID = &workoutID
	}
	return resp
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
}

type DeleteWorkoutResponse struct {
	DeletedID int `json:"deletedId"`
}

type UpdateExerciseResponse struct {
	UpdatedID int `json:"updatedId"`
}

type newWorkoutRequest struct {
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	Schedule  Schedule   `json:"schedule"`
	Exercises []Exercise `json:"exercises"`
}

func (req *newWorkoutRequest) validate() error {
	if req.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !ValidCategory(req.Category) {
		return &ValidationError{Field: "category", Reason: "unknown workout category"}
	}
	for i, exercise := range req.Exercises {
		if exercise.Name == "" {
			return &ValidationError{
				Field:  "exercises[" + strconv.Itoa(i) + "].name",
				Reason: "must not be empty",
			}
		}
	}
	return req.Schedule.Validate()
}

type Handler struct {
	repo    workoutsRepo
	metrics *metrics.Manager
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/workouts", handler.HandleList).Methods("GET", "OPTIONS").Name("workouts")
	router.HandleFunc("/workouts", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	router.HandleFunc("/workouts/date/{date}", handler.HandleDay).Methods("GET", "OPTIONS").Name("workout-for-date")
	router.HandleFunc("/workouts/week/{date}", handler.HandleWeek).Methods("GET", "OPTIONS").Name("workouts-week")
	router.HandleFunc("/workouts/exercises/{id}", handler.HandleUpdateExercise).Methods("PUT", "OPTIONS").Name("update-exercise")
	router.HandleFunc("/workouts/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID := middleware.UserIDFromContext(ctx)

	userWorkouts, err := handler.repo.ListForUser(ctx, userID)
	if err != nil {
		log.Errorf("list workouts for user %d: %s", userID, err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	listRespJson, err := json.Marshal(ListResponse{Workouts: userWorkouts})
	if err != nil {
		log.Errorf("marshal workouts list: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listRespJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req newWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := middleware.UserIDFromContext(ctx)
	addedWorkout, err := handler.repo.Add(ctx, Workout{
		UserID:    userID,
		Name:      req.Name,
		Category:  req.Category,
		Schedule:  req.Schedule,
		Exercises: req.Exercises,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Errorf("failed to add workout [%s] for user %d: %s", req.Name, userID, err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	addedWorkoutJson, err := json.Marshal(addedWorkout)
	if err != nil {
		log.Errorf("failed to marshal new workout: %s", err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWorkoutsCreated.Inc()
	log.Debugf("new workout added: %s", addedWorkoutJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedWorkoutJson, http.StatusCreated)
}

func (handler *Handler) HandleDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.day")
	defer span.End()

	date, err := ParseDate(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := middleware.UserIDFromContext(ctx)
	userWorkouts, err := handler.repo.ListForUser(ctx, userID)
	if err != nil {
		log.Errorf("resolve day, list workouts for user %d: %s", userID, err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	dayRespJson, err := json.Marshal(dayResponseFrom(ResolveDay(userWorkouts, date)))
	if err != nil {
		log.Errorf("marshal day response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, dayRespJson, http.StatusOK)
}

func (handler *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.week")
	defer span.End()

	startDate, err := ParseDate(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := middleware.UserIDFromContext(ctx)
	userWorkouts, err := handler.repo.ListForUser(ctx, userID)
	if err != nil {
		log.Errorf("resolve week, list workouts for user %d: %s", userID, err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	week := ResolveWeek(userWorkouts, startDate)
	weekResp := make([]DayResponse, 0, len(week))
	for _, day := range week {
		weekResp = append(weekResp, dayResponseFrom(day))
	}

	weekRespJson, err := json.Marshal(weekResp)
	if err != nil {
		log.Errorf("marshal week response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, weekRespJson, http.StatusOK)
}

func (handler *Handler) HandleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateExercise")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		log.Errorf("update exercise, unmarshal json params: %s", err)
		http.Error(w, "update exercise failed", http.StatusBadRequest)
		return
	}
	exercise.ID = id

	if exercise.Name == "" {
		http.Error(w, "error, exercise name empty", http.StatusBadRequest)
		return
	}

	userID := middleware.UserIDFromContext(ctx)
	if err := handler.repo.UpdateExercise(ctx, userID, exercise); err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			log.Debugf("exercise %d not found for user %d", id, userID)
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update exercise %d: %s", id, err)
		http.Error(w, "error, failed to update exercise", http.StatusInternalServerError)
		return
	}

	updateRespJson, err := json.Marshal(UpdateExerciseResponse{UpdatedID: id})
	if err != nil {
		log.Errorf("failed to marshal update response: %s", err)
		http.Error(w, "failed to marshal update response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(updateRespJson))
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	userID := middleware.UserIDFromContext(ctx)
	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			log.Debugf("workout %d not found for user %d", id, userID)
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete workout %d: %s", id, err)
		http.Error(w, "workout not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteWorkoutResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}
