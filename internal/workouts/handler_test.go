package workouts_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrovic/liftlog/internal/middleware"
	"github.com/mpetrovic/liftlog/internal/telemetry/metrics"
	"github.com/mpetrovic/liftlog/internal/workouts"
)

const testUserID = 42

func authedRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req, err = http.NewRequest(method, target, nil)
	}
	require.NoError(t, err)
	return req.WithContext(middleware.ContextWithUserID(req.Context(), testUserID))
}

func TestHandler_HandleList(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	repoMock.EXPECT().
		ListForUser(gomock.Any(), testUserID).
		Return([]workouts.Workout{
			{ID: 1, UserID: testUserID, Name: "Push A", Category: workouts.CategoryPush},
			{ID: 2, UserID: testUserID, Name: "Leg day", Category: workouts.CategoryLegs},
		}, nil).Times(1)

	rec := httptest.NewRecorder()
	h.HandleList(rec, authedRequest(t, "GET", "/workouts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp workouts.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Workouts, 2)
	assert.Equal(t, "Push A", listResp.Workouts[0].Name)
	assert.Equal(t, "Leg day", listResp.Workouts[1].Name)
}

func TestHandler_HandleAdd(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	metricsManager := metrics.NewTestManager()
	h := workouts.NewHandler(repoMock, metricsManager)

	reqBody := `{
		"name": "Push A",
		"category": "Push",
		"schedule": {"type": "weekly", "days": [1, 3, 5]},
		"exercises": [
			{"name": "Bench press", "sets": 3, "reps": 8, "weight": 60},
			{"name": "Overhead press", "sets": 3, "reps": 10, "weight": 30}
		]
	}`

	repoMock.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, w workouts.Workout) (*workouts.Workout, error) {
			assert.Equal(t, testUserID, w.UserID)
			assert.Equal(t, "Push A", w.Name)
			assert.Equal(t, workouts.ScheduleWeekly, w.Schedule.Type)
			assert.Equal(t, []int{1, 3, 5}, w.Schedule.Days)
			require.Len(t, w.Exercises, 2)
			w.ID = 13
			return &w, nil
		}).Times(1)

	req := authedRequest(t, "POST", "/workouts", []byte(reqBody))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.HandleAdd(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var addedWorkout workouts.Workout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addedWorkout))
	assert.Equal(t, 13, addedWorkout.ID)
}

func TestHandler_HandleAdd_BadInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	for name, body := range map[string]string{
		"empty name":         `{"name":"","category":"Push","schedule":{"type":"daily"}}`,
		"unknown category":   `{"name":"W","category":"Cardio","schedule":{"type":"daily"}}`,
		"rest not allowed":   `{"name":"W","category":"Rest","schedule":{"type":"daily"}}`,
		"weekly no days":     `{"name":"W","category":"Push","schedule":{"type":"weekly"}}`,
		"day out of range":   `{"name":"W","category":"Push","schedule":{"type":"weekly","days":[7]}}`,
		"duplicate days":     `{"name":"W","category":"Push","schedule":{"type":"weekly","days":[1,1]}}`,
		"bad schedule type":  `{"name":"W","category":"Push","schedule":{"type":"monthly"}}`,
		"empty exercise":     `{"name":"W","category":"Push","schedule":{"type":"daily"},"exercises":[{"name":""}]}`,
		"not json at all":    `][`,
	} {
		t.Run(name, func(t *testing.T) {
			req := authedRequest(t, "POST", "/workouts", []byte(body))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			h.HandleAdd(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_HandleDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	userWorkouts := []workouts.Workout{
		{
			ID: 1, UserID: testUserID, Name: "Push A", Category: workouts.CategoryPush,
			Schedule:  workouts.Schedule{Type: workouts.ScheduleWeekly, Days: []int{1, 3, 5}},
			Exercises: []workouts.Exercise{{ID: 11, Name: "Bench press", Sets: 3, Reps: 8}},
		},
	}

	repoMock.EXPECT().
		ListForUser(gomock.Any(), testUserID).
		Return(userWorkouts, nil).Times(2)

	// 2024-01-01 is a monday: the weekly workout matches
	req := authedRequest(t, "GET", "/workouts/date/2024-01-01", nil)
	req = mux.SetURLVars(req, map[string]string{"date": "2024-01-01"})
	rec := httptest.NewRecorder()
	h.HandleDay(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var dayResp workouts.DayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dayResp))
	require.NotNil(t, dayResp.WorkoutID)
	assert.Equal(t, 1, *dayResp.WorkoutID)
	assert.Equal(t, workouts.CategoryPush, dayResp.Category)
	assert.Equal(t, "2024-01-01", dayResp.Date)
	require.Len(t, dayResp.Exercises, 1)

	// the day after is a rest day: null workout id
	req = authedRequest(t, "GET", "/workouts/date/2024-01-02", nil)
	req = mux.SetURLVars(req, map[string]string{"date": "2024-01-02"})
	rec = httptest.NewRecorder()
	h.HandleDay(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dayResp))
	assert.Nil(t, dayResp.WorkoutID)
	assert.Equal(t, workouts.CategoryRest, dayResp.Category)
	assert.Empty(t, dayResp.Exercises)
}

func TestHandler_HandleDay_MalformedDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	for _, malformed := range []string{"2024-1-1", "01-01-2024", "tomorrow"} {
		req := authedRequest(t, "GET", "/workouts/date/"+malformed, nil)
		req = mux.SetURLVars(req, map[string]string{"date": malformed})
		rec := httptest.NewRecorder()
		h.HandleDay(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "input %q", malformed)
	}
}

func TestHandler_HandleWeek(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	repoMock.EXPECT().
		ListForUser(gomock.Any(), testUserID).
		Return([]workouts.Workout{
			{
				ID: 1, Category: workouts.CategoryPush,
				Schedule: workouts.Schedule{Type: workouts.ScheduleWeekly, Days: []int{1, 3, 5}},
			},
		}, nil).Times(1)

	req := authedRequest(t, "GET", "/workouts/week/2024-01-01", nil)
	req = mux.SetURLVars(req, map[string]string{"date": "2024-01-01"})
	rec := httptest.NewRecorder()
	h.HandleWeek(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var weekResp []workouts.DayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weekResp))
	require.Len(t, weekResp, 7)

	assert.Equal(t, "2024-01-01", weekResp[0].Date)
	assert.Equal(t, "2024-01-07", weekResp[6].Date)

	workoutDays := 0
	for _, day := range weekResp {
		if day.WorkoutID != nil {
			workoutDays++
		} else {
			assert.Equal(t, workouts.CategoryRest, day.Category)
		}
	}
	assert.Equal(t, 3, workoutDays)
}

func TestHandler_HandleDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	repoMock.EXPECT().
		Delete(gomock.Any(), testUserID, 13).
		Return(nil).Times(1)

	req := authedRequest(t, "DELETE", "/workouts/13", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "13"})
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deletedId": 13}`, rec.Body.String())
}

func TestHandler_HandleDelete_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	// a foreign workout id is indistinguishable from a missing one
	repoMock.EXPECT().
		Delete(gomock.Any(), testUserID, 999).
		Return(workouts.ErrWorkoutNotFound).Times(1)

	req := authedRequest(t, "DELETE", "/workouts/999", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "999"})
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_HandleDelete_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	repoMock.EXPECT().
		Delete(gomock.Any(), testUserID, 13).
		Return(errors.New("conn closed")).Times(1)

	req := authedRequest(t, "DELETE", "/workouts/13", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "13"})
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_HandleUpdateExercise(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	repoMock.EXPECT().
		UpdateExercise(gomock.Any(), testUserID, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ int, e workouts.Exercise) error {
			assert.Equal(t, 11, e.ID)
			assert.Equal(t, "Incline bench press", e.Name)
			assert.Equal(t, 4, e.Sets)
			return nil
		}).Times(1)

	body := `{"name":"Incline bench press","sets":4,"reps":8,"weight":50,"progress":5}`
	req := authedRequest(t, "PUT", "/workouts/exercises/11", []byte(body))
	req.Header.Set("Content-Type", "application/json")
	req = mux.SetURLVars(req, map[string]string{"id": "11"})

	rec := httptest.NewRecorder()
	h.HandleUpdateExercise(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updatedId": 11}`, rec.Body.String())
}

func TestHandler_HandleUpdateExercise_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	repoMock.EXPECT().
		UpdateExercise(gomock.Any(), testUserID, gomock.Any()).
		Return(workouts.ErrExerciseNotFound).Times(1)

	req := authedRequest(t, "PUT", "/workouts/exercises/999", []byte(`{"name":"Curl"}`))
	req.Header.Set("Content-Type", "application/json")
	req = mux.SetURLVars(req, map[string]string{"id": "999"})

	rec := httptest.NewRecorder()
	h.HandleUpdateExercise(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
