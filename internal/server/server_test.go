package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dexterpante/scheduler/internal/cache"
	"github.com/dexterpante/scheduler/internal/config"
	"github.com/dexterpante/scheduler/internal/metrics"
	"github.com/dexterpante/scheduler/internal/pipeline"
	"github.com/dexterpante/scheduler/pkg/ilp"
	"github.com/dexterpante/scheduler/pkg/model"
	"github.com/dexterpante/scheduler/pkg/readiness"
)

const scheduleBody = `{
	"teachers": [{"id": 1, "major": "Math", "minor": "Science"}, {"id": 2, "major": "English"}],
	"rooms": [{"id": "R1", "capacity": 40}],
	"classes": [
		{"id": "G7-A", "subject": "Math", "times_per_week": 2, "duration": 1},
		{"id": "G7-B", "subject": "English", "times_per_week": 1, "duration": 1}
	]
}`

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *Error          `json:"error"`
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	p := pipeline.New(model.NewIlpTimetabler(ilp.NewPartitionSolver(), true), pipeline.Options{
		Solver:     "partition",
		Store:      cache.NewMemoryStore(0),
		Metrics:    m,
		Policy:     config.PolicyConfig{MaxPerDay: 6, MaxPerWeek: 30, Shifts: 1},
		Simulation: config.SimulationConfig{Baseline: 60, ClassSize: 45},
	})
	return NewRouter(p, zap.NewNop(), m)
}

func perform(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	request := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var response envelope
	if recorder.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	}
	return recorder, response
}

func TestCreateSchedule(t *testing.T) {
	//** Arrange
	router := newRouter()

	//** Act
	recorder, response := perform(t, router, http.MethodPost, "/api/v1/schedules", scheduleBody)

	//** Assert
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, response.Error)

	var run pipeline.Run
	require.NoError(t, json.Unmarshal(response.Data, &run))
	assert.Equal(t, model.StatusOptimal, run.Result.Status)
	assert.Len(t, run.Result.Schedule, 3)
	assert.Equal(t, "1", run.Input.Teachers[0].Id) // Numeric ids are read as strings
	require.NotNil(t, run.SRI)
	assert.Equal(t, 100.0, *run.SRI)
}

func TestCreateScheduleInfeasible(t *testing.T) {
	router := newRouter()
	body := `{"teachers": [{"id": "T1", "major": "Math"}], "rooms": [{"id": "R1", "capacity": 40}],
		"sections": [{"id": "G7-A", "subject": "Filipino", "occurrences_per_week": 1, "duration": 1}]}`

	recorder, response := perform(t, router, http.MethodPost, "/api/v1/schedules", body)

	require.Equal(t, http.StatusOK, recorder.Code)
	var run pipeline.Run
	require.NoError(t, json.Unmarshal(response.Data, &run))
	assert.Equal(t, model.StatusInfeasible, run.Result.Status)
	assert.NotEmpty(t, run.Result.Reason)
}

func TestCreateScheduleValidation(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"Malformed JSON", `{"teachers": [`},
		{"Missing major", `{"teachers": [{"id": "T1"}], "rooms": [{"id": "R1", "capacity": 40}], "sections": []}`},
		{"Fractional occurrences", `{"teachers": [{"id": "T1", "major": "Math"}], "rooms": [{"id": "R1", "capacity": 40}],
			"sections": [{"id": "G7-A", "subject": "Math", "occurrences_per_week": 1.5, "duration": 1}]}`},
		{"Duplicate room", `{"teachers": [{"id": "T1", "major": "Math"}], "rooms": [{"id": "R1", "capacity": 40}, {"id": "R1", "capacity": 30}], "sections": []}`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder, response := perform(t, newRouter(), http.MethodPost, "/api/v1/schedules", testCase.body)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			require.NotNil(t, response.Error)
			assert.Equal(t, "VALIDATION_ERROR", response.Error.Code)
		})
	}
}

func TestLatestSchedule(t *testing.T) {
	router := newRouter()

	recorder, response := perform(t, router, http.MethodGet, "/api/v1/schedules/latest", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	require.NotNil(t, response.Error)
	assert.Equal(t, "NOT_FOUND", response.Error.Code)

	perform(t, router, http.MethodPost, "/api/v1/schedules", scheduleBody)

	recorder, response = perform(t, router, http.MethodGet, "/api/v1/schedules/latest", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	var run pipeline.Run
	require.NoError(t, json.Unmarshal(response.Data, &run))
	assert.Len(t, run.Result.Schedule, 3)
}

func TestTeacherTimetable(t *testing.T) {
	//** Arrange
	router := newRouter()
	perform(t, router, http.MethodPost, "/api/v1/schedules", scheduleBody)

	//** Act
	recorder, response := perform(t, router, http.MethodGet, "/api/v1/schedules/latest/teachers/1", "")
	missing, _ := perform(t, router, http.MethodGet, "/api/v1/schedules/latest/teachers/T9", "")

	//** Assert
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	var timetable teacherTimetableResponse
	require.NoError(t, json.Unmarshal(response.Data, &timetable))
	assert.Equal(t, "Math", timetable.Teacher.Major)
	require.Len(t, timetable.Timetables, 1)

	filled := 0
	for _, row := range timetable.Timetables[0].Cells {
		for _, cell := range row {
			if cell != "" {
				assert.Contains(t, cell, "(G7-A)")
				filled++
			}
		}
	}
	assert.Equal(t, 2, filled)
}

func TestSimulate(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		recorder, response := perform(t, newRouter(), http.MethodPost, "/api/v1/simulations", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		var projection readiness.Projection
		require.NoError(t, json.Unmarshal(response.Data, &projection))
		assert.Equal(t, 60.0, projection.Score)
	})

	t.Run("Overrides", func(t *testing.T) {
		recorder, response := perform(t, newRouter(), http.MethodPost, "/api/v1/simulations", `{"class_size": 55, "shifts": 2}`)

		require.Equal(t, http.StatusOK, recorder.Code)
		var projection readiness.Projection
		require.NoError(t, json.Unmarshal(response.Data, &projection))
		assert.InDelta(t, 55.0, projection.Score, 1e-9)
	})

	t.Run("Invalid shifts", func(t *testing.T) {
		recorder, response := perform(t, newRouter(), http.MethodPost, "/api/v1/simulations", `{"shifts": 5}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		require.NotNil(t, response.Error)
		assert.Equal(t, "VALIDATION_ERROR", response.Error.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	router := newRouter()

	health, _ := perform(t, router, http.MethodGet, "/healthz", "")
	perform(t, router, http.MethodPost, "/api/v1/schedules", scheduleBody)
	exposition, _ := perform(t, router, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, http.StatusOK, exposition.Code)
	assert.Contains(t, exposition.Body.String(), "tala_runs_total")
}
