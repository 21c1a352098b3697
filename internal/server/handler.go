package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/dexterpante/scheduler/internal/pipeline"
	"github.com/dexterpante/scheduler/pkg/model"
)

type Handler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

type teacherTimetableResponse struct {
	RunId      string                 `json:"run_id"`
	Teacher    model.Teacher          `json:"teacher"`
	Timetables []model.ShiftTimetable `json:"timetables"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateSchedule solves the posted model input and returns the completed run
func (h *Handler) CreateSchedule(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		respondError(c, withMessage(ErrValidation, "request body must be a JSON object", nil))
		return
	}

	input, err := model.InputFromMap(raw)
	if err != nil {
		respondError(c, withMessage(ErrValidation, err.Error(), nil))
		return
	}

	run, err := h.pipeline.Run(c.Request.Context(), input)
	if err != nil {
		appErr := fromError(err)
		if appErr.Status >= http.StatusInternalServerError {
			h.logger.Error("schedule run failed", zap.Error(err))
		}
		respondError(c, appErr)
		return
	}
	respondJSON(c, http.StatusOK, run)
}

func (h *Handler) LatestSchedule(c *gin.Context) {
	run, ok := h.pipeline.Latest()
	if !ok {
		respondError(c, withMessage(ErrNotFound, "no schedule has been generated yet", nil))
		return
	}
	respondJSON(c, http.StatusOK, run)
}

// TeacherTimetable renders the latest schedule of one teacher, one grid per shift
func (h *Handler) TeacherTimetable(c *gin.Context) {
	run, ok := h.pipeline.Latest()
	if !ok {
		respondError(c, withMessage(ErrNotFound, "no schedule has been generated yet", nil))
		return
	}

	teacher, ok := lo.Find(run.Input.Teachers, func(teacher model.Teacher) bool { return teacher.Id == c.Param("id") })
	if !ok {
		respondError(c, withMessage(ErrNotFound, "teacher not found in the latest run", nil))
		return
	}

	respondJSON(c, http.StatusOK, teacherTimetableResponse{
		RunId:      run.Id,
		Teacher:    teacher,
		Timetables: model.TeacherTimetable(run.Result.Schedule, teacher.Id, run.Input.Shifts),
	})
}

// Simulate projects an outcome score; parameters left out are seeded from the latest run
func (h *Handler) Simulate(c *gin.Context) {
	var request pipeline.SimulationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			respondError(c, withMessage(ErrValidation, "invalid simulation request", nil))
			return
		}
	}

	projection, err := h.pipeline.Simulate(request)
	if err != nil {
		respondError(c, fromError(err))
		return
	}
	respondJSON(c, http.StatusOK, projection)
}
