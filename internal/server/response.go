package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dexterpante/scheduler/pkg/model"
	"github.com/dexterpante/scheduler/pkg/readiness"
)

// Envelope represents the common response contract
type Envelope struct {
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Status  int    `json:"-"`
}

var (
	ErrValidation = &Error{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: "validation failed"}
	ErrNotFound   = &Error{Code: "NOT_FOUND", Status: http.StatusNotFound, Message: "resource not found"}
	ErrInternal   = &Error{Code: "INTERNAL_ERROR", Status: http.StatusInternalServerError, Message: "internal server error"}
)

func withMessage(base *Error, message string, details any) *Error {
	clone := *base
	if message != "" {
		clone.Message = message
	}
	clone.Details = details
	return &clone
}

// fromError maps domain errors onto the envelope's error codes
func fromError(err error) *Error {
	var validationErrors model.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return withMessage(ErrValidation, "", validationErrors)
	case errors.Is(err, readiness.ErrInvalidSimulation), errors.Is(err, readiness.ErrInvalidWeights):
		return withMessage(ErrValidation, err.Error(), nil)
	}
	return ErrInternal
}

func respondJSON(c *gin.Context, status int, data any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Data: data})
}

func respondError(c *gin.Context, appErr *Error) {
	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(appErr.Status, Envelope{Error: appErr})
}
