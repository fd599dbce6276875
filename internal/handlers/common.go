package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepkit/exam-engine/internal/engine"
	"github.com/prepkit/exam-engine/internal/services"
	"github.com/prepkit/exam-engine/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and response helpers for all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
	}
	fields = append(fields, additionalFields...)
	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetHeader("X-Request-ID"),
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

// RespondWithError maps a service error to a consistent HTTP error response.
func (h *BaseHandler) RespondWithError(c *gin.Context, err error, message string) {
	switch {
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: message,
			Details: err.Error(),
		})
	case isStateConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: message,
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, message)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: message,
		})
	}
}

// isStateConflict reports whether err is a session lifecycle violation rather
// than a bad payload or a missing resource.
func isStateConflict(err error) bool {
	for _, target := range []error{
		engine.ErrSessionNotRunning,
		engine.ErrSessionRunning,
		engine.ErrEmptyQuestionPool,
		engine.ErrNoCurrentQuestion,
		engine.ErrAlreadyCorrected,
		services.ErrSessionNotFinished,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// HealthCheck responds to liveness probes.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "exam-engine"})
}
