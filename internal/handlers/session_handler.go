package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepkit/exam-engine/internal/services"
	"github.com/prepkit/exam-engine/internal/utils"
)

// SessionHandler exposes the timed test session lifecycle over HTTP.
type SessionHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewSessionHandler(examService services.ExamService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// StartSession starts a new timed test session
func (h *SessionHandler) StartSession(c *gin.Context) {
	h.LogRequest(c, "Starting test session")

	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.examService.Start(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithError(c, err, "Failed to start session")
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Session started",
		Data:    view,
	})
}

// GetSession returns the current state of a running session
func (h *SessionHandler) GetSession(c *gin.Context) {
	view, err := h.examService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.RespondWithError(c, err, "Failed to get session")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Session retrieved",
		Data:    view,
	})
}

// AnswerQuestion records an answer for a question in the session
func (h *SessionHandler) AnswerQuestion(c *gin.Context) {
	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.examService.Answer(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.RespondWithError(c, err, "Failed to record answer")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Answer recorded",
		Data:    view,
	})
}

// Navigate moves the session cursor forward or backward
func (h *SessionHandler) Navigate(c *gin.Context) {
	delta, err := strconv.Atoi(c.DefaultQuery("delta", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid delta parameter",
			Details: err.Error(),
		})
		return
	}

	view, err := h.examService.Navigate(c.Request.Context(), c.Param("id"), delta)
	if err != nil {
		h.RespondWithError(c, err, "Failed to navigate")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Navigated",
		Data:    view,
	})
}

// FinishSession ends the session early and returns the final tally
func (h *SessionHandler) FinishSession(c *gin.Context) {
	h.LogRequest(c, "Finishing test session", "session_id", c.Param("id"))

	result, err := h.examService.Finish(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.RespondWithError(c, err, "Failed to finish session")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Session finished",
		Data:    result,
	})
}

// GetResult returns the result of a finished session
func (h *SessionHandler) GetResult(c *gin.Context) {
	result, err := h.examService.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.RespondWithError(c, err, "Failed to get result")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Result retrieved",
		Data:    result,
	})
}

// ExitSession discards the session
func (h *SessionHandler) ExitSession(c *gin.Context) {
	if err := h.examService.Exit(c.Request.Context(), c.Param("id")); err != nil {
		h.RespondWithError(c, err, "Failed to exit session")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Session exited",
	})
}
