package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepkit/exam-engine/internal/services"
	"github.com/prepkit/exam-engine/internal/utils"
)

// PracticeHandler exposes the untimed single-question practice loop over HTTP.
type PracticeHandler struct {
	BaseHandler
	practiceService services.PracticeService
}

func NewPracticeHandler(practiceService services.PracticeService, logger utils.Logger) *PracticeHandler {
	return &PracticeHandler{
		BaseHandler:     NewBaseHandler(logger),
		practiceService: practiceService,
	}
}

// StartPractice starts a practice session and draws the first question
func (h *PracticeHandler) StartPractice(c *gin.Context) {
	h.LogRequest(c, "Starting practice session")

	var req services.StartPracticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.practiceService.Start(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithError(c, err, "Failed to start practice")
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Practice started",
		Data:    view,
	})
}

// SelectOption records a tentative answer for the current question
func (h *PracticeHandler) SelectOption(c *gin.Context) {
	displayIndex, err := strconv.Atoi(c.Query("display_index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid display_index parameter",
			Details: err.Error(),
		})
		return
	}

	view, err := h.practiceService.Select(c.Request.Context(), c.Param("id"), displayIndex)
	if err != nil {
		h.RespondWithError(c, err, "Failed to select option")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Option selected",
		Data:    view,
	})
}

// CorrectQuestion reveals the current question and updates the running stats
func (h *PracticeHandler) CorrectQuestion(c *gin.Context) {
	correction, err := h.practiceService.Correct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.RespondWithError(c, err, "Failed to correct question")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Question corrected",
		Data:    correction,
	})
}

// NextQuestion draws the next question
func (h *PracticeHandler) NextQuestion(c *gin.Context) {
	view, err := h.practiceService.Next(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.RespondWithError(c, err, "Failed to draw next question")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Next question drawn",
		Data:    view,
	})
}

// ExitPractice ends the practice session
func (h *PracticeHandler) ExitPractice(c *gin.Context) {
	if err := h.practiceService.Exit(c.Request.Context(), c.Param("id")); err != nil {
		h.RespondWithError(c, err, "Failed to exit practice")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Practice exited",
	})
}
