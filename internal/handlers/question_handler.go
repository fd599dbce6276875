package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/services"
	"github.com/prepkit/exam-engine/internal/utils"
)

// QuestionHandler exposes the question catalog used by the pre-session
// configuration screen.
type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// ListCategories returns the distinct categories available for a test kind
func (h *QuestionHandler) ListCategories(c *gin.Context) {
	kind := models.TestKind(c.DefaultQuery("test_kind", string(models.TestKindStandard)))

	categories, err := h.questionService.ListCategories(c.Request.Context(), kind)
	if err != nil {
		h.RespondWithError(c, err, "Failed to list categories")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Categories retrieved",
		Data:    categories,
	})
}

// CountQuestions returns how many questions match a kind and category filter
func (h *QuestionHandler) CountQuestions(c *gin.Context) {
	kind := models.TestKind(c.DefaultQuery("test_kind", string(models.TestKindStandard)))

	var categories []string
	if raw := c.Query("categories"); raw != "" {
		categories = strings.Split(raw, ",")
	}

	count, err := h.questionService.CountQuestions(c.Request.Context(), kind, categories)
	if err != nil {
		h.RespondWithError(c, err, "Failed to count questions")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Question count retrieved",
		Data:    gin.H{"count": count},
	})
}
