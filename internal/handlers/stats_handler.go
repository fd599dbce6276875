package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
	"github.com/prepkit/exam-engine/internal/services"
	"github.com/prepkit/exam-engine/internal/utils"
)

// StatsHandler exposes the read side of a user's progress: category mastery,
// strength/improvement classification, attempt history, bookmarks and the
// spreadsheet export.
type StatsHandler struct {
	BaseHandler
	masteryService  services.MasteryService
	attemptService  services.AttemptService
	bookmarkService services.BookmarkService
	exportService   services.ExportService
}

func NewStatsHandler(
	masteryService services.MasteryService,
	attemptService services.AttemptService,
	bookmarkService services.BookmarkService,
	exportService services.ExportService,
	logger utils.Logger,
) *StatsHandler {
	return &StatsHandler{
		BaseHandler:     NewBaseHandler(logger),
		masteryService:  masteryService,
		attemptService:  attemptService,
		bookmarkService: bookmarkService,
		exportService:   exportService,
	}
}

// GetCategoryStats returns the user's lifetime per-category counters
func (h *StatsHandler) GetCategoryStats(c *gin.Context) {
	userID := c.Param("user_id")

	var kind *models.TestKind
	if raw := c.Query("test_kind"); raw != "" {
		k := models.TestKind(raw)
		kind = &k
	}

	stats, err := h.masteryService.GetStats(c.Request.Context(), userID, kind)
	if err != nil {
		h.RespondWithError(c, err, "Failed to get category stats")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Category stats retrieved",
		Data:    stats,
	})
}

// GetClassification returns the user's strengths and improvement areas
func (h *StatsHandler) GetClassification(c *gin.Context) {
	req := services.ClassificationRequest{
		UserID:   c.Param("user_id"),
		TestKind: models.TestKind(c.Query("test_kind")),
		TopN:     intQuery(c, "top", 0),
		BottomM:  intQuery(c, "bottom", 0),
		MinSeen:  intQuery(c, "min_seen", 0),
	}

	classification, err := h.masteryService.GetClassification(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithError(c, err, "Failed to get classification")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Classification retrieved",
		Data:    classification,
	})
}

// GetAttemptHistory returns the user's persisted attempts, newest first
func (h *StatsHandler) GetAttemptHistory(c *gin.Context) {
	userID := c.Param("user_id")

	filters := repositories.AttemptFilters{
		Limit:     intQuery(c, "limit", 20),
		Offset:    intQuery(c, "offset", 0),
		SortOrder: c.DefaultQuery("sort", "desc"),
	}
	if raw := c.Query("test_kind"); raw != "" {
		k := models.TestKind(raw)
		filters.TestKind = &k
	}
	if raw := c.Query("date_from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid date_from parameter",
				Details: err.Error(),
			})
			return
		}
		filters.DateFrom = &from
	}
	if raw := c.Query("date_to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid date_to parameter",
				Details: err.Error(),
			})
			return
		}
		filters.DateTo = &to
	}

	attempts, total, err := h.attemptService.GetByUser(c.Request.Context(), userID, filters)
	if err != nil {
		h.RespondWithError(c, err, "Failed to get attempt history")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Attempt history retrieved",
		Data: gin.H{
			"attempts": attempts,
			"total":    total,
		},
	})
}

// ToggleBookmark flips a bookmark and returns the new state
func (h *StatsHandler) ToggleBookmark(c *gin.Context) {
	userID := c.Param("user_id")
	questionID := c.Param("question_id")

	bookmarked, err := h.bookmarkService.Toggle(c.Request.Context(), userID, questionID)
	if err != nil {
		h.RespondWithError(c, err, "Failed to toggle bookmark")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Bookmark toggled",
		Data:    gin.H{"bookmarked": bookmarked},
	})
}

// GetBookmarkState reports whether a question is bookmarked
func (h *StatsHandler) GetBookmarkState(c *gin.Context) {
	userID := c.Param("user_id")
	questionID := c.Param("question_id")

	bookmarked, err := h.bookmarkService.IsBookmarked(c.Request.Context(), userID, questionID)
	if err != nil {
		h.RespondWithError(c, err, "Failed to check bookmark")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Bookmark state retrieved",
		Data:    gin.H{"bookmarked": bookmarked},
	})
}

// ExportReport streams the user's report as an Excel workbook
func (h *StatsHandler) ExportReport(c *gin.Context) {
	userID := c.Param("user_id")
	kind := models.TestKind(c.DefaultQuery("test_kind", string(models.TestKindStandard)))

	h.LogRequest(c, "Exporting user report", "user_id", userID, "test_kind", kind)

	data, err := h.exportService.ExportUserReport(c.Request.Context(), userID, kind)
	if err != nil {
		h.RespondWithError(c, err, "Failed to export report")
		return
	}

	filename := fmt.Sprintf("report_%s_%s.xlsx", userID, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
