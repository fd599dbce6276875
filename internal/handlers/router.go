package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/prepkit/exam-engine/internal/services"
	"github.com/prepkit/exam-engine/internal/utils"
)

type HandlerManager struct {
	sessionHandler  *SessionHandler
	practiceHandler *PracticeHandler
	questionHandler *QuestionHandler
	statsHandler    *StatsHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler:  NewSessionHandler(serviceManager.Exam(), logger),
		practiceHandler: NewPracticeHandler(serviceManager.Practice(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), logger),
		statsHandler: NewStatsHandler(
			serviceManager.Mastery(),
			serviceManager.Attempt(),
			serviceManager.Bookmark(),
			serviceManager.Export(),
			logger,
		),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Timed test sessions
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.POST("/:id/answer", hm.sessionHandler.AnswerQuestion)
			sessions.POST("/:id/navigate", hm.sessionHandler.Navigate)
			sessions.POST("/:id/finish", hm.sessionHandler.FinishSession)
			sessions.GET("/:id/result", hm.sessionHandler.GetResult)
			sessions.DELETE("/:id", hm.sessionHandler.ExitSession)
		}

		// Untimed practice
		practice := v1.Group("/practice")
		{
			practice.POST("", hm.practiceHandler.StartPractice)
			practice.POST("/:id/select", hm.practiceHandler.SelectOption)
			practice.POST("/:id/correct", hm.practiceHandler.CorrectQuestion)
			practice.POST("/:id/next", hm.practiceHandler.NextQuestion)
			practice.DELETE("/:id", hm.practiceHandler.ExitPractice)
		}

		// Question catalog
		questions := v1.Group("/questions")
		{
			questions.GET("/categories", hm.questionHandler.ListCategories)
			questions.GET("/count", hm.questionHandler.CountQuestions)
		}

		// User progress
		users := v1.Group("/users/:user_id")
		{
			users.GET("/stats", hm.statsHandler.GetCategoryStats)
			users.GET("/classification", hm.statsHandler.GetClassification)
			users.GET("/attempts", hm.statsHandler.GetAttemptHistory)
			users.GET("/export", hm.statsHandler.ExportReport)
			users.POST("/bookmarks/:question_id", hm.statsHandler.ToggleBookmark)
			users.GET("/bookmarks/:question_id", hm.statsHandler.GetBookmarkState)
		}
	}
}
