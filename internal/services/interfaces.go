package services

import (
	"context"
	"log/slog"

	"github.com/prepkit/exam-engine/internal/cache"
	"github.com/prepkit/exam-engine/internal/engine"
	"github.com/prepkit/exam-engine/internal/events"
	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
	"github.com/prepkit/exam-engine/internal/utils"
)

// ExamService drives timed test sessions: one live state machine per session
// id, a countdown timer owned by the service, and result persistence on
// completion.
type ExamService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*SessionView, error)
	Get(ctx context.Context, sessionID string) (*SessionView, error)
	Answer(ctx context.Context, sessionID string, req *AnswerRequest) (*SessionView, error)
	Navigate(ctx context.Context, sessionID string, delta int) (*SessionView, error)
	Finish(ctx context.Context, sessionID string) (*ResultView, error)
	Result(ctx context.Context, sessionID string) (*ResultView, error)
	Exit(ctx context.Context, sessionID string) error
	Shutdown()
}

// PracticeService drives the untimed single-question loop.
type PracticeService interface {
	Start(ctx context.Context, req *StartPracticeRequest) (*PracticeView, error)
	Select(ctx context.Context, practiceID string, displayIndex int) (*PracticeView, error)
	Correct(ctx context.Context, practiceID string) (*CorrectionView, error)
	Next(ctx context.Context, practiceID string) (*PracticeView, error)
	Exit(ctx context.Context, practiceID string) error
}

// MasteryService owns per-category lifetime counters: the write-side fold of
// completed attempts and the read-side classification.
type MasteryService interface {
	RecordAttempt(ctx context.Context, userID string, kind models.TestKind, results []engine.QuestionResult) error
	GetStats(ctx context.Context, userID string, kind *models.TestKind) ([]models.CategoryStat, error)
	GetClassification(ctx context.Context, req *ClassificationRequest) (*engine.Classification, error)
}

// QuestionService is the catalog read surface clients use to build the
// pre-session configuration screen.
type QuestionService interface {
	ListCategories(ctx context.Context, kind models.TestKind) ([]string, error)
	CountQuestions(ctx context.Context, kind models.TestKind, categories []string) (int64, error)
}

type BookmarkService interface {
	IsBookmarked(ctx context.Context, userID, questionID string) (bool, error)
	Toggle(ctx context.Context, userID, questionID string) (bool, error)
}

// AttemptService is the read side of persisted attempt history.
type AttemptService interface {
	GetByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error)
}

// ExportService renders a user's history and mastery into a downloadable
// spreadsheet.
type ExportService interface {
	ExportUserReport(ctx context.Context, userID string, kind models.TestKind) ([]byte, error)
}

// ServiceManager aggregates all services behind one injection point.
type ServiceManager interface {
	Exam() ExamService
	Practice() PracticeService
	Question() QuestionService
	Mastery() MasteryService
	Bookmark() BookmarkService
	Attempt() AttemptService
	Export() ExportService
}

type serviceManager struct {
	exam     ExamService
	practice PracticeService
	question QuestionService
	mastery  MasteryService
	bookmark BookmarkService
	attempt  AttemptService
	export   ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *utils.Validator,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	defaults SessionDefaults,
) ServiceManager {
	mastery := NewMasteryService(repo, logger, cacheService, publisher)
	return &serviceManager{
		exam:     NewExamService(repo, logger, validator, mastery, publisher, defaults),
		practice: NewPracticeService(repo, logger, validator),
		question: NewQuestionService(repo, logger),
		mastery:  mastery,
		bookmark: NewBookmarkService(repo, logger),
		attempt:  NewAttemptService(repo, logger),
		export:   NewExportService(repo, logger),
	}
}

func (m *serviceManager) Exam() ExamService         { return m.exam }
func (m *serviceManager) Practice() PracticeService { return m.practice }
func (m *serviceManager) Question() QuestionService { return m.question }
func (m *serviceManager) Mastery() MasteryService   { return m.mastery }
func (m *serviceManager) Bookmark() BookmarkService { return m.bookmark }
func (m *serviceManager) Attempt() AttemptService   { return m.attempt }
func (m *serviceManager) Export() ExportService     { return m.export }
