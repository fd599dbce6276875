package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/prepkit/exam-engine/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	TestKind   models.TestKind `json:"test_kind"`
	Categories []string        `json:"categories"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

type AttemptFilters struct {
	TestKind  *models.TestKind `json:"test_kind"`
	DateFrom  *time.Time       `json:"date_from"`
	DateTo    *time.Time       `json:"date_to"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

// CategoryStatDelta is one category's counter increment from a completed
// attempt, applied atomically at the storage layer so concurrent attempts for
// the same user cannot lose updates.
type CategoryStatDelta struct {
	UserID       string          `json:"user_id"`
	TestKind     models.TestKind `json:"test_kind"`
	Category     string          `json:"category"`
	SeenDelta    int             `json:"seen_delta"`
	CorrectDelta int             `json:"correct_delta"`
}

// ===== REPOSITORY INTERFACES =====

// QuestionRepository is the read side of the question bank.
type QuestionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error)
	Fetch(ctx context.Context, filters QuestionFilters) ([]*models.Question, error)
	FetchRandom(ctx context.Context, kind models.TestKind, categories []string, count int) ([]*models.Question, error)
	ListCategories(ctx context.Context, kind models.TestKind) ([]string, error)
	Count(ctx context.Context, filters QuestionFilters) (int64, error)
}

// AttemptRepository records completed timed sessions.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)
	GetByUser(ctx context.Context, userID string, filters AttemptFilters) ([]*models.Attempt, int64, error)
}

// CategoryStatRepository owns the lifetime per-category counters.
type CategoryStatRepository interface {
	GetByUser(ctx context.Context, userID string, kind *models.TestKind) ([]models.CategoryStat, error)
	// ApplyAggregate applies counter deltas as atomic SQL increments and
	// inserts first-seen categories, all in one transaction.
	ApplyAggregate(ctx context.Context, updates []CategoryStatDelta, inserts []models.CategoryStat) error
}

type BookmarkRepository interface {
	IsBookmarked(ctx context.Context, userID, questionID string) (bool, error)
	// Toggle flips the bookmark and returns the new state.
	Toggle(ctx context.Context, userID, questionID string) (bool, error)
	GetQuestions(ctx context.Context, userID string, kind models.TestKind) ([]*models.Question, error)
}

type PracticeStatRepository interface {
	Load(ctx context.Context, userID string, kind models.TestKind) (*models.PracticeStat, error)
	Save(ctx context.Context, stat *models.PracticeStat) error
}

// Repository aggregates the per-store interfaces behind one injection point.
type Repository interface {
	Question() QuestionRepository
	Attempt() AttemptRepository
	CategoryStat() CategoryStatRepository
	Bookmark() BookmarkRepository
	PracticeStat() PracticeStatRepository
}

// IsNotFoundError checks whether err represents a missing row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
