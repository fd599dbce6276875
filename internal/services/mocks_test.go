package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/prepkit/exam-engine/internal/cache"
	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ===== REPOSITORY MOCKS =====

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Fetch(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) FetchRandom(ctx context.Context, kind models.TestKind, categories []string, count int) ([]*models.Question, error) {
	args := m.Called(ctx, kind, categories, count)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListCategories(ctx context.Context, kind models.TestKind) ([]string, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockQuestionRepository) Count(ctx context.Context, filters repositories.QuestionFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	args := m.Called(ctx, userID, filters)
	return args.Get(0).([]*models.Attempt), args.Get(1).(int64), args.Error(2)
}

type MockCategoryStatRepository struct {
	mock.Mock
}

func (m *MockCategoryStatRepository) GetByUser(ctx context.Context, userID string, kind *models.TestKind) ([]models.CategoryStat, error) {
	args := m.Called(ctx, userID, kind)
	return args.Get(0).([]models.CategoryStat), args.Error(1)
}

func (m *MockCategoryStatRepository) ApplyAggregate(ctx context.Context, updates []repositories.CategoryStatDelta, inserts []models.CategoryStat) error {
	args := m.Called(ctx, updates, inserts)
	return args.Error(0)
}

type MockBookmarkRepository struct {
	mock.Mock
}

func (m *MockBookmarkRepository) IsBookmarked(ctx context.Context, userID, questionID string) (bool, error) {
	args := m.Called(ctx, userID, questionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookmarkRepository) Toggle(ctx context.Context, userID, questionID string) (bool, error) {
	args := m.Called(ctx, userID, questionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookmarkRepository) GetQuestions(ctx context.Context, userID string, kind models.TestKind) ([]*models.Question, error) {
	args := m.Called(ctx, userID, kind)
	return args.Get(0).([]*models.Question), args.Error(1)
}

type MockPracticeStatRepository struct {
	mock.Mock
}

func (m *MockPracticeStatRepository) Load(ctx context.Context, userID string, kind models.TestKind) (*models.PracticeStat, error) {
	args := m.Called(ctx, userID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PracticeStat), args.Error(1)
}

func (m *MockPracticeStatRepository) Save(ctx context.Context, stat *models.PracticeStat) error {
	args := m.Called(ctx, stat)
	return args.Error(0)
}

// MockRepository aggregates the store mocks behind the Repository interface.
type MockRepository struct {
	question     *MockQuestionRepository
	attempt      *MockAttemptRepository
	categoryStat *MockCategoryStatRepository
	bookmark     *MockBookmarkRepository
	practiceStat *MockPracticeStatRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		question:     &MockQuestionRepository{},
		attempt:      &MockAttemptRepository{},
		categoryStat: &MockCategoryStatRepository{},
		bookmark:     &MockBookmarkRepository{},
		practiceStat: &MockPracticeStatRepository{},
	}
}

func (m *MockRepository) Question() repositories.QuestionRepository         { return m.question }
func (m *MockRepository) Attempt() repositories.AttemptRepository           { return m.attempt }
func (m *MockRepository) CategoryStat() repositories.CategoryStatRepository { return m.categoryStat }
func (m *MockRepository) Bookmark() repositories.BookmarkRepository         { return m.bookmark }
func (m *MockRepository) PracticeStat() repositories.PracticeStatRepository { return m.practiceStat }

// ===== CACHE FAKE =====

// fakeCache is an in-memory CacheService; TTLs are ignored, which is fine for
// the cache-hit assertions the tests make.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = data
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.store[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Only prefix patterns of the form "prefix:*" are used in this package.
	prefix := pattern
	if n := len(pattern); n > 0 && pattern[n-1] == '*' {
		prefix = pattern[:n-1]
	}
	for key := range c.store {
		if strings.HasPrefix(key, prefix) {
			delete(c.store, key)
		}
	}
	return nil
}
