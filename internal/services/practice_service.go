package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/prepkit/exam-engine/internal/engine"
	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
	"github.com/prepkit/exam-engine/internal/utils"
)

// ===== REQUEST / RESPONSE TYPES =====

type StartPracticeRequest struct {
	UserID     string          `json:"user_id" validate:"required,max=64"`
	TestKind   models.TestKind `json:"test_kind" validate:"required,testkind"`
	Categories []string        `json:"categories"`
	// FromBookmarks draws from the user's bookmarked questions instead of
	// the category filter.
	FromBookmarks bool `json:"from_bookmarks"`
}

type PracticeView struct {
	PracticeID string                `json:"practice_id"`
	Question   *QuestionView         `json:"question,omitempty"`
	// Exhausted is true when the pool produced no question.
	Exhausted     bool                 `json:"exhausted"`
	SelectedIndex *int                 `json:"selected_index,omitempty"`
	Stats         engine.PracticeStats `json:"stats"`
}

type CorrectionView struct {
	PracticeID          string               `json:"practice_id"`
	Answered            bool                 `json:"answered"`
	Correct             bool                 `json:"correct"`
	DisplayCorrectIndex int                  `json:"display_correct_index"`
	Explanation         string               `json:"explanation,omitempty"`
	Stats               engine.PracticeStats `json:"stats"`
}

// ===== SERVICE =====

type practiceRunner struct {
	id       string
	userID   string
	testKind models.TestKind

	mu      sync.Mutex
	session *engine.PracticeSession
}

type practiceService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator

	mu      sync.RWMutex
	running map[string]*practiceRunner
}

func NewPracticeService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *utils.Validator,
) PracticeService {
	return &practiceService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		running:   make(map[string]*practiceRunner),
	}
}

func (s *practiceService) Start(ctx context.Context, req *StartPracticeRequest) (*PracticeView, error) {
	s.logger.Info("Starting practice session",
		"user_id", req.UserID,
		"test_kind", req.TestKind,
		"categories", req.Categories,
		"from_bookmarks", req.FromBookmarks)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	pool, err := s.fetchPool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch practice pool: %w", err)
	}

	initial, err := s.loadStats(ctx, req.UserID, req.TestKind)
	if err != nil {
		return nil, fmt.Errorf("failed to load practice stats: %w", err)
	}

	runner := &practiceRunner{
		id:       uuid.NewString(),
		userID:   req.UserID,
		testKind: req.TestKind,
	}
	runner.session = engine.NewPracticeSession(pool, initial, s.flushFunc(req.UserID, req.TestKind))

	runner.mu.Lock()
	defer runner.mu.Unlock()

	if _, err := runner.session.Draw(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.running[runner.id] = runner
	s.mu.Unlock()

	s.logger.Info("Practice session started",
		"practice_id", runner.id,
		"user_id", req.UserID,
		"pool_size", len(pool))

	return buildPracticeView(runner), nil
}

func (s *practiceService) Select(ctx context.Context, practiceID string, displayIndex int) (*PracticeView, error) {
	if displayIndex < 0 {
		return nil, fmt.Errorf("%w: display index must not be negative", ErrValidationFailed)
	}

	runner, err := s.runner(practiceID)
	if err != nil {
		return nil, err
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()

	if err := runner.session.Select(displayIndex); err != nil {
		return nil, err
	}
	return buildPracticeView(runner), nil
}

func (s *practiceService) Correct(ctx context.Context, practiceID string) (*CorrectionView, error) {
	runner, err := s.runner(practiceID)
	if err != nil {
		return nil, err
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()

	outcome, err := runner.session.Correct()
	if err != nil {
		return nil, err
	}

	return &CorrectionView{
		PracticeID:          runner.id,
		Answered:            outcome.Answered,
		Correct:             outcome.Correct,
		DisplayCorrectIndex: outcome.DisplayCorrectIndex,
		Explanation:         outcome.Explanation,
		Stats:               outcome.Stats,
	}, nil
}

func (s *practiceService) Next(ctx context.Context, practiceID string) (*PracticeView, error) {
	runner, err := s.runner(practiceID)
	if err != nil {
		return nil, err
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()

	if _, err := runner.session.Next(); err != nil {
		return nil, err
	}
	return buildPracticeView(runner), nil
}

func (s *practiceService) Exit(ctx context.Context, practiceID string) error {
	s.mu.Lock()
	runner, ok := s.running[practiceID]
	delete(s.running, practiceID)
	s.mu.Unlock()

	if !ok {
		return ErrPracticeNotFound
	}

	s.logger.Info("Practice session exited", "practice_id", practiceID, "user_id", runner.userID)
	return nil
}

// ===== HELPERS =====

func (s *practiceService) runner(practiceID string) (*practiceRunner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runner, ok := s.running[practiceID]
	if !ok {
		return nil, ErrPracticeNotFound
	}
	return runner, nil
}

func (s *practiceService) fetchPool(ctx context.Context, req *StartPracticeRequest) ([]*models.Question, error) {
	if req.FromBookmarks {
		return s.repo.Bookmark().GetQuestions(ctx, req.UserID, req.TestKind)
	}
	return s.repo.Question().Fetch(ctx, repositories.QuestionFilters{
		TestKind:   req.TestKind,
		Categories: req.Categories,
	})
}

// loadStats resumes the user's lifetime practice counters; a missing row
// means a fresh start.
func (s *practiceService) loadStats(ctx context.Context, userID string, kind models.TestKind) (engine.PracticeStats, error) {
	stat, err := s.repo.PracticeStat().Load(ctx, userID, kind)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return engine.PracticeStats{}, nil
		}
		return engine.PracticeStats{}, err
	}
	return engine.PracticeStats{
		CorrectCount:    stat.CorrectCount,
		IncorrectCount:  stat.IncorrectCount,
		UnansweredCount: stat.UnansweredCount,
		TotalCorrected:  stat.TotalCorrected,
		FinalScore:      stat.FinalScore,
	}, nil
}

// flushFunc persists the running totals after each correction. The write
// happens off the request path; a failure loses at most the latest counter
// bump, which the next correction's full snapshot repairs.
func (s *practiceService) flushFunc(userID string, kind models.TestKind) engine.StatsFlushFunc {
	return func(stats engine.PracticeStats) {
		go func() {
			stat := &models.PracticeStat{
				UserID:          userID,
				TestKind:        kind,
				CorrectCount:    stats.CorrectCount,
				IncorrectCount:  stats.IncorrectCount,
				UnansweredCount: stats.UnansweredCount,
				TotalCorrected:  stats.TotalCorrected,
				FinalScore:      stats.FinalScore,
			}
			if err := s.repo.PracticeStat().Save(context.Background(), stat); err != nil {
				s.logger.Error("Failed to persist practice stats",
					"user_id", userID,
					"test_kind", kind,
					"error", err)
			}
		}()
	}
}

// buildPracticeView renders the runner's current state. Caller holds the
// runner lock.
func buildPracticeView(runner *practiceRunner) *PracticeView {
	view := &PracticeView{
		PracticeID:    runner.id,
		SelectedIndex: runner.session.Selected(),
		Stats:         runner.session.Stats(),
	}

	current := runner.session.Current()
	if current == nil {
		view.Exhausted = true
		return view
	}

	q := current.Question
	options := make([]OptionView, len(current.DisplayOptions))
	for i, opt := range current.DisplayOptions {
		options[i] = OptionView{Text: opt.Text, ImageRef: opt.ImageRef}
	}
	view.Question = &QuestionView{
		ID:       q.ID,
		Category: q.Category,
		Topic:    q.Topic,
		Text:     q.Text,
		ImageRef: q.ImageRef,
		Options:  options,
		Answered: runner.session.Selected() != nil,
	}
	return view
}
