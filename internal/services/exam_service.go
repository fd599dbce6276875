package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prepkit/exam-engine/internal/engine"
	"github.com/prepkit/exam-engine/internal/events"
	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
	"github.com/prepkit/exam-engine/internal/utils"
)

// ===== REQUEST / RESPONSE TYPES =====

type StartSessionRequest struct {
	UserID     string          `json:"user_id" validate:"required,max=64"`
	TestKind   models.TestKind `json:"test_kind" validate:"required,testkind"`
	Categories []string        `json:"categories" validate:"required,min=1,dive,required"`
	// Zero values fall back to the service defaults.
	QuestionCount     int `json:"question_count" validate:"omitempty,min=1,max=100"`
	TimeBudgetSeconds int `json:"time_budget_seconds" validate:"omitempty,min=60,max=14400"`
}

// SessionDefaults fill in StartSessionRequest fields the client left at zero.
type SessionDefaults struct {
	TimeBudgetSeconds int
	QuestionCount     int
}

type AnswerRequest struct {
	QuestionID   string `json:"question_id" validate:"required"`
	DisplayIndex int    `json:"display_index" validate:"min=0"`
}

type OptionView struct {
	Text     string  `json:"text"`
	ImageRef *string `json:"image_ref,omitempty"`
}

// QuestionView is the display form of the current question. It deliberately
// carries neither the correct index nor the original option order.
type QuestionView struct {
	ID       string       `json:"id"`
	Category string       `json:"category"`
	Topic    string       `json:"topic,omitempty"`
	Text     string       `json:"text"`
	ImageRef *string      `json:"image_ref,omitempty"`
	Options  []OptionView `json:"options"`
	Answered bool         `json:"answered"`
}

type SessionView struct {
	SessionID     string               `json:"session_id"`
	Status        engine.SessionStatus `json:"status"`
	CurrentIndex  int                  `json:"current_index"`
	QuestionCount int                  `json:"question_count"`
	AnsweredCount int                  `json:"answered_count"`
	TimeRemaining int                  `json:"time_remaining_seconds"`
	Question      *QuestionView        `json:"question,omitempty"`
}

type QuestionResultView struct {
	QuestionID          string `json:"question_id"`
	Category            string `json:"category"`
	DisplayCorrectIndex int    `json:"display_correct_index"`
	AnswerIndex         *int   `json:"answer_index,omitempty"`
	Correct             bool   `json:"correct"`
	Explanation         string `json:"explanation,omitempty"`
}

type ResultView struct {
	SessionID       string                  `json:"session_id"`
	Score           float64                 `json:"score"`
	CorrectCount    int                     `json:"correct_count"`
	IncorrectCount  int                     `json:"incorrect_count"`
	UnansweredCount int                     `json:"unanswered_count"`
	ElapsedDuration string                  `json:"elapsed_duration"`
	EndReason       models.AttemptEndReason `json:"end_reason"`
	// Saved is false when the attempt record could not be persisted; the
	// result is still shown, it just may not appear in history.
	Saved     bool                 `json:"saved"`
	Questions []QuestionResultView `json:"questions"`
}

// ===== SERVICE =====

// sessionRunner owns one live timed session: the state machine, the mutex
// that serializes user calls with the countdown, and the ticker goroutine.
type sessionRunner struct {
	id         string
	userID     string
	testKind   models.TestKind
	categories []string

	mu      sync.Mutex
	session *engine.TestSession
	result  *ResultView // built exactly once at finalization

	stopTimer chan struct{}
	stopOnce  sync.Once
}

// stop releases the ticker on whatever exit path got here first.
func (r *sessionRunner) stop() {
	r.stopOnce.Do(func() { close(r.stopTimer) })
}

type examService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	mastery   MasteryService
	publisher events.EventPublisher
	defaults  SessionDefaults

	mu      sync.RWMutex
	running map[string]*sessionRunner
}

func NewExamService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *utils.Validator,
	mastery MasteryService,
	publisher events.EventPublisher,
	defaults SessionDefaults,
) ExamService {
	if defaults.TimeBudgetSeconds <= 0 {
		defaults.TimeBudgetSeconds = 1800
	}
	if defaults.QuestionCount <= 0 {
		defaults.QuestionCount = 30
	}
	return &examService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		mastery:   mastery,
		publisher: publisher,
		defaults:  defaults,
		running:   make(map[string]*sessionRunner),
	}
}

func (s *examService) Start(ctx context.Context, req *StartSessionRequest) (*SessionView, error) {
	s.logger.Info("Starting test session",
		"user_id", req.UserID,
		"test_kind", req.TestKind,
		"categories", req.Categories,
		"question_count", req.QuestionCount)

	if req.QuestionCount == 0 {
		req.QuestionCount = s.defaults.QuestionCount
	}
	if req.TimeBudgetSeconds == 0 {
		req.TimeBudgetSeconds = s.defaults.TimeBudgetSeconds
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Roster size is min(requested, pool size); the LIMIT handles that.
	pool, err := s.repo.Question().FetchRandom(ctx, req.TestKind, req.Categories, req.QuestionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}

	roster := make([]*engine.ShuffledQuestion, 0, len(pool))
	for _, q := range pool {
		sq, err := engine.Shuffle(q)
		if err != nil {
			// Bad authoring data; skip the question rather than failing the session.
			s.logger.Warn("Skipping invalid question", "question_id", q.ID, "error", err)
			continue
		}
		roster = append(roster, sq)
	}

	session := engine.NewTestSession()
	if err := session.Start(roster, req.TimeBudgetSeconds); err != nil {
		return nil, err
	}

	runner := &sessionRunner{
		id:         uuid.NewString(),
		userID:     req.UserID,
		testKind:   req.TestKind,
		categories: req.Categories,
		session:    session,
		stopTimer:  make(chan struct{}),
	}

	s.mu.Lock()
	s.running[runner.id] = runner
	s.mu.Unlock()

	go s.runTimer(runner)

	s.logger.Info("Test session started",
		"session_id", runner.id,
		"user_id", req.UserID,
		"roster_size", len(roster))

	runner.mu.Lock()
	defer runner.mu.Unlock()
	return s.buildSessionView(runner), nil
}

// runTimer drives the countdown at one tick per second until the session
// finishes or the runner is stopped. The timeout transition happens inside
// Tick under the runner lock, so no answer can land after it fires.
func (s *examService) runTimer(runner *sessionRunner) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-runner.stopTimer:
			return
		case <-ticker.C:
			runner.mu.Lock()
			runner.session.Tick()
			finished := runner.session.Status() == engine.SessionFinished
			if finished && runner.result == nil {
				s.finalize(context.Background(), runner)
			}
			runner.mu.Unlock()

			if finished {
				runner.stop()
				return
			}
		}
	}
}

func (s *examService) Get(ctx context.Context, sessionID string) (*SessionView, error) {
	runner, err := s.runner(sessionID)
	if err != nil {
		return nil, err
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	return s.buildSessionView(runner), nil
}

func (s *examService) Answer(ctx context.Context, sessionID string, req *AnswerRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	runner, err := s.runner(sessionID)
	if err != nil {
		return nil, err
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()

	if err := runner.session.Answer(req.QuestionID, req.DisplayIndex); err != nil {
		return nil, err
	}
	return s.buildSessionView(runner), nil
}

func (s *examService) Navigate(ctx context.Context, sessionID string, delta int) (*SessionView, error) {
	runner, err := s.runner(sessionID)
	if err != nil {
		return nil, err
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()

	if err := runner.session.Navigate(delta); err != nil {
		return nil, err
	}
	return s.buildSessionView(runner), nil
}

func (s *examService) Finish(ctx context.Context, sessionID string) (*ResultView, error) {
	runner, err := s.runner(sessionID)
	if err != nil {
		return nil, err
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()

	if _, err := runner.session.Finish(); err != nil {
		// The timer may have forced the finish already; the result is
		// still the answer the caller wants.
		if runner.result != nil {
			return runner.result, nil
		}
		return nil, err
	}
	runner.stop()

	s.finalize(ctx, runner)
	return runner.result, nil
}

// Result returns the finished session's tally, e.g. after a timeout forced
// the transition while the client was still polling.
func (s *examService) Result(ctx context.Context, sessionID string) (*ResultView, error) {
	runner, err := s.runner(sessionID)
	if err != nil {
		return nil, err
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()

	if runner.result == nil {
		return nil, ErrSessionNotFinished
	}
	return runner.result, nil
}

// Exit discards the session. In-flight persistence from a concurrent finish
// is left to complete; the session simply stops being addressable.
func (s *examService) Exit(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	runner, ok := s.running[sessionID]
	delete(s.running, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	runner.stop()
	s.logger.Info("Test session exited", "session_id", sessionID, "user_id", runner.userID)
	return nil
}

// Shutdown releases every live timer, for service teardown.
func (s *examService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, runner := range s.running {
		runner.stop()
		delete(s.running, id)
	}
}

// ===== HELPERS =====

func (s *examService) runner(sessionID string) (*sessionRunner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runner, ok := s.running[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return runner, nil
}

// finalize builds the result view, records the attempt and folds category
// stats. Called exactly once per session, with the runner lock held.
// Persistence failures are logged and reflected in Saved; they never block
// the result from being shown.
func (s *examService) finalize(ctx context.Context, runner *sessionRunner) {
	result := runner.session.Result()

	view := &ResultView{
		SessionID:       runner.id,
		Score:           result.Score,
		CorrectCount:    result.CorrectCount,
		IncorrectCount:  result.IncorrectCount,
		UnansweredCount: result.UnansweredCount,
		ElapsedDuration: models.FormatISODuration(result.ElapsedSeconds),
		EndReason:       result.EndReason,
		Questions:       make([]QuestionResultView, len(result.Questions)),
	}
	for i, qr := range result.Questions {
		view.Questions[i] = QuestionResultView{
			QuestionID:          qr.QuestionID,
			Category:            qr.Category,
			DisplayCorrectIndex: qr.DisplayCorrectIndex,
			AnswerIndex:         qr.AnswerIndex,
			Correct:             qr.Correct,
			Explanation:         s.explanationFor(runner, qr.QuestionID),
		}
	}

	view.Saved = s.recordAttempt(ctx, runner, result)

	if err := s.mastery.RecordAttempt(ctx, runner.userID, runner.testKind, result.Questions); err != nil {
		s.logger.Error("Failed to update category stats",
			"session_id", runner.id,
			"user_id", runner.userID,
			"error", err)
	}

	runner.result = view
}

func (s *examService) explanationFor(runner *sessionRunner, questionID string) string {
	for _, sq := range runner.session.Questions() {
		if sq.Question.ID == questionID {
			return sq.Question.Explanation
		}
	}
	return ""
}

func (s *examService) recordAttempt(ctx context.Context, runner *sessionRunner, result *engine.SessionResult) bool {
	snapshot := make([]models.AttemptQuestion, len(result.Questions))
	for i, qr := range result.Questions {
		snapshot[i] = models.AttemptQuestion{
			QuestionID:          qr.QuestionID,
			Category:            qr.Category,
			DisplayOrder:        qr.DisplayOrder,
			DisplayCorrectIndex: qr.DisplayCorrectIndex,
			AnswerIndex:         qr.AnswerIndex,
			Correct:             qr.Correct,
		}
	}

	questionsJSON, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("Failed to marshal attempt snapshot", "session_id", runner.id, "error", err)
		return false
	}
	categoriesJSON, err := json.Marshal(runner.categories)
	if err != nil {
		s.logger.Error("Failed to marshal attempt categories", "session_id", runner.id, "error", err)
		return false
	}

	attempt := &models.Attempt{
		UserID:          runner.userID,
		TestKind:        runner.testKind,
		Categories:      categoriesJSON,
		Questions:       questionsJSON,
		Score:           result.Score,
		CorrectCount:    result.CorrectCount,
		IncorrectCount:  result.IncorrectCount,
		UnansweredCount: result.UnansweredCount,
		ElapsedDuration: models.FormatISODuration(result.ElapsedSeconds),
		EndReason:       result.EndReason,
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		s.logger.Error("Failed to record attempt; result shown unsaved",
			"session_id", runner.id,
			"user_id", runner.userID,
			"error", err)
		return false
	}

	s.publishAttemptCompleted(ctx, runner, attempt, result)
	return true
}

func (s *examService) publishAttemptCompleted(ctx context.Context, runner *sessionRunner, attempt *models.Attempt, result *engine.SessionResult) {
	eventType := events.EventAttemptCompleted
	if result.EndReason == models.AttemptEndReasonTimeout {
		eventType = events.EventAttemptTimedOut
	}

	event := &events.ExamEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "exam-engine",
		Version:   "1.0",
		Data: events.AttemptCompletedEvent{
			AttemptID:       attempt.ID,
			UserID:          runner.userID,
			TestKind:        runner.testKind,
			Categories:      runner.categories,
			Score:           result.Score,
			CorrectCount:    result.CorrectCount,
			IncorrectCount:  result.IncorrectCount,
			UnansweredCount: result.UnansweredCount,
			EndReason:       result.EndReason,
			CompletedAt:     time.Now(),
		},
	}

	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt event", "session_id", runner.id, "error", err)
	}
}

// buildSessionView renders the runner's current state. Caller holds the
// runner lock.
func (s *examService) buildSessionView(runner *sessionRunner) *SessionView {
	session := runner.session

	view := &SessionView{
		SessionID:     runner.id,
		Status:        session.Status(),
		CurrentIndex:  session.CurrentIndex(),
		QuestionCount: len(session.Questions()),
		AnsweredCount: session.AnsweredCount(),
		TimeRemaining: session.TimeRemaining(),
	}

	if current := session.Current(); current != nil && session.Status() == engine.SessionRunning {
		q := current.Question
		options := make([]OptionView, len(current.DisplayOptions))
		for i, opt := range current.DisplayOptions {
			options[i] = OptionView{Text: opt.Text, ImageRef: opt.ImageRef}
		}
		_, answered := session.AnswerFor(q.ID)
		view.Question = &QuestionView{
			ID:       q.ID,
			Category: q.Category,
			Topic:    q.Topic,
			Text:     q.Text,
			ImageRef: q.ImageRef,
			Options:  options,
			Answered: answered,
		}
	}

	return view
}
