package engine

import (
	"errors"

	"github.com/prepkit/exam-engine/internal/models"
)

type SessionStatus string

const (
	SessionConfiguring SessionStatus = "Configuring"
	SessionRunning     SessionStatus = "Running"
	SessionFinished    SessionStatus = "Finished"
)

var (
	ErrEmptyQuestionPool = errors.New("no questions match the selected filters")
	ErrSessionNotRunning = errors.New("session is not running")
	ErrSessionRunning    = errors.New("session already started")
)

// QuestionResult is the outcome of a single question at finish time. The
// answer and correct index are both in display order, matching what the user
// actually saw.
type QuestionResult struct {
	QuestionID          string
	Category            string
	DisplayOrder        []int
	DisplayCorrectIndex int
	AnswerIndex         *int // display index, nil when unanswered
	Correct             bool
}

type SessionResult struct {
	CorrectCount    int
	IncorrectCount  int
	UnansweredCount int
	Score           float64
	ElapsedSeconds  int
	EndReason       models.AttemptEndReason
	Questions       []QuestionResult
}

// TestSession is the state machine of one timed attempt:
// Configuring -> Running -> Finished, with no way back. A finished session is
// discarded; a new test means a new session.
//
// The session is a single-owner container. The one autonomous mutation, the
// timer tick, must be serialized with user-driven calls by the owner (the
// service layer wraps each live session in a mutex).
type TestSession struct {
	questions     []*ShuffledQuestion
	currentIndex  int
	answers       map[string]int // question id -> chosen display index
	timeBudget    int
	timeRemaining int
	status        SessionStatus
	result        *SessionResult
}

func NewTestSession() *TestSession {
	return &TestSession{
		answers: make(map[string]int),
		status:  SessionConfiguring,
	}
}

// Start moves the session into Running with a fixed question roster and time
// budget. An empty roster is a recoverable condition: the session stays in
// Configuring so the caller can present a retry affordance.
func (s *TestSession) Start(questions []*ShuffledQuestion, timeBudgetSeconds int) error {
	if s.status != SessionConfiguring {
		return ErrSessionRunning
	}
	if len(questions) == 0 {
		return ErrEmptyQuestionPool
	}

	s.questions = questions
	s.currentIndex = 0
	s.timeBudget = timeBudgetSeconds
	s.timeRemaining = timeBudgetSeconds
	s.status = SessionRunning
	return nil
}

// Answer records the chosen display index for a question. Last write wins.
func (s *TestSession) Answer(questionID string, displayIndex int) error {
	if s.status != SessionRunning {
		return ErrSessionNotRunning
	}
	s.answers[questionID] = displayIndex
	return nil
}

// Navigate moves the current question index by delta, clamped to the roster.
func (s *TestSession) Navigate(delta int) error {
	if s.status != SessionRunning {
		return ErrSessionNotRunning
	}
	s.currentIndex += delta
	if s.currentIndex < 0 {
		s.currentIndex = 0
	}
	if s.currentIndex > len(s.questions)-1 {
		s.currentIndex = len(s.questions) - 1
	}
	return nil
}

// Tick decrements the countdown by one second. Reaching zero forces the
// Finished transition exactly once; ticks after that are no-ops, so a timer
// that fires late cannot double-count the result.
func (s *TestSession) Tick() {
	if s.status != SessionRunning {
		return
	}
	s.timeRemaining--
	if s.timeRemaining <= 0 {
		s.timeRemaining = 0
		s.finish(models.AttemptEndReasonTimeout)
	}
}

// Finish is the user-triggered transition to Finished.
func (s *TestSession) Finish() (*SessionResult, error) {
	if s.status != SessionRunning {
		return nil, ErrSessionNotRunning
	}
	s.finish(models.AttemptEndReasonUser)
	return s.result, nil
}

func (s *TestSession) finish(reason models.AttemptEndReason) {
	s.status = SessionFinished

	result := &SessionResult{
		ElapsedSeconds: s.timeBudget - s.timeRemaining,
		EndReason:      reason,
		Questions:      make([]QuestionResult, len(s.questions)),
	}

	for i, sq := range s.questions {
		qr := QuestionResult{
			QuestionID:          sq.Question.ID,
			Category:            sq.Question.Category,
			DisplayOrder:        sq.DisplayOrder(),
			DisplayCorrectIndex: sq.DisplayCorrectIndex,
		}
		if answer, ok := s.answers[sq.Question.ID]; ok {
			a := answer
			qr.AnswerIndex = &a
			// Answers are recorded against the shuffled display order, so
			// correctness is judged against the display-correct index.
			qr.Correct = answer == sq.DisplayCorrectIndex
			if qr.Correct {
				result.CorrectCount++
			} else {
				result.IncorrectCount++
			}
		} else {
			result.UnansweredCount++
		}
		result.Questions[i] = qr
	}

	alternatives := len(s.questions[0].DisplayOptions)
	score, err := Score(result.CorrectCount, result.IncorrectCount, len(s.questions), alternatives)
	if err != nil {
		// Unreachable: Shuffle rejects questions with fewer than 2 options.
		score = 0
	}
	result.Score = score

	s.result = result
}

// Result returns the computed tally, or nil while the session is running.
func (s *TestSession) Result() *SessionResult { return s.result }

func (s *TestSession) Status() SessionStatus { return s.status }

func (s *TestSession) CurrentIndex() int { return s.currentIndex }

// Current returns the question at the current index, or nil before Start.
func (s *TestSession) Current() *ShuffledQuestion {
	if len(s.questions) == 0 {
		return nil
	}
	return s.questions[s.currentIndex]
}

func (s *TestSession) Questions() []*ShuffledQuestion { return s.questions }

func (s *TestSession) TimeRemaining() int { return s.timeRemaining }

// AnsweredCount reports how many questions currently have a recorded answer.
func (s *TestSession) AnsweredCount() int { return len(s.answers) }

// AnswerFor returns the recorded display index for a question, if any.
func (s *TestSession) AnswerFor(questionID string) (int, bool) {
	answer, ok := s.answers[questionID]
	return answer, ok
}
