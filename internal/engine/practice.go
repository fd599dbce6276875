package engine

import (
	"errors"
	"math/rand"

	"github.com/prepkit/exam-engine/internal/models"
)

var (
	ErrNoCurrentQuestion = errors.New("no question is currently drawn")
	ErrAlreadyCorrected  = errors.New("current question already corrected")
)

// PracticeStats are the running totals of a practice session. Unlike the
// timed flow, a question only counts as unanswered when the user asks for
// correction without having selected anything; skipping via Next counts
// nothing. That asymmetry is deliberate.
type PracticeStats struct {
	CorrectCount    int     `json:"correct_count"`
	IncorrectCount  int     `json:"incorrect_count"`
	UnansweredCount int     `json:"unanswered_count"`
	TotalCorrected  int     `json:"total_corrected"`
	FinalScore      float64 `json:"final_score"`
}

// CorrectionOutcome is what Correct reveals about the current question.
type CorrectionOutcome struct {
	Answered            bool
	Correct             bool
	DisplayCorrectIndex int
	Explanation         string
	Stats               PracticeStats
}

// StatsFlushFunc is invoked with a copy of the running stats after every
// correction. Persistence is the caller's side effect; the loop itself never
// touches storage.
type StatsFlushFunc func(stats PracticeStats)

// PracticeSession is the untimed single-question loop: draw one question at
// random from a filtered pool, tentatively select, reveal and count exactly
// once, then move on.
type PracticeSession struct {
	pool     []*models.Question
	current  *ShuffledQuestion
	selected *int
	outcome  *CorrectionOutcome
	stats    PracticeStats
	flush    StatsFlushFunc
}

func NewPracticeSession(pool []*models.Question, initial PracticeStats, flush StatsFlushFunc) *PracticeSession {
	return &PracticeSession{
		pool:  pool,
		stats: initial,
		flush: flush,
	}
}

// Draw replaces the current question with one chosen uniformly at random from
// the pool. It reports false, without error, when the pool is empty so the
// caller can show an explicit "no questions" state.
func (p *PracticeSession) Draw() (bool, error) {
	if len(p.pool) == 0 {
		p.current = nil
		p.selected = nil
		p.outcome = nil
		return false, nil
	}

	q := p.pool[rand.Intn(len(p.pool))]
	sq, err := Shuffle(q)
	if err != nil {
		return false, err
	}

	p.current = sq
	p.selected = nil
	p.outcome = nil
	return true, nil
}

// Select records a tentative answer without revealing correctness.
// Re-selecting before correction overwrites the previous choice.
func (p *PracticeSession) Select(displayIndex int) error {
	if p.current == nil {
		return ErrNoCurrentQuestion
	}
	if p.outcome != nil {
		return ErrAlreadyCorrected
	}
	idx := displayIndex
	p.selected = &idx
	return nil
}

// Correct reveals the current question and folds it into the running stats.
// Calling it again for the same question returns the cached outcome without
// counting twice.
func (p *PracticeSession) Correct() (*CorrectionOutcome, error) {
	if p.current == nil {
		return nil, ErrNoCurrentQuestion
	}
	if p.outcome != nil {
		return p.outcome, nil
	}

	outcome := &CorrectionOutcome{
		DisplayCorrectIndex: p.current.DisplayCorrectIndex,
		Explanation:         p.current.Question.Explanation,
	}

	switch {
	case p.selected == nil:
		p.stats.UnansweredCount++
	case *p.selected == p.current.DisplayCorrectIndex:
		outcome.Answered = true
		outcome.Correct = true
		p.stats.CorrectCount++
	default:
		outcome.Answered = true
		p.stats.IncorrectCount++
	}
	p.stats.TotalCorrected++

	// The score uses the option count of the question just corrected, not a
	// fixed constant; pools can mix questions with different option counts.
	score, err := Score(p.stats.CorrectCount, p.stats.IncorrectCount, p.stats.TotalCorrected, len(p.current.DisplayOptions))
	if err != nil {
		return nil, err
	}
	p.stats.FinalScore = score

	outcome.Stats = p.stats
	p.outcome = outcome

	if p.flush != nil {
		p.flush(p.stats)
	}
	return outcome, nil
}

// Next discards the current question's revealed state and draws again.
func (p *PracticeSession) Next() (bool, error) {
	return p.Draw()
}

// SetPool swaps the question pool, e.g. after the backing filter or bookmark
// set changed. The current question, if any, is kept until Next.
func (p *PracticeSession) SetPool(pool []*models.Question) {
	p.pool = pool
}

func (p *PracticeSession) Current() *ShuffledQuestion { return p.current }

// Selected returns the tentative display index, or nil when nothing selected.
func (p *PracticeSession) Selected() *int { return p.selected }

func (p *PracticeSession) Stats() PracticeStats { return p.stats }
