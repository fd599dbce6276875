package engine

import (
	"testing"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shuffledRoster(t *testing.T, categories ...string) []*ShuffledQuestion {
	t.Helper()
	roster := make([]*ShuffledQuestion, len(categories))
	for i, category := range categories {
		q := fourOptionQuestion(string(rune('a'+i)), i%4)
		q.Category = category
		sq, err := Shuffle(q)
		require.NoError(t, err)
		roster[i] = sq
	}
	return roster
}

func TestStartEmptyRoster(t *testing.T) {
	s := NewTestSession()
	err := s.Start(nil, 600)

	assert.ErrorIs(t, err, ErrEmptyQuestionPool)
	// Stays in Configuring so the caller can offer a retry.
	assert.Equal(t, SessionConfiguring, s.Status())
}

func TestStartTwice(t *testing.T) {
	s := NewTestSession()
	roster := shuffledRoster(t, "A")
	require.NoError(t, s.Start(roster, 600))

	assert.ErrorIs(t, s.Start(roster, 600), ErrSessionRunning)
}

func TestAnswerOverwrite(t *testing.T) {
	s := NewTestSession()
	roster := shuffledRoster(t, "A")
	require.NoError(t, s.Start(roster, 600))

	q := roster[0]
	wrong := (q.DisplayCorrectIndex + 1) % 4

	require.NoError(t, s.Answer(q.Question.ID, wrong))
	require.NoError(t, s.Answer(q.Question.ID, q.DisplayCorrectIndex))

	result, err := s.Finish()
	require.NoError(t, err)

	// Only the latest answer counts.
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 0, result.IncorrectCount)
}

func TestNavigateClamped(t *testing.T) {
	s := NewTestSession()
	require.NoError(t, s.Start(shuffledRoster(t, "A", "B", "C"), 600))

	require.NoError(t, s.Navigate(-5))
	assert.Equal(t, 0, s.CurrentIndex())

	require.NoError(t, s.Navigate(10))
	assert.Equal(t, 2, s.CurrentIndex())

	require.NoError(t, s.Navigate(-1))
	assert.Equal(t, 1, s.CurrentIndex())
}

func TestTickForcesFinishOnce(t *testing.T) {
	s := NewTestSession()
	roster := shuffledRoster(t, "A")
	require.NoError(t, s.Start(roster, 2))
	require.NoError(t, s.Answer(roster[0].Question.ID, roster[0].DisplayCorrectIndex))

	s.Tick()
	assert.Equal(t, SessionRunning, s.Status())
	assert.Equal(t, 1, s.TimeRemaining())

	s.Tick()
	assert.Equal(t, SessionFinished, s.Status())
	assert.Equal(t, 0, s.TimeRemaining())

	result := s.Result()
	require.NotNil(t, result)
	assert.Equal(t, models.AttemptEndReasonTimeout, result.EndReason)
	assert.Equal(t, 2, result.ElapsedSeconds)

	// Further ticks are no-ops: same result, no double trigger.
	s.Tick()
	s.Tick()
	assert.Equal(t, SessionFinished, s.Status())
	assert.Same(t, result, s.Result())
	assert.Equal(t, 0, s.TimeRemaining())
}

func TestNoMutationAfterFinish(t *testing.T) {
	s := NewTestSession()
	roster := shuffledRoster(t, "A")
	require.NoError(t, s.Start(roster, 1))

	s.Tick() // forces Finished

	assert.ErrorIs(t, s.Answer(roster[0].Question.ID, 0), ErrSessionNotRunning)
	assert.ErrorIs(t, s.Navigate(1), ErrSessionNotRunning)
	_, err := s.Finish()
	assert.ErrorIs(t, err, ErrSessionNotRunning)
}

func TestFinishEndToEnd(t *testing.T) {
	// Four questions over categories A and B, three answered correctly, one
	// left unanswered: score = round((3 - 0/3)*10/4, 2) = 7.50.
	s := NewTestSession()
	roster := shuffledRoster(t, "A", "A", "B", "B")
	require.NoError(t, s.Start(roster, 600))

	for _, sq := range roster[:3] {
		require.NoError(t, s.Answer(sq.Question.ID, sq.DisplayCorrectIndex))
	}

	result, err := s.Finish()
	require.NoError(t, err)

	assert.Equal(t, 3, result.CorrectCount)
	assert.Equal(t, 0, result.IncorrectCount)
	assert.Equal(t, 1, result.UnansweredCount)
	assert.InDelta(t, 7.5, result.Score, 1e-9)
	assert.Equal(t, models.AttemptEndReasonUser, result.EndReason)
	require.Len(t, result.Questions, 4)

	// Per-question results carry the display snapshot for aggregation.
	for i, qr := range result.Questions {
		assert.Equal(t, roster[i].Question.ID, qr.QuestionID)
		assert.Equal(t, roster[i].Question.Category, qr.Category)
		assert.Equal(t, roster[i].DisplayCorrectIndex, qr.DisplayCorrectIndex)
	}
	assert.Nil(t, result.Questions[3].AnswerIndex)
	assert.False(t, result.Questions[3].Correct)
}

func TestFinishCountsIncorrect(t *testing.T) {
	s := NewTestSession()
	roster := shuffledRoster(t, "A", "B")
	require.NoError(t, s.Start(roster, 600))

	require.NoError(t, s.Answer(roster[0].Question.ID, roster[0].DisplayCorrectIndex))
	require.NoError(t, s.Answer(roster[1].Question.ID, (roster[1].DisplayCorrectIndex+1)%4))

	result, err := s.Finish()
	require.NoError(t, err)

	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 1, result.IncorrectCount)
	assert.Equal(t, 0, result.UnansweredCount)
	// (1 - 1/3)*10/2 = 3.3333... -> 3.33
	assert.InDelta(t, 3.33, result.Score, 1e-9)
}
