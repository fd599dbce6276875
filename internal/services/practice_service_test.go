package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prepkit/exam-engine/internal/engine"
	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/utils"
)

func newPracticeFixture(t *testing.T) (*practiceService, *MockRepository) {
	t.Helper()
	repo := NewMockRepository()
	svc := NewPracticeService(repo, testLogger(), utils.NewValidator()).(*practiceService)
	return svc, repo
}

func practiceRequest() *StartPracticeRequest {
	return &StartPracticeRequest{
		UserID:     "user-1",
		TestKind:   models.TestKindStandard,
		Categories: []string{"networking"},
	}
}

func TestPracticeService_Start(t *testing.T) {
	svc, repo := newPracticeFixture(t)

	pool := []*models.Question{testQuestion("q1", "networking")}
	repo.question.On("Fetch", mock.Anything, mock.AnythingOfType("repositories.QuestionFilters")).
		Return(pool, nil)
	repo.practiceStat.On("Load", mock.Anything, "user-1", models.TestKindStandard).
		Return(nil, gorm.ErrRecordNotFound)

	view, err := svc.Start(context.Background(), practiceRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, view.PracticeID)
	assert.False(t, view.Exhausted)
	require.NotNil(t, view.Question)
	assert.Equal(t, "q1", view.Question.ID)
	assert.Nil(t, view.SelectedIndex)
	assert.Equal(t, engine.PracticeStats{}, view.Stats)
}

func TestPracticeService_Start_ResumesStats(t *testing.T) {
	svc, repo := newPracticeFixture(t)

	pool := []*models.Question{testQuestion("q1", "networking")}
	repo.question.On("Fetch", mock.Anything, mock.Anything).Return(pool, nil)
	repo.practiceStat.On("Load", mock.Anything, "user-1", models.TestKindStandard).
		Return(&models.PracticeStat{
			UserID:         "user-1",
			TestKind:       models.TestKindStandard,
			CorrectCount:   7,
			IncorrectCount: 2,
			TotalCorrected: 9,
			FinalScore:     7.04,
		}, nil)

	view, err := svc.Start(context.Background(), practiceRequest())
	require.NoError(t, err)

	assert.Equal(t, 7, view.Stats.CorrectCount)
	assert.Equal(t, 9, view.Stats.TotalCorrected)
	assert.InDelta(t, 7.04, view.Stats.FinalScore, 1e-9)
}

func TestPracticeService_Start_FromBookmarks(t *testing.T) {
	svc, repo := newPracticeFixture(t)

	pool := []*models.Question{testQuestion("q1", "networking")}
	repo.bookmark.On("GetQuestions", mock.Anything, "user-1", models.TestKindStandard).
		Return(pool, nil)
	repo.practiceStat.On("Load", mock.Anything, "user-1", models.TestKindStandard).
		Return(nil, gorm.ErrRecordNotFound)

	req := practiceRequest()
	req.FromBookmarks = true

	view, err := svc.Start(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, view.Question)

	repo.question.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestPracticeService_Start_EmptyPool(t *testing.T) {
	svc, repo := newPracticeFixture(t)

	repo.question.On("Fetch", mock.Anything, mock.Anything).Return([]*models.Question{}, nil)
	repo.practiceStat.On("Load", mock.Anything, "user-1", models.TestKindStandard).
		Return(nil, gorm.ErrRecordNotFound)

	view, err := svc.Start(context.Background(), practiceRequest())
	require.NoError(t, err)

	assert.True(t, view.Exhausted)
	assert.Nil(t, view.Question)
}

func TestPracticeService_SelectAndCorrect(t *testing.T) {
	svc, repo := newPracticeFixture(t)

	pool := []*models.Question{testQuestion("q1", "networking")}
	repo.question.On("Fetch", mock.Anything, mock.Anything).Return(pool, nil)
	repo.practiceStat.On("Load", mock.Anything, "user-1", models.TestKindStandard).
		Return(nil, gorm.ErrRecordNotFound)

	saved := make(chan *models.PracticeStat, 1)
	repo.practiceStat.On("Save", mock.Anything, mock.AnythingOfType("*models.PracticeStat")).
		Run(func(args mock.Arguments) {
			saved <- args.Get(1).(*models.PracticeStat)
		}).
		Return(nil)

	view, err := svc.Start(context.Background(), practiceRequest())
	require.NoError(t, err)
	practiceID := view.PracticeID

	view, err = svc.Select(context.Background(), practiceID, 2)
	require.NoError(t, err)
	require.NotNil(t, view.SelectedIndex)
	assert.Equal(t, 2, *view.SelectedIndex)

	correction, err := svc.Correct(context.Background(), practiceID)
	require.NoError(t, err)

	assert.True(t, correction.Answered)
	assert.Equal(t, 1, correction.Stats.TotalCorrected)
	assert.Equal(t, "because", correction.Explanation)
	assert.Equal(t, correction.Correct, correction.DisplayCorrectIndex == 2)

	select {
	case stat := <-saved:
		assert.Equal(t, "user-1", stat.UserID)
		assert.Equal(t, models.TestKindStandard, stat.TestKind)
		assert.Equal(t, 1, stat.TotalCorrected)
	case <-time.After(time.Second):
		t.Fatal("practice stats were never persisted")
	}
}

func TestPracticeService_Correct_WithoutSelection(t *testing.T) {
	svc, repo := newPracticeFixture(t)

	pool := []*models.Question{testQuestion("q1", "networking")}
	repo.question.On("Fetch", mock.Anything, mock.Anything).Return(pool, nil)
	repo.practiceStat.On("Load", mock.Anything, "user-1", models.TestKindStandard).
		Return(nil, gorm.ErrRecordNotFound)
	repo.practiceStat.On("Save", mock.Anything, mock.Anything).Return(nil)

	view, err := svc.Start(context.Background(), practiceRequest())
	require.NoError(t, err)

	correction, err := svc.Correct(context.Background(), view.PracticeID)
	require.NoError(t, err)

	assert.False(t, correction.Answered)
	assert.Equal(t, 1, correction.Stats.UnansweredCount)
}

func TestPracticeService_Next(t *testing.T) {
	svc, repo := newPracticeFixture(t)

	pool := []*models.Question{
		testQuestion("q1", "networking"),
		testQuestion("q2", "networking"),
	}
	repo.question.On("Fetch", mock.Anything, mock.Anything).Return(pool, nil)
	repo.practiceStat.On("Load", mock.Anything, "user-1", models.TestKindStandard).
		Return(nil, gorm.ErrRecordNotFound)

	view, err := svc.Start(context.Background(), practiceRequest())
	require.NoError(t, err)

	view, err = svc.Next(context.Background(), view.PracticeID)
	require.NoError(t, err)
	require.NotNil(t, view.Question)
	assert.Nil(t, view.SelectedIndex)
}

func TestPracticeService_Select_InvalidIndex(t *testing.T) {
	svc, repo := newPracticeFixture(t)

	pool := []*models.Question{testQuestion("q1", "networking")}
	repo.question.On("Fetch", mock.Anything, mock.Anything).Return(pool, nil)
	repo.practiceStat.On("Load", mock.Anything, "user-1", models.TestKindStandard).
		Return(nil, gorm.ErrRecordNotFound)

	view, err := svc.Start(context.Background(), practiceRequest())
	require.NoError(t, err)

	_, err = svc.Select(context.Background(), view.PracticeID, -1)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestPracticeService_Exit(t *testing.T) {
	svc, repo := newPracticeFixture(t)

	pool := []*models.Question{testQuestion("q1", "networking")}
	repo.question.On("Fetch", mock.Anything, mock.Anything).Return(pool, nil)
	repo.practiceStat.On("Load", mock.Anything, "user-1", models.TestKindStandard).
		Return(nil, gorm.ErrRecordNotFound)

	view, err := svc.Start(context.Background(), practiceRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Exit(context.Background(), view.PracticeID))

	_, err = svc.Next(context.Background(), view.PracticeID)
	assert.ErrorIs(t, err, ErrPracticeNotFound)
}
