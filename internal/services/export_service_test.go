package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/prepkit/exam-engine/internal/models"
)

func TestExportService_ExportUserReport(t *testing.T) {
	repo := NewMockRepository()
	svc := NewExportService(repo, testLogger())
	kind := models.TestKindStandard

	attempts := []*models.Attempt{
		{
			ID:              1,
			UserID:          "user-1",
			TestKind:        kind,
			Categories:      datatypes.JSON(`["networking","storage"]`),
			Score:           6.3,
			CorrectCount:    18,
			IncorrectCount:  10,
			UnansweredCount: 2,
			ElapsedDuration: "PT25M10S",
			EndReason:       models.AttemptEndReasonUser,
			CreatedAt:       time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
		},
	}
	stats := []models.CategoryStat{
		{UserID: "user-1", Category: "networking", TestKind: kind, QuestionsSeen: 20, QuestionsCorrect: 14, MasteryLevel: 70},
	}

	repo.attempt.On("GetByUser", mock.Anything, "user-1", mock.Anything).
		Return(attempts, int64(1), nil)
	repo.categoryStat.On("GetByUser", mock.Anything, "user-1", &kind).
		Return(stats, nil)

	data, err := svc.ExportUserReport(context.Background(), "user-1", kind)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Attempts")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "networking, storage", rows[1][2])
	assert.Equal(t, "PT25M10S", rows[1][7])

	rows, err = f.GetRows("Mastery")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "networking", rows[1][0])
	assert.Equal(t, "70", rows[1][3])
}
