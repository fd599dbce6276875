package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportUserReport renders the user's attempt history and category mastery
// into a two-sheet spreadsheet.
func (s *exportService) ExportUserReport(ctx context.Context, userID string, kind models.TestKind) ([]byte, error) {
	s.logger.Info("Exporting user report", "user_id", userID, "test_kind", kind)

	attempts, _, err := s.repo.Attempt().GetByUser(ctx, userID, repositories.AttemptFilters{
		TestKind:  &kind,
		Limit:     1000,
		SortOrder: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts for export: %w", err)
	}

	stats, err := s.repo.CategoryStat().GetByUser(ctx, userID, &kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats for export: %w", err)
	}

	f := excelize.NewFile()

	if err := s.writeAttemptsSheet(f, attempts); err != nil {
		return nil, err
	}
	if err := s.writeMasterySheet(f, stats); err != nil {
		return nil, err
	}

	// The default "Sheet1" stays around after adding our own sheets.
	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) writeAttemptsSheet(f *excelize.File, attempts []*models.Attempt) error {
	sheetName := "Attempts"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Date", "Test Kind", "Categories", "Score",
		"Correct", "Incorrect", "Unanswered", "Duration", "End Reason",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		row := []interface{}{
			attempt.CreatedAt.Format("2006-01-02 15:04:05"),
			string(attempt.TestKind),
			categoriesLabel(attempt),
			attempt.Score,
			attempt.CorrectCount,
			attempt.IncorrectCount,
			attempt.UnansweredCount,
			attempt.ElapsedDuration,
			string(attempt.EndReason),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}

func (s *exportService) writeMasterySheet(f *excelize.File, stats []models.CategoryStat) error {
	sheetName := "Mastery"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"Category", "Questions Seen", "Questions Correct", "Mastery %"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, stat := range stats {
		row := []interface{}{
			stat.Category,
			stat.QuestionsSeen,
			stat.QuestionsCorrect,
			stat.MasteryLevel,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}

// categoriesLabel flattens the attempt's category snapshot for display.
func categoriesLabel(attempt *models.Attempt) string {
	var categories []string
	if err := json.Unmarshal(attempt.Categories, &categories); err != nil {
		return ""
	}
	return strings.Join(categories, ", ")
}
