package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
)

type questionService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger) QuestionService {
	return &questionService{
		repo:   repo,
		logger: logger,
	}
}

func (s *questionService) ListCategories(ctx context.Context, kind models.TestKind) ([]string, error) {
	categories, err := s.repo.Question().ListCategories(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *questionService) CountQuestions(ctx context.Context, kind models.TestKind, categories []string) (int64, error) {
	count, err := s.repo.Question().Count(ctx, repositories.QuestionFilters{
		TestKind:   kind,
		Categories: categories,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}
