package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
)

type attemptService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAttemptService(repo repositories.Repository, logger *slog.Logger) AttemptService {
	return &attemptService{
		repo:   repo,
		logger: logger,
	}
}

func (s *attemptService) GetByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}
	if filters.SortOrder == "" {
		filters.SortOrder = "desc"
	}

	attempts, total, err := s.repo.Attempt().GetByUser(ctx, userID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load attempts: %w", err)
	}
	return attempts, total, nil
}
