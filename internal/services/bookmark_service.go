package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prepkit/exam-engine/internal/repositories"
)

type bookmarkService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewBookmarkService(repo repositories.Repository, logger *slog.Logger) BookmarkService {
	return &bookmarkService{
		repo:   repo,
		logger: logger,
	}
}

func (s *bookmarkService) IsBookmarked(ctx context.Context, userID, questionID string) (bool, error) {
	bookmarked, err := s.repo.Bookmark().IsBookmarked(ctx, userID, questionID)
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}
	return bookmarked, nil
}

func (s *bookmarkService) Toggle(ctx context.Context, userID, questionID string) (bool, error) {
	// Verify the question exists so we never bookmark a dangling id.
	if _, err := s.repo.Question().GetByID(ctx, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrQuestionNotFound
		}
		return false, fmt.Errorf("failed to load question: %w", err)
	}

	bookmarked, err := s.repo.Bookmark().Toggle(ctx, userID, questionID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle bookmark: %w", err)
	}

	s.logger.Info("Bookmark toggled",
		"user_id", userID,
		"question_id", questionID,
		"bookmarked", bookmarked)
	return bookmarked, nil
}
