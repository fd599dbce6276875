package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prepkit/exam-engine/internal/cache"
	"github.com/prepkit/exam-engine/internal/engine"
	"github.com/prepkit/exam-engine/internal/events"
	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
)

const (
	masteryCacheTTL = 5 * time.Minute

	defaultTopN    = 3
	defaultBottomM = 3
	defaultMinSeen = 1
)

// ===== REQUEST TYPES =====

type ClassificationRequest struct {
	UserID   string          `json:"user_id" validate:"required,max=64"`
	TestKind models.TestKind `json:"test_kind" validate:"required,testkind"`
	TopN     int             `json:"top_n"`
	BottomM  int             `json:"bottom_m"`
	MinSeen  int             `json:"min_seen"`
}

// ===== SERVICE =====

type masteryService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	cache     cache.CacheService
	publisher events.EventPublisher
}

func NewMasteryService(
	repo repositories.Repository,
	logger *slog.Logger,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
) MasteryService {
	return &masteryService{
		repo:      repo,
		logger:    logger,
		cache:     cacheService,
		publisher: publisher,
	}
}

// RecordAttempt folds a completed attempt's per-question results into the
// user's lifetime category counters. The snapshot read feeds the pure
// aggregation; the write itself lands as atomic increments, so a stale
// snapshot can at worst misplace a row between update and insert, which the
// upsert absorbs.
func (s *masteryService) RecordAttempt(ctx context.Context, userID string, kind models.TestKind, results []engine.QuestionResult) error {
	if len(results) == 0 {
		return nil
	}

	existing, err := s.repo.CategoryStat().GetByUser(ctx, userID, &kind)
	if err != nil {
		return fmt.Errorf("failed to load category stats: %w", err)
	}

	agg := engine.Aggregate(existing, results, userID, kind)

	updates := make([]repositories.CategoryStatDelta, len(agg.Updates))
	for i, change := range agg.Updates {
		updates[i] = repositories.CategoryStatDelta{
			UserID:       userID,
			TestKind:     kind,
			Category:     change.Stat.Category,
			SeenDelta:    change.SeenDelta,
			CorrectDelta: change.CorrectDelta,
		}
	}

	if err := s.repo.CategoryStat().ApplyAggregate(ctx, updates, agg.Inserts); err != nil {
		return fmt.Errorf("failed to apply category stats: %w", err)
	}

	s.invalidateCache(ctx, userID)
	s.publishMasteryUpdated(ctx, userID, kind, agg)

	s.logger.Info("Category stats updated",
		"user_id", userID,
		"test_kind", kind,
		"updated", len(agg.Updates),
		"inserted", len(agg.Inserts))
	return nil
}

func (s *masteryService) publishMasteryUpdated(ctx context.Context, userID string, kind models.TestKind, agg engine.AggregateResult) {
	updated := make([]string, len(agg.Updates))
	for i, change := range agg.Updates {
		updated[i] = change.Stat.Category
	}
	inserted := make([]string, len(agg.Inserts))
	for i, stat := range agg.Inserts {
		inserted[i] = stat.Category
	}

	event := &events.ExamEvent{
		ID:        uuid.NewString(),
		Type:      events.EventMasteryUpdated,
		Timestamp: time.Now(),
		Source:    "exam-engine",
		Version:   "1.0",
		Data: events.MasteryUpdatedEvent{
			UserID:            userID,
			TestKind:          kind,
			UpdatedCategories: updated,
			NewCategories:     inserted,
		},
	}

	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish mastery event", "user_id", userID, "error", err)
	}
}

func (s *masteryService) GetStats(ctx context.Context, userID string, kind *models.TestKind) ([]models.CategoryStat, error) {
	cacheKey := s.statsCacheKey(userID, kind)

	var cached []models.CategoryStat
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Category stats cache read failed", "key", cacheKey, "error", err)
	}

	stats, err := s.repo.CategoryStat().GetByUser(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load category stats: %w", err)
	}

	if err := s.cache.Set(ctx, cacheKey, stats, masteryCacheTTL); err != nil {
		s.logger.Warn("Category stats cache write failed", "key", cacheKey, "error", err)
	}
	return stats, nil
}

func (s *masteryService) GetClassification(ctx context.Context, req *ClassificationRequest) (*engine.Classification, error) {
	if req.TopN <= 0 {
		req.TopN = defaultTopN
	}
	if req.BottomM <= 0 {
		req.BottomM = defaultBottomM
	}
	if req.MinSeen <= 0 {
		req.MinSeen = defaultMinSeen
	}

	stats, err := s.GetStats(ctx, req.UserID, &req.TestKind)
	if err != nil {
		return nil, err
	}

	classification := engine.Classify(stats, req.TopN, req.BottomM, req.MinSeen)
	return &classification, nil
}

func (s *masteryService) statsCacheKey(userID string, kind *models.TestKind) string {
	if kind == nil {
		return fmt.Sprintf("mastery:%s:all", userID)
	}
	return fmt.Sprintf("mastery:%s:%s", userID, *kind)
}

func (s *masteryService) invalidateCache(ctx context.Context, userID string) {
	pattern := fmt.Sprintf("mastery:%s:*", userID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.logger.Warn("Category stats cache invalidation failed", "pattern", pattern, "error", err)
	}
}
