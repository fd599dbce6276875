package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.Attempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	var attempts []*models.Attempt
	var total int64

	// apply filters first
	query := a.db.WithContext(ctx).Model(&models.Attempt{}).Where("user_id = ?", userID)
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then pagination and ordering
	order := "created_at DESC"
	if filters.SortOrder == "asc" {
		order = "created_at ASC"
	}
	query = query.Order(order)
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.TestKind != nil {
		query = query.Where("test_kind = ?", *filters.TestKind)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
