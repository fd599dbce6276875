package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q QuestionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q QuestionPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	var questions []*models.Question
	if err := q.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q QuestionPostgreSQL) Fetch(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, error) {
	var questions []*models.Question

	query := q.applyFilters(q.db.WithContext(ctx).Model(&models.Question{}), filters)
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := query.Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q QuestionPostgreSQL) FetchRandom(ctx context.Context, kind models.TestKind, categories []string, count int) ([]*models.Question, error) {
	var questions []*models.Question

	query := q.applyFilters(q.db.WithContext(ctx).Model(&models.Question{}), repositories.QuestionFilters{
		TestKind:   kind,
		Categories: categories,
	})

	if err := query.Order("RANDOM()").Limit(count).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q QuestionPostgreSQL) ListCategories(ctx context.Context, kind models.TestKind) ([]string, error) {
	var categories []string
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("test_kind = ?", kind).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (q QuestionPostgreSQL) Count(ctx context.Context, filters repositories.QuestionFilters) (int64, error) {
	var total int64
	query := q.applyFilters(q.db.WithContext(ctx).Model(&models.Question{}), filters)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (q QuestionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.TestKind != "" {
		query = query.Where("test_kind = ?", filters.TestKind)
	}
	if len(filters.Categories) > 0 {
		query = query.Where("category IN ?", filters.Categories)
	}
	return query
}
