package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
)

type PracticeStatPostgreSQL struct {
	db *gorm.DB
}

func NewPracticeStatPostgreSQL(db *gorm.DB) repositories.PracticeStatRepository {
	return &PracticeStatPostgreSQL{db: db}
}

func (p PracticeStatPostgreSQL) Load(ctx context.Context, userID string, kind models.TestKind) (*models.PracticeStat, error) {
	var stat models.PracticeStat
	err := p.db.WithContext(ctx).
		Where("user_id = ? AND test_kind = ?", userID, kind).
		First(&stat).Error
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

func (p PracticeStatPostgreSQL) Save(ctx context.Context, stat *models.PracticeStat) error {
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "test_kind"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"correct_count", "incorrect_count", "unanswered_count",
			"total_corrected", "final_score", "updated_at",
		}),
	}).Create(stat).Error
}
