package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
)

type CategoryStatPostgreSQL struct {
	db *gorm.DB
}

func NewCategoryStatPostgreSQL(db *gorm.DB) repositories.CategoryStatRepository {
	return &CategoryStatPostgreSQL{db: db}
}

func (c CategoryStatPostgreSQL) GetByUser(ctx context.Context, userID string, kind *models.TestKind) ([]models.CategoryStat, error) {
	var stats []models.CategoryStat

	query := c.db.WithContext(ctx).Where("user_id = ?", userID)
	if kind != nil {
		query = query.Where("test_kind = ?", *kind)
	}

	if err := query.Order("category").Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// ApplyAggregate applies a completed attempt's category deltas in one
// transaction. Counters are bumped with SQL-side increments and mastery is
// recomputed from the incremented totals in the same statement, so two
// attempts finishing back-to-back cannot lose each other's updates the way a
// read-modify-write from the client would.
func (c CategoryStatPostgreSQL) ApplyAggregate(ctx context.Context, updates []repositories.CategoryStatDelta, inserts []models.CategoryStat) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			err := tx.Model(&models.CategoryStat{}).
				Where("user_id = ? AND category = ? AND test_kind = ?", u.UserID, u.Category, u.TestKind).
				Updates(map[string]interface{}{
					"questions_seen":    gorm.Expr("questions_seen + ?", u.SeenDelta),
					"questions_correct": gorm.Expr("questions_correct + ?", u.CorrectDelta),
					"mastery_level": gorm.Expr(
						"ROUND((questions_correct + ?) * 100.0 / (questions_seen + ?))",
						u.CorrectDelta, u.SeenDelta),
				}).Error
			if err != nil {
				return err
			}
		}

		if len(inserts) == 0 {
			return nil
		}

		// A concurrent attempt may have inserted the same category between
		// the snapshot read and this write; fall back to the same atomic
		// increment on conflict.
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "category"}, {Name: "test_kind"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"questions_seen":    gorm.Expr("category_stats.questions_seen + excluded.questions_seen"),
				"questions_correct": gorm.Expr("category_stats.questions_correct + excluded.questions_correct"),
				"mastery_level": gorm.Expr(
					"ROUND((category_stats.questions_correct + excluded.questions_correct) * 100.0 / " +
						"(category_stats.questions_seen + excluded.questions_seen))"),
			}),
		}).Create(&inserts).Error
	})
}
