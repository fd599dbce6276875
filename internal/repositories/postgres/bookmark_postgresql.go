package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/prepkit/exam-engine/internal/repositories"
)

type BookmarkPostgreSQL struct {
	db *gorm.DB
}

func NewBookmarkPostgreSQL(db *gorm.DB) repositories.BookmarkRepository {
	return &BookmarkPostgreSQL{db: db}
}

func (b BookmarkPostgreSQL) IsBookmarked(ctx context.Context, userID, questionID string) (bool, error) {
	var count int64
	err := b.db.WithContext(ctx).
		Model(&models.Bookmark{}).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (b BookmarkPostgreSQL) Toggle(ctx context.Context, userID, questionID string) (bool, error) {
	var bookmarked bool
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Bookmark
		err := tx.Where("user_id = ? AND question_id = ?", userID, questionID).First(&existing).Error
		if err == nil {
			bookmarked = false
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		bookmarked = true
		return tx.Create(&models.Bookmark{UserID: userID, QuestionID: questionID}).Error
	})
	return bookmarked, err
}

func (b BookmarkPostgreSQL) GetQuestions(ctx context.Context, userID string, kind models.TestKind) ([]*models.Question, error) {
	var questions []*models.Question
	err := b.db.WithContext(ctx).
		Model(&models.Question{}).
		Joins("JOIN bookmarks ON bookmarks.question_id = questions.id").
		Where("bookmarks.user_id = ? AND questions.test_kind = ?", userID, kind).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}
