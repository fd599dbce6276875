package postgres

import (
	"gorm.io/gorm"

	"github.com/prepkit/exam-engine/internal/repositories"
)

type repository struct {
	question     repositories.QuestionRepository
	attempt      repositories.AttemptRepository
	categoryStat repositories.CategoryStatRepository
	bookmark     repositories.BookmarkRepository
	practiceStat repositories.PracticeStatRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		question:     NewQuestionPostgreSQL(db),
		attempt:      NewAttemptPostgreSQL(db),
		categoryStat: NewCategoryStatPostgreSQL(db),
		bookmark:     NewBookmarkPostgreSQL(db),
		practiceStat: NewPracticeStatPostgreSQL(db),
	}
}

func (r *repository) Question() repositories.QuestionRepository         { return r.question }
func (r *repository) Attempt() repositories.AttemptRepository           { return r.attempt }
func (r *repository) CategoryStat() repositories.CategoryStatRepository { return r.categoryStat }
func (r *repository) Bookmark() repositories.BookmarkRepository         { return r.bookmark }
func (r *repository) PracticeStat() repositories.PracticeStatRepository { return r.practiceStat }
