package models

import "time"

// CategoryStat holds lifetime per-category counters for one (user, category,
// test kind). Counters only grow; mastery is always recomputed from the
// updated totals rather than drifted incrementally.
type CategoryStat struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	UserID   string   `json:"user_id" gorm:"not null;size:64;uniqueIndex:idx_category_stats_key"`
	Category string   `json:"category" gorm:"not null;size:100;uniqueIndex:idx_category_stats_key"`
	TestKind TestKind `json:"test_kind" gorm:"not null;size:20;uniqueIndex:idx_category_stats_key" validate:"required,testkind"`

	QuestionsSeen    int `json:"questions_seen" gorm:"not null;default:0"`
	QuestionsCorrect int `json:"questions_correct" gorm:"not null;default:0"`
	MasteryLevel     int `json:"mastery_level" gorm:"not null;default:0"` // percentage, 0-100

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CategoryStat) TableName() string {
	return "category_stats"
}

// PracticeStat persists the running totals of single-question practice,
// keyed by user and test kind and carried across practice sessions.
type PracticeStat struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	UserID   string   `json:"user_id" gorm:"not null;size:64;uniqueIndex:idx_practice_stats_key"`
	TestKind TestKind `json:"test_kind" gorm:"not null;size:20;uniqueIndex:idx_practice_stats_key" validate:"required,testkind"`

	CorrectCount    int     `json:"correct_count" gorm:"not null;default:0"`
	IncorrectCount  int     `json:"incorrect_count" gorm:"not null;default:0"`
	UnansweredCount int     `json:"unanswered_count" gorm:"not null;default:0"`
	TotalCorrected  int     `json:"total_corrected" gorm:"not null;default:0"`
	FinalScore      float64 `json:"final_score" gorm:"not null;default:0"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (PracticeStat) TableName() string {
	return "practice_stats"
}

type Bookmark struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	UserID     string `json:"user_id" gorm:"not null;size:64;uniqueIndex:idx_bookmarks_key"`
	QuestionID string `json:"question_id" gorm:"not null;size:64;uniqueIndex:idx_bookmarks_key"`

	CreatedAt time.Time `json:"created_at"`

	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
