package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type AttemptEndReason string

const (
	AttemptEndReasonUser    AttemptEndReason = "user"
	AttemptEndReasonTimeout AttemptEndReason = "timeout"
)

// AttemptQuestion is the per-question snapshot stored with a completed attempt.
// Answer indices are recorded against the shuffled display order, so the
// display-correct index captured here is the one later aggregation must use.
type AttemptQuestion struct {
	QuestionID          string `json:"question_id"`
	Category            string `json:"category"`
	DisplayOrder        []int  `json:"display_order"` // original index per display position
	DisplayCorrectIndex int    `json:"display_correct_index"`
	AnswerIndex         *int   `json:"answer_index,omitempty"` // display index, nil = unanswered
	Correct             bool   `json:"correct"`
}

// Attempt is one completed timed test session, persisted as a historical record.
type Attempt struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	UserID   string   `json:"user_id" gorm:"not null;size:64;index:idx_attempts_user_kind"`
	TestKind TestKind `json:"test_kind" gorm:"not null;size:20;index:idx_attempts_user_kind" validate:"required,testkind"`

	Categories datatypes.JSON `json:"categories" gorm:"type:jsonb"` // []string
	Questions  datatypes.JSON `json:"questions" gorm:"type:jsonb"`  // []AttemptQuestion

	Score           float64 `json:"score" gorm:"not null" validate:"min=0,max=10"`
	CorrectCount    int     `json:"correct_count" gorm:"not null"`
	IncorrectCount  int     `json:"incorrect_count" gorm:"not null"`
	UnansweredCount int     `json:"unanswered_count" gorm:"not null"`

	// ISO-8601 duration ("PT1H2M3S", zero components omitted), for display.
	ElapsedDuration string           `json:"elapsed_duration" gorm:"size:32"`
	EndReason       AttemptEndReason `json:"end_reason" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// FormatISODuration encodes elapsed seconds as an ISO-8601 duration string,
// omitting zero components. Zero seconds encodes as "PT0S".
func FormatISODuration(seconds int) string {
	if seconds <= 0 {
		return "PT0S"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	out := "PT"
	if h > 0 {
		out += fmt.Sprintf("%dH", h)
	}
	if m > 0 {
		out += fmt.Sprintf("%dM", m)
	}
	if s > 0 {
		out += fmt.Sprintf("%dS", s)
	}
	return out
}
