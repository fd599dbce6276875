package events

import (
	"time"

	"github.com/prepkit/exam-engine/internal/models"
)

// EventType represents the exam lifecycle events this service emits.
type EventType string

const (
	EventAttemptCompleted EventType = "attempt.completed"
	EventAttemptTimedOut  EventType = "attempt.timed_out"
	EventMasteryUpdated   EventType = "mastery.updated"
)

// ExamEvent is the base structure for all published events.
type ExamEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AttemptCompletedEvent is emitted after a timed session finishes and its
// record has been persisted.
type AttemptCompletedEvent struct {
	AttemptID       uint                    `json:"attempt_id"`
	UserID          string                  `json:"user_id"`
	TestKind        models.TestKind         `json:"test_kind"`
	Categories      []string                `json:"categories"`
	Score           float64                 `json:"score"`
	CorrectCount    int                     `json:"correct_count"`
	IncorrectCount  int                     `json:"incorrect_count"`
	UnansweredCount int                     `json:"unanswered_count"`
	EndReason       models.AttemptEndReason `json:"end_reason"`
	CompletedAt     time.Time               `json:"completed_at"`
}

// MasteryUpdatedEvent is emitted after category counters have been folded in.
type MasteryUpdatedEvent struct {
	UserID            string          `json:"user_id"`
	TestKind          models.TestKind `json:"test_kind"`
	UpdatedCategories []string        `json:"updated_categories"`
	NewCategories     []string        `json:"new_categories"`
}
