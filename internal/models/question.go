package models

import (
	"time"

	"gorm.io/gorm"
)

type TestKind string

const (
	TestKindStandard TestKind = "Standard"
	TestKindAdvanced TestKind = "Advanced"
)

// Option is a single answer alternative. Image-only options are normalized at
// ingestion time into the same shape, so downstream code never branches on a
// raw string vs object payload.
type Option struct {
	Text     string  `json:"text" validate:"required"`
	ImageRef *string `json:"image_ref,omitempty"`
}

type Question struct {
	ID       string   `json:"id" gorm:"primaryKey;size:64"`
	TestKind TestKind `json:"test_kind" gorm:"not null;size:20;index:idx_questions_kind_category" validate:"required,testkind"`
	Category string   `json:"category" gorm:"not null;size:100;index:idx_questions_kind_category" validate:"required,max=100"`
	Topic    string   `json:"topic" gorm:"size:100" validate:"omitempty,max=100"`

	Text     string  `json:"text" gorm:"type:text;not null" validate:"required"`
	ImageRef *string `json:"image_ref" gorm:"size:500"`

	Options      []Option `json:"options" gorm:"serializer:json" validate:"required,min=2,dive"`
	CorrectIndex int      `json:"correct_index" gorm:"not null" validate:"min=0"`
	Explanation  string   `json:"explanation" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// Valid reports whether the question can be presented: at least two options
// and a correct index that points inside them.
func (q *Question) Valid() bool {
	return len(q.Options) >= 2 && q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}
