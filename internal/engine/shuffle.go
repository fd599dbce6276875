// Package engine implements the exam-session core: option shuffling, penalized
// scoring, the timed session state machine, the single-question practice loop
// and per-category mastery aggregation. Everything in this package is pure
// in-memory computation; persistence and transport live in the surrounding
// service layer.
package engine

import (
	"errors"
	"math/rand"

	"github.com/prepkit/exam-engine/internal/models"
)

var ErrInvalidQuestion = errors.New("question has no options or its correct index is out of range")

// DisplayOption is one answer alternative in presentation order, tagged with
// the position it held in the authored question.
type DisplayOption struct {
	models.Option
	OriginalIndex int `json:"original_index"`
}

// ShuffledQuestion is the per-presentation form of a question. It is derived
// fresh each time a question is displayed and is never persisted as-is; only
// the display order and display-correct index are snapshotted into attempts.
type ShuffledQuestion struct {
	Question            *models.Question
	DisplayOptions      []DisplayOption
	DisplayCorrectIndex int
}

// Shuffle produces a uniformly random permutation of the question's options,
// each tagged with its original index, and locates the correct option's new
// position. The input question is not mutated.
//
// rand.Shuffle is a Fisher-Yates shuffle, so every permutation is equally
// likely; do not swap it for a sort with a random comparator, which is biased.
func Shuffle(q *models.Question) (*ShuffledQuestion, error) {
	if !q.Valid() {
		return nil, ErrInvalidQuestion
	}

	display := make([]DisplayOption, len(q.Options))
	for i, opt := range q.Options {
		display[i] = DisplayOption{Option: opt, OriginalIndex: i}
	}
	rand.Shuffle(len(display), func(i, j int) {
		display[i], display[j] = display[j], display[i]
	})

	correct := -1
	for i, opt := range display {
		if opt.OriginalIndex == q.CorrectIndex {
			correct = i
			break
		}
	}

	return &ShuffledQuestion{
		Question:            q,
		DisplayOptions:      display,
		DisplayCorrectIndex: correct,
	}, nil
}

// DisplayOrder returns the original index held at each display position, in
// the shape stored on attempt records.
func (sq *ShuffledQuestion) DisplayOrder() []int {
	order := make([]int, len(sq.DisplayOptions))
	for i, opt := range sq.DisplayOptions {
		order[i] = opt.OriginalIndex
	}
	return order
}
