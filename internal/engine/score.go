package engine

import (
	"errors"
	"math"
)

var ErrInvalidAlternativeCount = errors.New("score requires at least 2 alternatives per question")

// Score computes the penalized exam score on a 0-10 scale.
//
// Each incorrect answer subtracts 1/(alternatives-1) of a correct answer, so
// blind guessing has an expected value of zero. The raw score is rounded to
// two decimals and clamped at zero; a session with no questions scores zero.
func Score(correct, incorrect, total, alternatives int) (float64, error) {
	if alternatives < 2 {
		return 0, ErrInvalidAlternativeCount
	}
	if total == 0 {
		return 0, nil
	}

	penalty := float64(incorrect) / float64(alternatives-1)
	raw := (float64(correct) - penalty) * 10 / float64(total)
	if raw < 0 {
		return 0, nil
	}
	return math.Round(raw*100) / 100, nil
}
