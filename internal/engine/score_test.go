package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name         string
		correct      int
		incorrect    int
		total        int
		alternatives int
		want         float64
	}{
		// penalty = 18/(3-1) = 9, raw = (72-9)*10/100 = 6.3
		{"reference fixture", 72, 18, 100, 3, 6.3},
		{"perfect score", 100, 0, 100, 4, 10},
		{"all wrong clamps at zero", 0, 50, 50, 4, 0},
		{"penalty dominates clamps at zero", 2, 30, 40, 4, 0},
		{"zero total is zero, not div-by-zero", 0, 0, 0, 4, 0},
		// (1 - 1/3)*10/3 = 2.2222... -> 2.22
		{"rounds to two decimals", 1, 1, 3, 4, 2.22},
		// (3 - 0/3)*10/4 = 7.5
		{"four question session", 3, 0, 4, 4, 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.correct, tt.incorrect, tt.total, tt.alternatives)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScoreInvalidAlternatives(t *testing.T) {
	_, err := Score(1, 0, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidAlternativeCount)

	_, err = Score(1, 0, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidAlternativeCount)
}

func TestScoreNeverNegative(t *testing.T) {
	for incorrect := 0; incorrect <= 100; incorrect += 10 {
		got, err := Score(0, incorrect, 100, 4)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
	}
}
