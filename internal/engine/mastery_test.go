package engine

import (
	"testing"

	"github.com/prepkit/exam-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionResult(id, category string, correct bool) QuestionResult {
	return QuestionResult{
		QuestionID:          id,
		Category:            category,
		DisplayOrder:        []int{2, 0, 3, 1},
		DisplayCorrectIndex: 1,
		Correct:             correct,
	}
}

func TestAggregateInsertsNewCategories(t *testing.T) {
	results := []QuestionResult{
		questionResult("q1", "Signals", true),
		questionResult("q2", "Signals", false),
		questionResult("q3", "Rules", true),
	}

	out := Aggregate(nil, results, "user-1", models.TestKindStandard)

	assert.Empty(t, out.Updates)
	require.Len(t, out.Inserts, 2)

	signals := out.Inserts[0]
	assert.Equal(t, "Signals", signals.Category)
	assert.Equal(t, "user-1", signals.UserID)
	assert.Equal(t, models.TestKindStandard, signals.TestKind)
	assert.Equal(t, 2, signals.QuestionsSeen)
	assert.Equal(t, 1, signals.QuestionsCorrect)
	assert.Equal(t, 50, signals.MasteryLevel)

	rules := out.Inserts[1]
	assert.Equal(t, "Rules", rules.Category)
	assert.Equal(t, 1, rules.QuestionsSeen)
	assert.Equal(t, 100, rules.MasteryLevel)
}

func TestAggregateUpdatesExisting(t *testing.T) {
	existing := []models.CategoryStat{
		{UserID: "user-1", Category: "Signals", TestKind: models.TestKindStandard,
			QuestionsSeen: 10, QuestionsCorrect: 6, MasteryLevel: 60},
	}
	results := []QuestionResult{
		questionResult("q1", "Signals", true),
		questionResult("q2", "Signals", true),
	}

	out := Aggregate(existing, results, "user-1", models.TestKindStandard)

	assert.Empty(t, out.Inserts)
	require.Len(t, out.Updates, 1)

	change := out.Updates[0]
	assert.Equal(t, 2, change.SeenDelta)
	assert.Equal(t, 2, change.CorrectDelta)
	assert.Equal(t, 12, change.Stat.QuestionsSeen)
	assert.Equal(t, 8, change.Stat.QuestionsCorrect)
	// Mastery recomputed from new totals: round(8/12*100) = 67.
	assert.Equal(t, 67, change.Stat.MasteryLevel)
}

func TestAggregateAdditivity(t *testing.T) {
	// Two sequential attempts: the first inserts, the second updates, and
	// the final counters equal the simple sum across both attempts.
	first := Aggregate(nil, []QuestionResult{
		questionResult("q1", "Signals", true),
		questionResult("q2", "Rules", false),
	}, "user-1", models.TestKindStandard)

	require.Len(t, first.Inserts, 2)

	second := Aggregate(first.Inserts, []QuestionResult{
		questionResult("q3", "Signals", false),
		questionResult("q4", "Rules", true),
	}, "user-1", models.TestKindStandard)

	assert.Empty(t, second.Inserts)
	require.Len(t, second.Updates, 2)

	for _, change := range second.Updates {
		assert.Equal(t, 2, change.Stat.QuestionsSeen)
		assert.Equal(t, 1, change.Stat.QuestionsCorrect)
		assert.Equal(t, 50, change.Stat.MasteryLevel)
	}
}

func TestAggregateDisjointAttempts(t *testing.T) {
	first := Aggregate(nil, []QuestionResult{
		questionResult("q1", "Signals", true),
	}, "user-1", models.TestKindStandard)

	second := Aggregate(first.Inserts, []QuestionResult{
		questionResult("q2", "Rules", true),
	}, "user-1", models.TestKindStandard)

	// Disjoint category sets: the existing Signals row is untouched, Rules
	// is a fresh insert.
	assert.Empty(t, second.Updates)
	require.Len(t, second.Inserts, 1)
	assert.Equal(t, "Rules", second.Inserts[0].Category)
}

func TestClassify(t *testing.T) {
	stats := []models.CategoryStat{
		{Category: "Signals", QuestionsSeen: 10, MasteryLevel: 80},
		{Category: "Rules", QuestionsSeen: 10, MasteryLevel: 40},
		{Category: "Safety", QuestionsSeen: 10, MasteryLevel: 90},
		{Category: "Mechanics", QuestionsSeen: 10, MasteryLevel: 40},
	}

	c := Classify(stats, 2, 2, 1)

	require.Len(t, c.Strengths, 2)
	assert.Equal(t, "Safety", c.Strengths[0].Category)
	assert.Equal(t, "Signals", c.Strengths[1].Category)

	// Rules and Mechanics tie at 40; the original ordering breaks the tie.
	require.Len(t, c.Improvements, 2)
	assert.Equal(t, "Rules", c.Improvements[0].Category)
	assert.Equal(t, "Mechanics", c.Improvements[1].Category)
}

func TestClassifySignificanceThreshold(t *testing.T) {
	stats := []models.CategoryStat{
		{Category: "Signals", QuestionsSeen: 1, MasteryLevel: 100},
		{Category: "Rules", QuestionsSeen: 20, MasteryLevel: 50},
	}

	c := Classify(stats, 3, 3, 5)

	// Signals has too few seen questions to be significant.
	require.Len(t, c.Strengths, 1)
	assert.Equal(t, "Rules", c.Strengths[0].Category)
	require.Len(t, c.Improvements, 1)
	assert.Equal(t, "Rules", c.Improvements[0].Category)
}

func TestClassifyFewerCategoriesThanRequested(t *testing.T) {
	stats := []models.CategoryStat{
		{Category: "Signals", QuestionsSeen: 5, MasteryLevel: 70},
	}

	c := Classify(stats, 3, 3, 1)

	assert.Len(t, c.Strengths, 1)
	assert.Len(t, c.Improvements, 1)
}
