package engine

import (
	"math"
	"sort"

	"github.com/prepkit/exam-engine/internal/models"
)

// StatChange is one category whose lifetime counters grow by a completed
// attempt. The deltas are carried separately from the recomputed row so the
// storage layer can apply them as atomic increments instead of a
// read-modify-write.
type StatChange struct {
	Stat         models.CategoryStat
	SeenDelta    int
	CorrectDelta int
}

// AggregateResult splits a completed attempt's category deltas into updates
// of existing rows and inserts of first-seen categories.
type AggregateResult struct {
	Updates []StatChange
	Inserts []models.CategoryStat
}

// Aggregate folds a completed attempt's per-question results into per-category
// counters. It is a pure computation: the caller fetches the existing stats
// snapshot and performs the storage write.
//
// Correctness per question comes from QuestionResult, which was judged against
// the display-correct index captured at attempt time; comparing the recorded
// display-order answer to the unshuffled original index here would miscount.
func Aggregate(existing []models.CategoryStat, results []QuestionResult, userID string, kind models.TestKind) AggregateResult {
	type delta struct {
		seen, correct int
	}
	deltas := make(map[string]*delta)
	order := make([]string, 0)

	for _, qr := range results {
		d, ok := deltas[qr.Category]
		if !ok {
			d = &delta{}
			deltas[qr.Category] = d
			order = append(order, qr.Category)
		}
		d.seen++
		if qr.Correct {
			d.correct++
		}
	}

	byCategory := make(map[string]models.CategoryStat, len(existing))
	for _, stat := range existing {
		byCategory[stat.Category] = stat
	}

	var out AggregateResult
	for _, category := range order {
		d := deltas[category]
		if stat, ok := byCategory[category]; ok {
			stat.QuestionsSeen += d.seen
			stat.QuestionsCorrect += d.correct
			stat.MasteryLevel = masteryLevel(stat.QuestionsCorrect, stat.QuestionsSeen)
			out.Updates = append(out.Updates, StatChange{
				Stat:         stat,
				SeenDelta:    d.seen,
				CorrectDelta: d.correct,
			})
		} else {
			out.Inserts = append(out.Inserts, models.CategoryStat{
				UserID:           userID,
				Category:         category,
				TestKind:         kind,
				QuestionsSeen:    d.seen,
				QuestionsCorrect: d.correct,
				MasteryLevel:     masteryLevel(d.correct, d.seen),
			})
		}
	}
	return out
}

func masteryLevel(correct, seen int) int {
	if seen == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(seen) * 100))
}

// Classification splits a user's categories into strengths (highest mastery)
// and improvement areas (lowest mastery).
type Classification struct {
	Strengths    []models.CategoryStat `json:"strengths"`
	Improvements []models.CategoryStat `json:"improvements"`
}

// Classify is the read-side companion of Aggregate: a stateless computation
// over the full set of a user's category stats. Categories with fewer than
// minSeen questions are not significant enough to classify. Ties keep the
// original ordering.
func Classify(stats []models.CategoryStat, topN, bottomM, minSeen int) Classification {
	if minSeen < 1 {
		minSeen = 1
	}

	significant := make([]models.CategoryStat, 0, len(stats))
	for _, stat := range stats {
		if stat.QuestionsSeen >= minSeen {
			significant = append(significant, stat)
		}
	}

	strengths := make([]models.CategoryStat, len(significant))
	copy(strengths, significant)
	sort.SliceStable(strengths, func(i, j int) bool {
		return strengths[i].MasteryLevel > strengths[j].MasteryLevel
	})
	if len(strengths) > topN {
		strengths = strengths[:topN]
	}

	improvements := make([]models.CategoryStat, len(significant))
	copy(improvements, significant)
	sort.SliceStable(improvements, func(i, j int) bool {
		return improvements[i].MasteryLevel < improvements[j].MasteryLevel
	})
	if len(improvements) > bottomM {
		improvements = improvements[:bottomM]
	}

	return Classification{Strengths: strengths, Improvements: improvements}
}
