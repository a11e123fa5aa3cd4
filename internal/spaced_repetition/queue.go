package spaced_repetition

import (
	"sort"
	"time"
)

// DueOrder filters items down to those due on now's day and sorts them by
// review priority:
//  1. questions that have never been reviewed
//  2. questions with the lowest ease factor (hardest first)
//  3. questions that are the most overdue
//
// Ties keep their input order. A limit <= 0 returns every due item.
func DueOrder[T any](items []T, state func(T) State, now time.Time, limit int) []T {
	due := make([]T, 0, len(items))
	for _, item := range items {
		if IsDueForReview(state(item).NextReviewDate, now) {
			due = append(due, item)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := state(due[i]), state(due[j])

		if (a.NextReviewDate == nil) != (b.NextReviewDate == nil) {
			return a.NextReviewDate == nil
		}
		if a.EaseFactor != b.EaseFactor {
			return a.EaseFactor < b.EaseFactor
		}
		if a.NextReviewDate != nil && b.NextReviewDate != nil {
			return a.NextReviewDate.Before(*b.NextReviewDate)
		}
		return false
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}
