package tracker

import (
	"slices"

	"pebble/internal/model"
)

type Summary struct {
	Todo                  int `json:"todo"`
	InProgress            int `json:"in_progress"`
	InReview              int `json:"in_review"`
	Done                  int `json:"done"`
	Total                 int `json:"total"`
	CompletionRatePercent int `json:"completion_rate_percent"`
}

// Summarize counts issues per status. The completion rate is the share of DONE
// issues rounded half up to a whole percent, and 0 for an empty set.
func Summarize(issues []model.Issue) Summary {
	var s Summary
	for _, issue := range issues {
		switch issue.Status {
		case model.StatusTodo:
			s.Todo++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusInReview:
			s.InReview++
		case model.StatusDone:
			s.Done++
		}
	}
	s.Total = s.Todo + s.InProgress + s.InReview + s.Done
	if s.Total > 0 {
		s.CompletionRatePercent = (200*s.Done + s.Total) / (2 * s.Total)
	}
	return s
}

// Recent returns up to n issues, newest first.
func Recent(issues []model.Issue, n int) []model.Issue {
	recent := slices.Clone(issues)
	slices.SortStableFunc(recent, func(a, b model.Issue) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}
