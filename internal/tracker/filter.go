package tracker

import (
	"cmp"
	"slices"

	"pebble/internal/model"
)

// FilterAll disables a filter dimension.
const FilterAll = "all"

// Filter narrows a backlog. Empty or "all" fields match everything.
type Filter struct {
	Status   string `form:"status"`
	Priority string `form:"priority"`
}

// Select returns the issues matching f, highest priority first and, within a
// priority, earliest workflow status first. Ties keep their input order. The
// input slice is not modified.
func Select(issues []model.Issue, f Filter) []model.Issue {
	selected := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		if matches(f.Status, string(issue.Status)) && matches(f.Priority, string(issue.Priority)) {
			selected = append(selected, issue)
		}
	}

	slices.SortStableFunc(selected, func(a, b model.Issue) int {
		if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.Status.Rank(), b.Status.Rank())
	})
	return selected
}

func matches(want, got string) bool {
	return want == "" || want == FilterAll || want == got
}
