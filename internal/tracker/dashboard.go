package tracker

import (
	"context"

	"pebble/internal/model"
)

// ItemsPerPage is the page size of issue search results.
const ItemsPerPage = 6

// Cards are the headline counts of the dashboard.
type Cards struct {
	Projects  int64 `json:"projects"`
	Issues    int64 `json:"issues"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

func (s *Store) Cards(ctx context.Context) (Cards, error) {
	projects, err := s.projects.Count(ctx)
	if err != nil {
		return Cards{}, s.fail("count projects", "", err)
	}
	issues, err := s.issues.List(ctx)
	if err != nil {
		return Cards{}, s.fail("list issues", "", err)
	}

	cards := Cards{Projects: projects, Issues: int64(len(issues))}
	for _, issue := range issues {
		if issue.Status == model.StatusDone {
			cards.Completed++
		}
	}
	cards.Pending = cards.Issues - cards.Completed
	return cards, nil
}

// LatestIssues returns the newest issues across all projects.
func (s *Store) LatestIssues(ctx context.Context, limit int) ([]model.Issue, error) {
	issues, err := s.issues.Latest(ctx, limit)
	if err != nil {
		return nil, s.fail("latest issues", "", err)
	}
	return issues, nil
}

type SearchPage struct {
	Issues     []model.Issue `json:"issues"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int64         `json:"total"`
}

// SearchIssues matches query case-insensitively against title, description,
// status and type. Pages start at 1 and hold ItemsPerPage issues, newest first.
func (s *Store) SearchIssues(ctx context.Context, query string, page int) (*SearchPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.issues.CountSearch(ctx, query)
	if err != nil {
		return nil, s.fail("count search", query, err)
	}
	issues, err := s.issues.Search(ctx, query, ItemsPerPage, (page-1)*ItemsPerPage)
	if err != nil {
		return nil, s.fail("search issues", query, err)
	}
	if issues == nil {
		issues = []model.Issue{}
	}

	return &SearchPage{
		Issues:     issues,
		Page:       page,
		TotalPages: int((total + ItemsPerPage - 1) / ItemsPerPage),
		Total:      total,
	}, nil
}

// ProjectOverview pairs a project with its status counts.
type ProjectOverview struct {
	model.Project
	Summary Summary `json:"summary"`
}

func (s *Store) ProjectOverviews(ctx context.Context) ([]ProjectOverview, error) {
	projects, err := s.Projects(ctx)
	if err != nil {
		return nil, err
	}

	overviews := make([]ProjectOverview, 0, len(projects))
	for _, project := range projects {
		issues, err := s.ListByProject(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, ProjectOverview{Project: project, Summary: Summarize(issues)})
	}
	return overviews, nil
}
