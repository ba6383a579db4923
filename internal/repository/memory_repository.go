package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pebble/internal/model"
)

// memoryDB holds the canonical in-memory collections. All four memory
// repositories share one lock so cross-entity reads stay consistent.
type memoryDB struct {
	mu       sync.RWMutex
	users    []model.User
	projects []model.Project
	labels   []model.Label
	issues   []model.Issue
}

// NewMemoryRepositories returns repositories backed by process memory. They
// behave like the gorm repositories, including unique keys and label
// association cleanup on delete.
func NewMemoryRepositories() Repositories {
	db := &memoryDB{}
	return Repositories{
		Users:    &memoryUsers{db: db},
		Projects: &memoryProjects{db: db},
		Labels:   &memoryLabels{db: db},
		Issues:   &memoryIssues{db: db},
	}
}

type memoryUsers struct{ db *memoryDB }

func (r *memoryUsers) Create(ctx context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == user.Email {
			return ErrDuplicateKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.db.users = append(r.db.users, *user)
	return nil
}

func (r *memoryUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memoryUsers) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if u, ok := r.db.user(id); ok {
		return &u, nil
	}
	return nil, ErrUserNotFound
}

func (r *memoryUsers) List(ctx context.Context) ([]model.User, error) {
	r.db.mu.RLock()
	users := slices.Clone(r.db.users)
	r.db.mu.RUnlock()

	slices.SortStableFunc(users, func(a, b model.User) int { return strings.Compare(a.Name, b.Name) })
	return users, nil
}

type memoryProjects struct{ db *memoryDB }

func (r *memoryProjects) Create(ctx context.Context, project *model.Project) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, p := range r.db.projects {
		if p.Key == project.Key {
			return ErrDuplicateKey
		}
	}
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := time.Now()
	project.CreatedAt, project.UpdatedAt = now, now
	r.db.projects = append(r.db.projects, *project)
	return nil
}

func (r *memoryProjects) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrProjectNotFound
}

func (r *memoryProjects) GetByKey(ctx context.Context, key string) (*model.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.projects {
		if p.Key == key {
			return &p, nil
		}
	}
	return nil, ErrProjectNotFound
}

func (r *memoryProjects) List(ctx context.Context) ([]model.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	projects := slices.Clone(r.db.projects)
	slices.Reverse(projects)
	return projects, nil
}

func (r *memoryProjects) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.projects)), nil
}

func (r *memoryProjects) ReserveIssueNumber(ctx context.Context, projectID uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.projects {
		if r.db.projects[i].ID == projectID {
			issued := r.db.projects[i].IssueSeq
			r.db.projects[i].IssueSeq++
			return issued, nil
		}
	}
	return 0, ErrProjectNotFound
}

type memoryLabels struct{ db *memoryDB }

func (r *memoryLabels) Create(ctx context.Context, label *model.Label) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if label.ID == uuid.Nil {
		label.ID = uuid.New()
	}
	label.CreatedAt = time.Now()
	r.db.labels = append(r.db.labels, *label)
	return nil
}

func (r *memoryLabels) GetByID(ctx context.Context, id uuid.UUID) (*model.Label, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, l := range r.db.labels {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, ErrLabelNotFound
}

func (r *memoryLabels) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Label, error) {
	if len(ids) == 0 {
		return []model.Label{}, nil
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return orderLabels(r.db.labels, ids)
}

func (r *memoryLabels) List(ctx context.Context) ([]model.Label, error) {
	r.db.mu.RLock()
	labels := slices.Clone(r.db.labels)
	r.db.mu.RUnlock()

	slices.SortStableFunc(labels, func(a, b model.Label) int { return strings.Compare(a.Name, b.Name) })
	return labels, nil
}

type memoryIssues struct{ db *memoryDB }

func (r *memoryIssues) Create(ctx context.Context, issue *model.Issue) error {
	if !validIssue(issue) {
		return ErrInvalidValue
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.issues {
		if existing.Key == issue.Key {
			return ErrDuplicateKey
		}
	}
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	now := time.Now()
	issue.CreatedAt, issue.UpdatedAt = now, now

	stored := *issue
	stored.Labels = dedupLabels(issue.Labels)
	stored.Assignee = nil
	stored.Project = nil
	r.db.issues = append(r.db.issues, stored)
	return nil
}

func (r *memoryIssues) GetByID(ctx context.Context, id uuid.UUID) (*model.Issue, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := r.db.issueIndex(id)
	if i < 0 {
		return nil, ErrIssueNotFound
	}
	issue := r.db.hydrate(r.db.issues[i])
	return &issue, nil
}

func (r *memoryIssues) Update(ctx context.Context, issue *model.Issue) error {
	if !validIssue(issue) {
		return ErrInvalidValue
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.db.issueIndex(issue.ID)
	if i < 0 {
		return ErrIssueNotFound
	}

	// Key, project and creation time are immutable
	stored := r.db.issues[i]
	stored.Title = issue.Title
	stored.Description = issue.Description
	stored.Type = issue.Type
	stored.Priority = issue.Priority
	stored.Status = issue.Status
	stored.AssigneeID = issue.AssigneeID
	stored.UpdatedAt = issue.UpdatedAt
	stored.Labels = dedupLabels(issue.Labels)
	r.db.issues[i] = stored
	return nil
}

func (r *memoryIssues) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.db.issueIndex(id)
	if i < 0 {
		return ErrIssueNotFound
	}
	// Label associations live on the issue record and go with it
	r.db.issues = slices.Delete(r.db.issues, i, i+1)
	return nil
}

func (r *memoryIssues) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Issue, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	issues := []model.Issue{}
	for _, issue := range r.db.issues {
		if issue.ProjectID == projectID {
			issues = append(issues, r.db.hydrate(issue))
		}
	}
	return issues, nil
}

func (r *memoryIssues) List(ctx context.Context) ([]model.Issue, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	issues := make([]model.Issue, len(r.db.issues))
	for n, issue := range r.db.issues {
		issue.Labels = slices.Clone(issue.Labels)
		issues[n] = issue
	}
	return issues, nil
}

func (r *memoryIssues) Latest(ctx context.Context, limit int) ([]model.Issue, error) {
	return r.Search(ctx, "", limit, 0)
}

func (r *memoryIssues) Search(ctx context.Context, query string, limit, offset int) ([]model.Issue, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	matches := r.db.matching(query)
	if offset >= len(matches) {
		return []model.Issue{}, nil
	}
	matches = matches[offset:]
	if limit >= 0 && limit < len(matches) {
		matches = matches[:limit]
	}

	issues := make([]model.Issue, len(matches))
	for n, issue := range matches {
		issues[n] = issue
		issues[n].Labels = nil
		if issue.AssigneeID != nil {
			if u, ok := r.db.user(*issue.AssigneeID); ok {
				issues[n].Assignee = &u
			}
		}
	}
	return issues, nil
}

func (r *memoryIssues) CountSearch(ctx context.Context, query string) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.matching(query))), nil
}

// matching returns issues matching query, newest first. Callers hold the lock.
func (db *memoryDB) matching(query string) []model.Issue {
	query = strings.ToLower(query)
	var matches []model.Issue
	for n := len(db.issues) - 1; n >= 0; n-- {
		issue := db.issues[n]
		description := ""
		if issue.Description != nil {
			description = *issue.Description
		}
		if strings.Contains(strings.ToLower(issue.Title), query) ||
			strings.Contains(strings.ToLower(description), query) ||
			strings.Contains(strings.ToLower(string(issue.Status)), query) ||
			strings.Contains(strings.ToLower(string(issue.Type)), query) {
			matches = append(matches, issue)
		}
	}
	return matches
}

func (db *memoryDB) issueIndex(id uuid.UUID) int {
	return slices.IndexFunc(db.issues, func(i model.Issue) bool { return i.ID == id })
}

func (db *memoryDB) user(id uuid.UUID) (model.User, bool) {
	for _, u := range db.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// hydrate returns a detached copy of the issue with its assignee resolved.
func (db *memoryDB) hydrate(issue model.Issue) model.Issue {
	issue.Labels = slices.Clone(issue.Labels)
	if issue.Labels == nil {
		issue.Labels = []model.Label{}
	}
	issue.Assignee = nil
	if issue.AssigneeID != nil {
		if u, ok := db.user(*issue.AssigneeID); ok {
			issue.Assignee = &u
		}
	}
	return issue
}

// validIssue mirrors the CHECK constraints of the issues table.
func validIssue(issue *model.Issue) bool {
	return issue.Type.Valid() && issue.Priority.Valid() && issue.Status.Valid()
}

func dedupLabels(labels []model.Label) []model.Label {
	out := make([]model.Label, 0, len(labels))
	seen := make(map[uuid.UUID]bool, len(labels))
	for _, l := range labels {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		out = append(out, l)
	}
	return out
}
