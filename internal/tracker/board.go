package tracker

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"pebble/internal/model"
)

// Column is one status lane of the board.
type Column struct {
	Status model.Status  `json:"status"`
	Title  string        `json:"title"`
	Count  int           `json:"count"`
	Issues []model.Issue `json:"issues"`
}

var columnTitles = map[model.Status]string{
	model.StatusTodo:       "To Do",
	model.StatusInProgress: "In Progress",
	model.StatusInReview:   "In Review",
	model.StatusDone:       "Done",
}

// GroupByStatus partitions issues into the four fixed columns, in workflow
// order. Every issue with a known status lands in exactly one column.
func GroupByStatus(issues []model.Issue) []Column {
	columns := make([]Column, len(model.Statuses))
	for i, status := range model.Statuses {
		columns[i] = Column{Status: status, Title: columnTitles[status], Issues: []model.Issue{}}
	}
	for _, issue := range issues {
		if i := slices.Index(model.Statuses, issue.Status); i >= 0 {
			columns[i].Issues = append(columns[i].Issues, issue)
		}
	}
	for i := range columns {
		columns[i].Count = len(columns[i].Issues)
	}
	return columns
}

// IssueUpdater is the part of the Store the board writes through.
type IssueUpdater interface {
	UpdateByID(ctx context.Context, id uuid.UUID, update IssueUpdate) (*model.Issue, error)
}

// Board holds one project's issue set and at most one drag in progress.
type Board struct {
	store  IssueUpdater
	render func([]Column)

	mu       sync.Mutex
	issues   []model.Issue
	dragging *uuid.UUID
}

// NewBoard builds a board over issues. render, if not nil, is called with the
// fresh columns after every change to the issue set.
func NewBoard(store IssueUpdater, issues []model.Issue, render func([]Column)) *Board {
	return &Board{store: store, issues: slices.Clone(issues), render: render}
}

// BeginDrag records issue as the drag source, replacing any earlier one.
func (b *Board) BeginDrag(issue model.Issue) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := issue.ID
	b.dragging = &id
}

// Dragging reports the id of the issue being dragged.
func (b *Board) Dragging() (uuid.UUID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dragging == nil {
		return uuid.Nil, false
	}
	return *b.dragging, true
}

// DropOn moves the dragged issue to status. Without a drag in progress it does
// nothing. The drag source is cleared whether or not the store accepts the
// change; on failure the issue set is left as it was.
func (b *Board) DropOn(ctx context.Context, status model.Status) error {
	b.mu.Lock()
	dragged := b.dragging
	b.dragging = nil
	b.mu.Unlock()

	if dragged == nil {
		return nil
	}

	updated, err := b.store.UpdateByID(ctx, *dragged, IssueUpdate{Status: &status})
	if err != nil {
		return err
	}

	b.mu.Lock()
	if i := slices.IndexFunc(b.issues, func(issue model.Issue) bool { return issue.ID == updated.ID }); i >= 0 {
		b.issues[i] = *updated
	} else {
		b.issues = append(b.issues, *updated)
	}
	columns := GroupByStatus(b.issues)
	b.mu.Unlock()

	b.emit(columns)
	return nil
}

// SetIssues replaces the issue set and re-renders. Its signature lets a board
// subscribe to Store changes directly.
func (b *Board) SetIssues(_ uuid.UUID, issues []model.Issue) {
	b.mu.Lock()
	b.issues = slices.Clone(issues)
	columns := GroupByStatus(b.issues)
	b.mu.Unlock()

	b.emit(columns)
}

func (b *Board) Columns() []Column {
	b.mu.Lock()
	defer b.mu.Unlock()
	return GroupByStatus(b.issues)
}

func (b *Board) Issues() []model.Issue {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.issues)
}

func (b *Board) emit(columns []Column) {
	if b.render != nil {
		b.render(columns)
	}
}
