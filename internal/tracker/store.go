package tracker

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"pebble/internal/model"
	"pebble/internal/repository"
)

// Subscriber receives the full issue set of a project after every successful
// mutation in that project.
type Subscriber func(projectID uuid.UUID, issues []model.Issue)

// Store is the single owner of the canonical issue and project data. Views
// read copies from it and change issues only through its methods.
type Store struct {
	users    repository.UserRepositoryInterface
	projects repository.ProjectRepositoryInterface
	labels   repository.LabelRepositoryInterface
	issues   repository.IssueRepositoryInterface

	logger   *slog.Logger
	validate *validator.Validate
	randIntN func(n int) int

	projectCreateMu sync.Mutex
	projectLocks    sync.Map // uuid.UUID -> *sync.Mutex

	subMu   sync.RWMutex
	subs    map[uuid.UUID]map[int]Subscriber
	nextSub int
}

type Option func(*Store)

// WithLogger sets the logger used for storage failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithRandom replaces the random source used when deriving project keys.
func WithRandom(intN func(n int) int) Option {
	return func(s *Store) { s.randIntN = intN }
}

func NewStore(repos repository.Repositories, opts ...Option) *Store {
	s := &Store{
		users:    repos.Users,
		projects: repos.Projects,
		labels:   repos.Labels,
		issues:   repos.Issues,
		logger:   slog.Default(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		randIntN: rand.IntN,
		subs:     make(map[uuid.UUID]map[int]Subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueDraft is the input for Create. Zero Type, Priority and Status fall back
// to TASK, MEDIUM and TODO.
type IssueDraft struct {
	ProjectID   uuid.UUID `validate:"required"`
	Title       string    `validate:"required,max=255"`
	Description *string
	Type        model.IssueType
	Priority    model.Priority
	Status      model.Status
	AssigneeID  *uuid.UUID
	LabelIDs    []uuid.UUID
}

// IssueUpdate lists the fields to change. Nil fields keep their current value.
// An empty Description clears it; ClearAssignee unassigns the issue.
type IssueUpdate struct {
	Title         *string
	Description   *string
	Type          *model.IssueType
	Priority      *model.Priority
	Status        *model.Status
	AssigneeID    *uuid.UUID
	ClearAssignee bool
	LabelIDs      *[]uuid.UUID
}

// Create validates the draft, assigns the id and key and stores the issue.
func (s *Store) Create(ctx context.Context, draft IssueDraft) (*model.Issue, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Type == "" {
		draft.Type = model.TypeTask
	}
	if draft.Priority == "" {
		draft.Priority = model.PriorityMedium
	}
	if draft.Status == "" {
		draft.Status = model.StatusTodo
	}
	if err := s.validate.Struct(draft); err != nil {
		return nil, fromValidator(err)
	}
	if err := validateEnums(&draft.Type, &draft.Priority, &draft.Status); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, draft.ProjectID)
	if err != nil {
		return nil, s.fail("load project", draft.ProjectID.String(), err)
	}
	if err := s.checkAssignee(ctx, draft.AssigneeID); err != nil {
		return nil, err
	}
	labels, err := s.resolveLabels(ctx, draft.LabelIDs)
	if err != nil {
		return nil, err
	}

	issue := &model.Issue{
		Title:       draft.Title,
		Description: normalizeDescription(draft.Description),
		Type:        draft.Type,
		Priority:    draft.Priority,
		Status:      draft.Status,
		AssigneeID:  draft.AssigneeID,
		ProjectID:   project.ID,
		Labels:      labels,
	}
	if err := s.insertWithKey(ctx, project, issue); err != nil {
		return nil, err
	}

	s.notify(ctx, project.ID)
	return s.Get(ctx, issue.ID)
}

// insertWithKey allocates the next key and inserts the issue while holding
// the project's writer lock, so no two creates in a project race on a key.
func (s *Store) insertWithKey(ctx context.Context, project *model.Project, issue *model.Issue) error {
	mu := s.projectLock(project.ID)
	mu.Lock()
	defer mu.Unlock()

	issued, err := s.projects.ReserveIssueNumber(ctx, project.ID)
	if err != nil {
		return s.fail("reserve issue number", project.ID.String(), err)
	}
	issue.Key = NextKey(project.Key, issued)

	if err := s.issues.Create(ctx, issue); err != nil {
		return s.fail("create issue", issue.Key, err)
	}
	return nil
}

// Get returns one issue with its labels and assignee.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*model.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("load issue", id.String(), err)
	}
	return issue, nil
}

// UpdateByID merges the update into the stored issue. Last write wins.
func (s *Store) UpdateByID(ctx context.Context, id uuid.UUID, update IssueUpdate) (*model.Issue, error) {
	if err := validateUpdate(update); err != nil {
		return nil, err
	}

	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("load issue", id.String(), err)
	}

	if update.Title != nil {
		issue.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		issue.Description = normalizeDescription(update.Description)
	}
	if update.Type != nil {
		issue.Type = *update.Type
	}
	if update.Priority != nil {
		issue.Priority = *update.Priority
	}
	if update.Status != nil {
		issue.Status = *update.Status
	}
	if update.ClearAssignee {
		issue.AssigneeID = nil
	} else if update.AssigneeID != nil {
		if err := s.checkAssignee(ctx, update.AssigneeID); err != nil {
			return nil, err
		}
		assignee := *update.AssigneeID
		issue.AssigneeID = &assignee
	}
	if update.LabelIDs != nil {
		labels, err := s.resolveLabels(ctx, *update.LabelIDs)
		if err != nil {
			return nil, err
		}
		issue.Labels = labels
	}
	issue.Assignee = nil
	issue.UpdatedAt = time.Now()

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, s.fail("update issue", id.String(), err)
	}

	s.notify(ctx, issue.ProjectID)
	return s.Get(ctx, id)
}

// DeleteByID removes the issue and its label associations.
func (s *Store) DeleteByID(ctx context.Context, id uuid.UUID) error {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return s.fail("load issue", id.String(), err)
	}
	if err := s.issues.Delete(ctx, id); err != nil {
		return s.fail("delete issue", id.String(), err)
	}

	s.notify(ctx, issue.ProjectID)
	return nil
}

// ListByProject returns every issue of the project. Order is unspecified.
func (s *Store) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Issue, error) {
	issues, err := s.issues.ListByProject(ctx, projectID)
	if err != nil {
		return nil, s.fail("list issues", projectID.String(), err)
	}
	return issues, nil
}

// Subscribe registers fn for the project's mutations and returns a function
// that removes it again.
func (s *Store) Subscribe(projectID uuid.UUID, fn Subscriber) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	if s.subs[projectID] == nil {
		s.subs[projectID] = make(map[int]Subscriber)
	}
	s.subs[projectID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs[projectID], id)
			if len(s.subs[projectID]) == 0 {
				delete(s.subs, projectID)
			}
		})
	}
}

func (s *Store) notify(ctx context.Context, projectID uuid.UUID) {
	s.subMu.RLock()
	subscribers := make([]Subscriber, 0, len(s.subs[projectID]))
	for _, fn := range s.subs[projectID] {
		subscribers = append(subscribers, fn)
	}
	s.subMu.RUnlock()

	if len(subscribers) == 0 {
		return
	}

	issues, err := s.issues.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("refreshing subscribers failed", "project_id", projectID, "error", err)
		return
	}
	for _, fn := range subscribers {
		fn(projectID, slices.Clone(issues))
	}
}

func (s *Store) projectLock(projectID uuid.UUID) *sync.Mutex {
	mu, _ := s.projectLocks.LoadOrStore(projectID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *Store) checkAssignee(ctx context.Context, assigneeID *uuid.UUID) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := s.users.GetByID(ctx, *assigneeID); err != nil {
		return s.fail("load assignee", assigneeID.String(), err)
	}
	return nil
}

func (s *Store) resolveLabels(ctx context.Context, ids []uuid.UUID) ([]model.Label, error) {
	labels, err := s.labels.GetByIDs(ctx, ids)
	if err != nil {
		refs := make([]string, len(ids))
		for i, id := range ids {
			refs[i] = id.String()
		}
		return nil, s.fail("load labels", strings.Join(refs, ","), err)
	}
	return labels, nil
}

// fail turns a repository error into NotFoundError or a logged StorageError.
func (s *Store) fail(op, id string, err error) error {
	if nf := asNotFound(err, id); nf != nil {
		return nf
	}
	if inv := asInvalid(err); inv != nil {
		return inv
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Error("storage operation failed", "op", op, "id", id, "error", err)
	return &StorageError{Op: op, Err: err}
}

func validateEnums(t *model.IssueType, p *model.Priority, st *model.Status) error {
	if t != nil && !t.Valid() {
		return invalid("type", "%q is not one of TASK, BUG, SUBTASK", *t)
	}
	if p != nil && !p.Valid() {
		return invalid("priority", "%q is not one of LOWEST, LOW, MEDIUM, HIGH, HIGHEST", *p)
	}
	if st != nil && !st.Valid() {
		return invalid("status", "%q is not one of TODO, IN_PROGRESS, IN_REVIEW, DONE", *st)
	}
	return nil
}

func validateUpdate(update IssueUpdate) error {
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return invalid("title", "is required")
		}
		if utf8.RuneCountInString(title) > 255 {
			return invalid("title", "must be at most 255 characters")
		}
	}
	if update.ClearAssignee && update.AssigneeID != nil {
		return invalid("assignee_id", "cannot both set and clear the assignee")
	}
	return validateEnums(update.Type, update.Priority, update.Status)
}

func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
