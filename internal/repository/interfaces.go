package repository

import (
	"context"

	"pebble/internal/model"

	"github.com/google/uuid"
)

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type ProjectRepositoryInterface interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	GetByKey(ctx context.Context, key string) (*model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
	Count(ctx context.Context) (int64, error)
	// ReserveIssueNumber atomically bumps the project's issue sequence and
	// returns how many keys had been issued before the call.
	ReserveIssueNumber(ctx context.Context, projectID uuid.UUID) (int, error)
}

type LabelRepositoryInterface interface {
	Create(ctx context.Context, label *model.Label) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Label, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Label, error)
	List(ctx context.Context) ([]model.Label, error)
}

type IssueRepositoryInterface interface {
	Create(ctx context.Context, issue *model.Issue) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Issue, error)
	// Update overwrites every column of the issue and replaces its label set.
	Update(ctx context.Context, issue *model.Issue) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Issue, error)
	List(ctx context.Context) ([]model.Issue, error)
	Latest(ctx context.Context, limit int) ([]model.Issue, error)
	// Search matches query case-insensitively against title, description,
	// status and type, newest first.
	Search(ctx context.Context, query string, limit, offset int) ([]model.Issue, error)
	CountSearch(ctx context.Context, query string) (int64, error)
}

// Repositories bundles one implementation of every repository so the two
// backends can be swapped as a unit.
type Repositories struct {
	Users    UserRepositoryInterface
	Projects ProjectRepositoryInterface
	Labels   LabelRepositoryInterface
	Issues   IssueRepositoryInterface
}

var (
	_ UserRepositoryInterface    = (*UserRepository)(nil)
	_ ProjectRepositoryInterface = (*ProjectRepository)(nil)
	_ LabelRepositoryInterface   = (*LabelRepository)(nil)
	_ IssueRepositoryInterface   = (*IssueRepository)(nil)

	_ UserRepositoryInterface    = (*memoryUsers)(nil)
	_ ProjectRepositoryInterface = (*memoryProjects)(nil)
	_ LabelRepositoryInterface   = (*memoryLabels)(nil)
	_ IssueRepositoryInterface   = (*memoryIssues)(nil)
)
