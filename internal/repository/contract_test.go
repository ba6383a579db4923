package repository_test

import (
	"context"
	"testing"

	"pebble/internal/database"
	"pebble/internal/model"
	"pebble/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// backends returns a fresh set of repositories per backend. Both must pass
// the same behavioural tests.
func backends(t *testing.T) map[string]func(t *testing.T) repository.Repositories {
	t.Helper()
	return map[string]func(t *testing.T) repository.Repositories{
		"memory": func(t *testing.T) repository.Repositories {
			return repository.NewMemoryRepositories()
		},
		"sqlite": func(t *testing.T) repository.Repositories {
			db, err := database.OpenSQLite(":memory:", &gorm.Config{
				TranslateError: true,
				Logger:         logger.Discard,
			})
			require.NoError(t, err)
			t.Cleanup(func() {
				if sqlDB, err := db.DB(); err == nil {
					sqlDB.Close()
				}
			})
			require.NoError(t, database.AutoMigrate(db))
			return database.Repositories(db)
		},
	}
}

type fixture struct {
	repos   repository.Repositories
	user    *model.User
	project *model.Project
	labels  []model.Label
}

func newFixture(t *testing.T, repos repository.Repositories) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{repos: repos}
	f.user = &model.User{Name: "Ana", Email: "ana@example.com", HashedPassword: "x"}
	require.NoError(t, repos.Users.Create(ctx, f.user))
	f.project = &model.Project{Name: "Pebble", Key: "PBL"}
	require.NoError(t, repos.Projects.Create(ctx, f.project))
	for _, name := range []string{"frontend", "backend"} {
		label := &model.Label{Name: name, Color: "#10B981"}
		require.NoError(t, repos.Labels.Create(ctx, label))
		f.labels = append(f.labels, *label)
	}
	return f
}

func (f *fixture) issue(t *testing.T, key, title string, labels ...model.Label) *model.Issue {
	t.Helper()
	issue := &model.Issue{
		Key:       key,
		Title:     title,
		Type:      model.TypeTask,
		Priority:  model.PriorityMedium,
		Status:    model.StatusTodo,
		ProjectID: f.project.ID,
		Labels:    labels,
	}
	require.NoError(t, f.repos.Issues.Create(context.Background(), issue))
	return issue
}

func TestRepositories_IssueLifecycle(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, open(t))

			created := f.issue(t, "PBL-1", "Login page", f.labels[0])
			assert.NotEqual(t, uuid.Nil, created.ID)

			got, err := f.repos.Issues.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "PBL-1", got.Key)
			assert.Equal(t, []uuid.UUID{f.labels[0].ID}, got.LabelIDs())

			got.Status = model.StatusInProgress
			got.AssigneeID = &f.user.ID
			got.Labels = []model.Label{f.labels[1]}
			require.NoError(t, f.repos.Issues.Update(ctx, got))

			updated, err := f.repos.Issues.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, model.StatusInProgress, updated.Status)
			assert.Equal(t, []uuid.UUID{f.labels[1].ID}, updated.LabelIDs())
			require.NotNil(t, updated.Assignee)
			assert.Equal(t, "Ana", updated.Assignee.Name)

			require.NoError(t, f.repos.Issues.Delete(ctx, created.ID))
			_, err = f.repos.Issues.GetByID(ctx, created.ID)
			assert.ErrorIs(t, err, repository.ErrIssueNotFound)
			assert.ErrorIs(t, f.repos.Issues.Delete(ctx, created.ID), repository.ErrIssueNotFound)
		})
	}
}

func TestRepositories_ListByProject(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, open(t))

			other := &model.Project{Name: "Other", Key: "OTH"}
			require.NoError(t, f.repos.Projects.Create(ctx, other))

			f.issue(t, "PBL-1", "first")
			f.issue(t, "PBL-2", "second", f.labels...)
			require.NoError(t, f.repos.Issues.Create(ctx, &model.Issue{
				Key: "OTH-1", Title: "elsewhere", Type: model.TypeBug,
				Priority: model.PriorityLow, Status: model.StatusDone, ProjectID: other.ID,
			}))

			issues, err := f.repos.Issues.ListByProject(ctx, f.project.ID)
			require.NoError(t, err)
			require.Len(t, issues, 2)
			keys := []string{issues[0].Key, issues[1].Key}
			assert.ElementsMatch(t, []string{"PBL-1", "PBL-2"}, keys)

			all, err := f.repos.Issues.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 3)

			none, err := f.repos.Issues.ListByProject(ctx, uuid.New())
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestRepositories_UniqueKeys(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, open(t))
			f.issue(t, "PBL-1", "first")

			err := f.repos.Issues.Create(ctx, &model.Issue{
				Key: "PBL-1", Title: "dup", Type: model.TypeTask,
				Priority: model.PriorityLow, Status: model.StatusTodo, ProjectID: f.project.ID,
			})
			assert.ErrorIs(t, err, repository.ErrDuplicateKey)

			err = f.repos.Projects.Create(ctx, &model.Project{Name: "Again", Key: "PBL"})
			assert.ErrorIs(t, err, repository.ErrDuplicateKey)

			err = f.repos.Users.Create(ctx, &model.User{Name: "Other Ana", Email: "ana@example.com", HashedPassword: "y"})
			assert.ErrorIs(t, err, repository.ErrDuplicateKey)
		})
	}
}

func TestRepositories_RejectUnknownEnumValues(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, open(t))

			err := f.repos.Issues.Create(ctx, &model.Issue{
				Key: "PBL-1", Title: "epic", Type: "EPIC",
				Priority: model.PriorityLow, Status: model.StatusTodo, ProjectID: f.project.ID,
			})
			assert.ErrorIs(t, err, repository.ErrInvalidValue)

			issue := f.issue(t, "PBL-2", "valid")
			issue.Status = "BOGUS"
			err = f.repos.Issues.Update(ctx, issue)
			assert.ErrorIs(t, err, repository.ErrInvalidValue)

			stored, err := f.repos.Issues.GetByID(ctx, issue.ID)
			require.NoError(t, err)
			assert.Equal(t, model.StatusTodo, stored.Status)

			issue.Status = model.StatusDone
			issue.Priority = "URGENT"
			assert.ErrorIs(t, f.repos.Issues.Update(ctx, issue), repository.ErrInvalidValue)
		})
	}
}

func TestRepositories_ReserveIssueNumber(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, open(t))

			for want := 0; want < 3; want++ {
				issued, err := f.repos.Projects.ReserveIssueNumber(ctx, f.project.ID)
				require.NoError(t, err)
				assert.Equal(t, want, issued)
			}

			_, err := f.repos.Projects.ReserveIssueNumber(ctx, uuid.New())
			assert.ErrorIs(t, err, repository.ErrProjectNotFound)

			byKey, err := f.repos.Projects.GetByKey(ctx, "PBL")
			require.NoError(t, err)
			assert.Equal(t, f.project.ID, byKey.ID)

			_, err = f.repos.Projects.GetByKey(ctx, "NOPE")
			assert.ErrorIs(t, err, repository.ErrProjectNotFound)
		})
	}
}

func TestRepositories_LabelsByIDs(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, open(t))

			labels, err := f.repos.Labels.GetByIDs(ctx, []uuid.UUID{f.labels[1].ID, f.labels[0].ID, f.labels[1].ID})
			require.NoError(t, err)
			require.Len(t, labels, 2)
			assert.Equal(t, "backend", labels[0].Name)
			assert.Equal(t, "frontend", labels[1].Name)

			_, err = f.repos.Labels.GetByIDs(ctx, []uuid.UUID{f.labels[0].ID, uuid.New()})
			assert.ErrorIs(t, err, repository.ErrLabelNotFound)

			empty, err := f.repos.Labels.GetByIDs(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, empty)

			all, err := f.repos.Labels.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, "backend", all[0].Name)
		})
	}
}

func TestRepositories_Search(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, open(t))

			f.issue(t, "PBL-1", "Checkout flow")
			f.issue(t, "PBL-2", "checkout totals")
			f.issue(t, "PBL-3", "Profile page")

			count, err := f.repos.Issues.CountSearch(ctx, "CHECKOUT")
			require.NoError(t, err)
			assert.EqualValues(t, 2, count)

			page, err := f.repos.Issues.Search(ctx, "checkout", 1, 1)
			require.NoError(t, err)
			assert.Len(t, page, 1)

			byStatus, err := f.repos.Issues.CountSearch(ctx, "todo")
			require.NoError(t, err)
			assert.EqualValues(t, 3, byStatus)

			latest, err := f.repos.Issues.Latest(ctx, 2)
			require.NoError(t, err)
			assert.Len(t, latest, 2)
		})
	}
}

func TestRepositories_Users(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, open(t))

			found, err := f.repos.Users.FindByEmail(ctx, "ana@example.com")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, f.user.ID, found.ID)

			missing, err := f.repos.Users.FindByEmail(ctx, "nobody@example.com")
			assert.NoError(t, err)
			assert.Nil(t, missing)

			_, err = f.repos.Users.GetByID(ctx, uuid.New())
			assert.ErrorIs(t, err, repository.ErrUserNotFound)

			assert.Error(t, f.repos.Users.Create(ctx, &model.User{Name: "Dup", Email: "ana@example.com", HashedPassword: "x"}))
		})
	}
}
