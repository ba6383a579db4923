package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pebble/internal/model"
	"pebble/internal/repository"
	"pebble/internal/seed"
	"pebble/internal/tracker"
)

func TestRun_LoadsDemoWorkspaceOnce(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()
	store := tracker.NewStore(repos)

	require.NoError(t, seed.Run(ctx, store, repos.Users))
	require.NoError(t, seed.Run(ctx, store, repos.Users))

	projects, err := store.Projects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 3)

	pebble, err := store.ProjectByKey(ctx, "PBL")
	require.NoError(t, err)
	issues, err := store.ListByProject(ctx, pebble.ID)
	require.NoError(t, err)
	require.Len(t, issues, 5)

	summary := tracker.Summarize(issues)
	assert.Equal(t, tracker.Summary{Todo: 2, InProgress: 1, InReview: 1, Done: 1, Total: 5, CompletionRatePercent: 20}, summary)

	byKey := make(map[string]model.Issue)
	for _, issue := range issues {
		byKey[issue.Key] = issue
	}
	require.Contains(t, byKey, "PBL-3")
	assert.Equal(t, "Fix login bug", byKey["PBL-3"].Title)
	require.NotNil(t, byKey["PBL-3"].Assignee)
	assert.Equal(t, "Mike Johnson", byKey["PBL-3"].Assignee.Name)

	users, err := repos.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)
}
