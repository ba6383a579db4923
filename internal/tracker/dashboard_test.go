package tracker_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pebble/internal/model"
	"pebble/internal/tracker"
)

func TestCards(t *testing.T) {
	store, project := newTestStore(t)
	ctx := context.Background()

	for _, status := range []model.Status{model.StatusDone, model.StatusTodo, model.StatusInReview} {
		_, err := store.Create(ctx, tracker.IssueDraft{ProjectID: project.ID, Title: "x", Status: status})
		require.NoError(t, err)
	}

	cards, err := store.Cards(ctx)
	require.NoError(t, err)

	assert.Equal(t, tracker.Cards{Projects: 1, Issues: 3, Completed: 1, Pending: 2}, cards)
}

func TestSearchIssues_Paginates(t *testing.T) {
	store, project := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 8; i++ {
		_, err := store.Create(ctx, tracker.IssueDraft{ProjectID: project.ID, Title: fmt.Sprintf("Checkout step %d", i)})
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, tracker.IssueDraft{ProjectID: project.ID, Title: "Unrelated", Type: model.TypeBug})
	require.NoError(t, err)

	first, err := store.SearchIssues(ctx, "CHECKOUT", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 2, first.TotalPages)
	assert.EqualValues(t, 8, first.Total)
	assert.Len(t, first.Issues, tracker.ItemsPerPage)
	assert.Equal(t, "Checkout step 8", first.Issues[0].Title)

	second, err := store.SearchIssues(ctx, "checkout", 2)
	require.NoError(t, err)
	assert.Len(t, second.Issues, 2)

	bugs, err := store.SearchIssues(ctx, "bug", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, bugs.Total)

	none, err := store.SearchIssues(ctx, "zzz", 1)
	require.NoError(t, err)
	assert.NotNil(t, none.Issues)
	assert.Zero(t, none.TotalPages)
}

func TestLatestIssues(t *testing.T) {
	store, project := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		_, err := store.Create(ctx, tracker.IssueDraft{ProjectID: project.ID, Title: fmt.Sprintf("issue %d", i)})
		require.NoError(t, err)
	}

	latest, err := store.LatestIssues(ctx, 5)
	require.NoError(t, err)
	require.Len(t, latest, 5)
	assert.Equal(t, "PBL-7", latest[0].Key)
	assert.Equal(t, "PBL-3", latest[4].Key)
}

func TestProjectOverviews(t *testing.T) {
	store, project := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, tracker.IssueDraft{ProjectID: project.ID, Title: "x", Status: model.StatusDone})
	require.NoError(t, err)

	overviews, err := store.ProjectOverviews(ctx)
	require.NoError(t, err)
	require.Len(t, overviews, 1)
	assert.Equal(t, "PBL", overviews[0].Key)
	assert.Equal(t, 100, overviews[0].Summary.CompletionRatePercent)
}
