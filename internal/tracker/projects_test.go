package tracker_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pebble/internal/repository"
	"pebble/internal/tracker"
)

// sequence returns a random source that yields values in order.
func sequence(values ...int) func(int) int {
	return func(int) int {
		v := values[0]
		if len(values) > 1 {
			values = values[1:]
		}
		return v
	}
}

func TestCreateProject_DerivesKeyFromName(t *testing.T) {
	store := tracker.NewStore(repository.NewMemoryRepositories(),
		tracker.WithLogger(quietLogger), tracker.WithRandom(sequence(32)))

	project, err := store.CreateProject(context.Background(), tracker.ProjectDraft{Name: "E-commerce Platform"})
	require.NoError(t, err)

	assert.Equal(t, "ECO42", project.Key)
}

func TestCreateProject_RetriesTakenKeys(t *testing.T) {
	// 32 -> ECO42 twice, then 47 -> ECO57
	store := tracker.NewStore(repository.NewMemoryRepositories(),
		tracker.WithLogger(quietLogger), tracker.WithRandom(sequence(32, 32, 47)))
	ctx := context.Background()

	first, err := store.CreateProject(ctx, tracker.ProjectDraft{Name: "Ecommerce"})
	require.NoError(t, err)
	second, err := store.CreateProject(ctx, tracker.ProjectDraft{Name: "Economy"})
	require.NoError(t, err)

	assert.Equal(t, "ECO42", first.Key)
	assert.Equal(t, "ECO57", second.Key)
}

func TestCreateProject_GivesUpAfterBoundedAttempts(t *testing.T) {
	store := tracker.NewStore(repository.NewMemoryRepositories(),
		tracker.WithLogger(quietLogger), tracker.WithRandom(sequence(0)))
	ctx := context.Background()

	_, err := store.CreateProject(ctx, tracker.ProjectDraft{Name: "Mobile"})
	require.NoError(t, err)

	_, err = store.CreateProject(ctx, tracker.ProjectDraft{Name: "Mobility"})
	var verr *tracker.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "key", verr.Field)
}

func TestCreateProject_ExplicitKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	project, err := store.CreateProject(ctx, tracker.ProjectDraft{Name: "Mobile", Key: " mob "})
	require.NoError(t, err)
	assert.Equal(t, "MOB", project.Key)

	found, err := store.ProjectByKey(ctx, "mob")
	require.NoError(t, err)
	assert.Equal(t, project.ID, found.ID)

	var verr *tracker.ValidationError
	_, err = store.CreateProject(ctx, tracker.ProjectDraft{Name: "Clash", Key: "PBL"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "already in use")

	_, err = store.CreateProject(ctx, tracker.ProjectDraft{Name: "Bad", Key: "1AB"})
	require.ErrorAs(t, err, &verr)

	_, err = store.CreateProject(ctx, tracker.ProjectDraft{Name: "  ", Key: "OK1"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestProjectByKey_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ProjectByKey(context.Background(), "NOPE")

	var nf *tracker.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "project", nf.Entity)
}

func TestProjects_NewestFirst(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateProject(ctx, tracker.ProjectDraft{Name: "Mobile", Key: "MOB"})
	require.NoError(t, err)

	projects, err := store.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "MOB", projects[0].Key)
	assert.Equal(t, "PBL", projects[1].Key)
}

func TestCreateLabel_Validation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var verr *tracker.ValidationError
	_, err := store.CreateLabel(ctx, tracker.LabelDraft{Name: "bug", Color: "red"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "color", verr.Field)

	_, err = store.CreateLabel(ctx, tracker.LabelDraft{Name: "", Color: "#FFFFFF"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = store.CreateLabel(ctx, tracker.LabelDraft{Name: "frontend", Color: "#10B981"})
	require.NoError(t, err)
	_, err = store.CreateLabel(ctx, tracker.LabelDraft{Name: "backend", Color: "#6366F1"})
	require.NoError(t, err)

	labels, err := store.Labels(ctx)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "backend", labels[0].Name)
}
