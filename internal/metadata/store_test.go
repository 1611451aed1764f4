package metadata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRegisterArtifactType_Idempotent(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.RegisterArtifactType(ctx, "Schema")
	require.NoError(t, err)
	second, err := store.RegisterArtifactType(ctx, "Schema")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	types, err := store.ArtifactTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "Schema", types[0].Name)
}

func TestPutArtifact_AndListByType(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	a1, err := store.PutArtifact(ctx, "Examples", "/pipeline/examples/1")
	require.NoError(t, err)
	a2, err := store.PutArtifact(ctx, "Examples", "/pipeline/examples/2")
	require.NoError(t, err)
	_, err = store.PutArtifact(ctx, "Schema", "/pipeline/schema/1")
	require.NoError(t, err)

	examples, err := store.ArtifactsByType(ctx, "Examples")
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, a1.ID, examples[0].ID)
	assert.Equal(t, a2.ID, examples[1].ID)
	assert.Equal(t, "/pipeline/examples/1", examples[0].URI)
	assert.Equal(t, "Examples", examples[0].Type)

	missing, err := store.ArtifactsByType(ctx, "ExampleAnomalies")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestExecutionLifecycle(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	exec, err := store.CreateExecution(ctx, "StatisticsGen", "run-1")
	require.NoError(t, err)
	assert.Equal(t, ExecutionRunning, exec.State)

	require.NoError(t, store.FinishExecution(ctx, exec.ID, ExecutionComplete))

	execs, err := store.ExecutionsByID(ctx, []int64{exec.ID})
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, ExecutionComplete, execs[0].State)
	assert.Equal(t, "StatisticsGen", execs[0].Stage)
	assert.Equal(t, "run-1", execs[0].RunID)
	assert.False(t, execs[0].FinishedAt.IsZero())
}

func TestFinishExecution_NotFound(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)

	err := store.FinishExecution(context.Background(), 999, ExecutionFailed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvents_ByArtifactAndExecution(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	in, err := store.PutArtifact(ctx, "ExampleStatistics", "/pipeline/stats/1")
	require.NoError(t, err)
	out, err := store.PutArtifact(ctx, "Schema", "/pipeline/schema/1")
	require.NoError(t, err)
	exec, err := store.CreateExecution(ctx, "SchemaGen", "run-1")
	require.NoError(t, err)

	_, err = store.PutEvent(ctx, in.ID, exec.ID, EventInput)
	require.NoError(t, err)
	_, err = store.PutEvent(ctx, out.ID, exec.ID, EventOutput)
	require.NoError(t, err)

	byArtifact, err := store.EventsByArtifactIDs(ctx, []int64{out.ID})
	require.NoError(t, err)
	require.Len(t, byArtifact, 1)
	assert.Equal(t, EventOutput, byArtifact[0].Type)
	assert.Equal(t, exec.ID, byArtifact[0].ExecutionID)

	byExecution, err := store.EventsByExecutionIDs(ctx, []int64{exec.ID})
	require.NoError(t, err)
	require.Len(t, byExecution, 2)

	empty, err := store.EventsByArtifactIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExecutions_Order(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	stages := []string{"ExampleGen", "StatisticsGen", "SchemaGen"}
	for _, stage := range stages {
		_, err := store.CreateExecution(ctx, stage, "run-1")
		require.NoError(t, err)
	}

	execs, err := store.Executions(ctx)
	require.NoError(t, err)
	require.Len(t, execs, 3)
	for i, stage := range stages {
		assert.Equal(t, stage, execs[i].Stage)
	}
}
