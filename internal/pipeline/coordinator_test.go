package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uXmii/schemaflow/internal/config"
	"github.com/uXmii/schemaflow/internal/metadata"
	"github.com/uXmii/schemaflow/internal/schema"
)

// censusRow builds a census record with the given age and label, filling
// the remaining columns with fixed values.
func censusRow(age, label string) string {
	return age + ", Private, 77516, Bachelors, 13, Never-married, Adm-clerical," +
		" Not-in-family, White, Male, 0, 0, 40, United-States, " + label + "\n"
}

func setupRun(t *testing.T, data string) (config.PathsConfig, *metadata.Store) {
	t.Helper()

	root := t.TempDir()
	paths := config.PathsConfig{
		PipelineRoot: filepath.Join(root, "pipeline"),
		DataRoot:     filepath.Join(root, "data"),
		DataFileName: "adult.data",
	}
	require.NoError(t, os.MkdirAll(paths.PipelineRoot, 0750))
	require.NoError(t, os.MkdirAll(paths.DataRoot, 0750))
	require.NoError(t, os.WriteFile(paths.DataFile(), []byte(data), 0600))

	store, err := metadata.Open(context.Background(), paths.MetadataDB())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return paths, store
}

func TestCoordinator_Run(t *testing.T) {
	t.Parallel()

	data := censusRow("39", "<=50K") + censusRow("50", ">50K") + censusRow("28", "<=50K")
	paths, store := setupRun(t, data)
	ctx := context.Background()

	coord := NewCoordinator(paths, store)
	result, err := coord.Run(ctx)
	require.NoError(t, err)

	// All five stages ran in the fixed order, each to completion.
	execs, err := store.Executions(ctx)
	require.NoError(t, err)
	require.Len(t, execs, 5)
	wantOrder := []string{
		StageExampleGen, StageStatisticsGen, StageSchemaGen,
		StageSchemaImport, StageExampleValidator,
	}
	for i, want := range wantOrder {
		assert.Equal(t, want, execs[i].Stage)
		assert.Equal(t, metadata.ExecutionComplete, execs[i].State)
		assert.Equal(t, coord.Context().RunID(), execs[i].RunID)
	}

	// Each stage consumed exactly the prior stage's declared output.
	assertInputs(t, store, execs[1].ID, result.Examples.ID)
	assertInputs(t, store, execs[2].ID, result.Statistics.ID)
	assertInputs(t, store, execs[4].ID, result.Statistics.ID, result.CuratedSchema.ID)

	// The curated schema carries the full edit list.
	curated, err := schema.Load(result.CuratedSchema.URI)
	require.NoError(t, err)
	age, ok := curated.Feature("age")
	require.True(t, ok)
	require.NotNil(t, age.IntDomain)
	assert.Equal(t, int64(17), age.IntDomain.Min)
	assert.Equal(t, int64(90), age.IntDomain.Max)
	assert.Equal(t, []string{schema.EnvTraining, schema.EnvServing}, curated.DefaultEnvironments)
	label, ok := curated.Feature("label")
	require.True(t, ok)
	assert.Equal(t, []string{schema.EnvServing}, label.NotInEnvironment)

	// The data is within the curated domains, so validation is clean.
	anomalies, err := schema.LoadAnomalies(result.Anomalies.URI)
	require.NoError(t, err)
	assert.True(t, anomalies.Empty())
}

func TestCoordinator_Run_DetectsAnomalies(t *testing.T) {
	t.Parallel()

	// Age 15 is below the curated minimum of 17.
	data := censusRow("15", "<=50K") + censusRow("50", ">50K")
	paths, store := setupRun(t, data)

	coord := NewCoordinator(paths, store)
	result, err := coord.Run(context.Background())
	require.NoError(t, err)

	anomalies, err := schema.LoadAnomalies(result.Anomalies.URI)
	require.NoError(t, err)
	require.Len(t, anomalies.Anomalies, 1)
	assert.Equal(t, "age", anomalies.Anomalies[0].Feature)
	assert.Equal(t, "Out-of-range values", anomalies.Anomalies[0].Short)
}

func TestCoordinator_Run_MissingDataFileAborts(t *testing.T) {
	t.Parallel()

	paths, store := setupRun(t, censusRow("39", "<=50K"))
	require.NoError(t, os.Remove(paths.DataFile()))
	ctx := context.Background()

	coord := NewCoordinator(paths, store)
	_, err := coord.Run(ctx)
	require.Error(t, err)

	// The failing stage is recorded and nothing after it ran.
	execs, err := store.Executions(ctx)
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, StageExampleGen, execs[0].Stage)
	assert.Equal(t, metadata.ExecutionFailed, execs[0].State)
}

// assertInputs checks that the execution's INPUT events reference exactly
// the given artifact ids.
func assertInputs(t *testing.T, store *metadata.Store, execID int64, want ...int64) {
	t.Helper()

	events, err := store.EventsByExecutionIDs(context.Background(), []int64{execID})
	require.NoError(t, err)

	var got []int64
	for _, e := range events {
		if e.Type == metadata.EventInput {
			got = append(got, e.ArtifactID)
		}
	}
	assert.ElementsMatch(t, want, got)
}

func TestContext_RunRecordsEvents(t *testing.T) {
	t.Parallel()

	paths, store := setupRun(t, censusRow("39", "<=50K"))
	ctx := context.Background()

	pctx := NewContext(paths.PipelineRoot, store)
	out, err := pctx.Run(ctx, &ExampleGen{DataFile: paths.DataFile()})
	require.NoError(t, err)
	assert.Equal(t, TypeExamples, out.Type)
	assert.NotZero(t, out.ID)

	events, err := store.EventsByArtifactIDs(ctx, []int64{out.ID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, metadata.EventOutput, events[0].Type)
}
