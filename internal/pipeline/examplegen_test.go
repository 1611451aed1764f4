package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "adult.data")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestExampleGen(t *testing.T) {
	t.Parallel()

	dataFile := writeDataFile(t, ""+
		"39, State-gov, 77516, Bachelors, 13, Never-married, Adm-clerical, Not-in-family, White, Male, 2174, 0, 40, United-States, <=50K\n"+
		"50, Self-emp-not-inc, 83311, Bachelors, 13, Married-civ-spouse, Exec-managerial, Husband, White, Male, 0, 0, 13, United-States, <=50K\n"+
		"malformed line\n")

	outDir := t.TempDir()
	gen := &ExampleGen{DataFile: dataFile}

	uri, err := gen.Execute(context.Background(), outDir, nil)
	require.NoError(t, err)
	assert.Equal(t, outDir, uri)

	manifest, rows, err := LoadExamples(uri)
	require.NoError(t, err)
	assert.Equal(t, CensusColumns, manifest.Columns)
	assert.Equal(t, int64(2), manifest.NumExamples)
	assert.Equal(t, int64(1), manifest.SkippedRows)
	assert.Equal(t, dataFile, manifest.SourceFile)
	assert.Positive(t, manifest.SourceBytes)

	require.Len(t, rows, 2)
	// Values are whitespace-trimmed during ingestion.
	assert.Equal(t, "State-gov", rows[0][1])
	assert.Equal(t, "<=50K", rows[0][14])
}

func TestExampleGen_MissingDataFile(t *testing.T) {
	t.Parallel()

	gen := &ExampleGen{DataFile: filepath.Join(t.TempDir(), "missing.data")}
	_, err := gen.Execute(context.Background(), t.TempDir(), nil)
	assert.Error(t, err)
}

func TestExampleGen_EmptyDataFile(t *testing.T) {
	t.Parallel()

	gen := &ExampleGen{DataFile: writeDataFile(t, "")}
	_, err := gen.Execute(context.Background(), t.TempDir(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no examples")
}
