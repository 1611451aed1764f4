package schema

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uXmii/schemaflow/internal/stats"
)

func TestInfer(t *testing.T) {
	t.Parallel()

	ds := stats.Compute(
		[]string{"age", "workclass"},
		[][]string{
			{"39", "State-gov"},
			{"50", "Private"},
		},
	)

	s := Infer(ds)
	require.Len(t, s.Features, 2)

	age, ok := s.Feature("age")
	require.True(t, ok)
	assert.Equal(t, stats.TypeInt, age.Type)
	require.NotNil(t, age.IntDomain)
	assert.Equal(t, int64(39), age.IntDomain.Min)
	assert.Equal(t, int64(50), age.IntDomain.Max)

	workclass, ok := s.Feature("workclass")
	require.True(t, ok)
	assert.Equal(t, stats.TypeString, workclass.Type)
	require.NotNil(t, workclass.StringDomain)
	assert.Equal(t, []string{"Private", "State-gov"}, workclass.StringDomain.Values)
}

func TestWriteAndLoad(t *testing.T) {
	t.Parallel()

	s := Schema{
		Features: []Feature{
			{Name: "age", Type: stats.TypeInt, IntDomain: &IntDomain{Min: 17, Max: 90}},
			{Name: "label", Type: stats.TypeString, NotInEnvironment: []string{EnvServing}},
		},
		DefaultEnvironments: []string{EnvTraining, EnvServing},
	}

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, Write(s, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	s := Schema{
		Features: []Feature{
			{Name: "age", Type: stats.TypeInt, IntDomain: &IntDomain{Min: 17, Max: 90}},
			{Name: "workclass", Type: stats.TypeString, StringDomain: &StringDomain{Values: []string{"Private", "State-gov"}}},
			{Name: "label", Type: stats.TypeString},
		},
	}

	ds := stats.Compute(
		[]string{"age", "workclass", "fnlwgt"},
		[][]string{
			{"15", "Private", "77516"},
			{"95", "Never-worked", "83311"},
		},
	)

	anomalies := Validate(s, ds)
	require.Len(t, anomalies.Anomalies, 4)

	byFeature := map[string]Anomaly{}
	for _, a := range anomalies.Anomalies {
		byFeature[a.Feature] = a
	}

	assert.Equal(t, "Out-of-range values", byFeature["age"].Short)
	assert.Equal(t, "Unexpected string values", byFeature["workclass"].Short)
	assert.Contains(t, byFeature["workclass"].Description, "Never-worked")
	assert.Equal(t, "Column dropped", byFeature["label"].Short)
	assert.Equal(t, "New column", byFeature["fnlwgt"].Short)
}

func TestValidate_CleanData(t *testing.T) {
	t.Parallel()

	ds := stats.Compute(
		[]string{"age", "workclass"},
		[][]string{
			{"39", "State-gov"},
			{"50", "Private"},
		},
	)
	s := Infer(ds)

	anomalies := Validate(s, ds)
	assert.True(t, anomalies.Empty())
}

func TestWriteAndLoadAnomalies(t *testing.T) {
	t.Parallel()

	a := Anomalies{Anomalies: []Anomaly{
		{Feature: "age", Short: "Out-of-range values", Description: "Observed range [15, 95] exceeds domain [17, 90]."},
	}}

	path := filepath.Join(t.TempDir(), "anomalies.yaml")
	require.NoError(t, WriteAnomalies(a, path))

	loaded, err := LoadAnomalies(path)
	require.NoError(t, err)
	assert.Equal(t, a, loaded)
}
