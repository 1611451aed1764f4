package pipeline

import (
	"context"
	"path/filepath"

	"github.com/uXmii/schemaflow/internal/logger"
	"github.com/uXmii/schemaflow/internal/metadata"
	"github.com/uXmii/schemaflow/internal/stats"
)

const statsFileName = "stats.yaml"

// StatisticsGen computes per-field statistics from an Examples artifact.
type StatisticsGen struct{}

func (g *StatisticsGen) Name() string       { return StageStatisticsGen }
func (g *StatisticsGen) OutputType() string { return TypeStatistics }

func (g *StatisticsGen) Execute(ctx context.Context, outDir string, inputs []metadata.Artifact) (string, error) {
	examples, err := inputOfType(inputs, TypeExamples)
	if err != nil {
		return "", err
	}

	manifest, rows, err := LoadExamples(examples.URI)
	if err != nil {
		return "", err
	}

	ds := stats.Compute(manifest.Columns, rows)
	logger.Info(ctx, "Computed dataset statistics",
		"examples", ds.NumExamples, "fields", len(ds.Fields))

	out := filepath.Join(outDir, statsFileName)
	if err := stats.Write(ds, out); err != nil {
		return "", err
	}
	return out, nil
}
