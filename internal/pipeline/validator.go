package pipeline

import (
	"context"
	"path/filepath"

	"github.com/uXmii/schemaflow/internal/logger"
	"github.com/uXmii/schemaflow/internal/metadata"
	"github.com/uXmii/schemaflow/internal/schema"
	"github.com/uXmii/schemaflow/internal/stats"
)

const anomaliesFileName = "anomalies.yaml"

// ExampleValidator diffs an ExampleStatistics artifact against a Schema
// artifact and writes the detected anomalies.
type ExampleValidator struct{}

func (g *ExampleValidator) Name() string       { return StageExampleValidator }
func (g *ExampleValidator) OutputType() string { return TypeAnomalies }

func (g *ExampleValidator) Execute(ctx context.Context, outDir string, inputs []metadata.Artifact) (string, error) {
	statsArt, err := inputOfType(inputs, TypeStatistics)
	if err != nil {
		return "", err
	}
	schemaArt, err := inputOfType(inputs, TypeSchema)
	if err != nil {
		return "", err
	}

	ds, err := stats.Load(statsArt.URI)
	if err != nil {
		return "", err
	}
	s, err := schema.Load(schemaArt.URI)
	if err != nil {
		return "", err
	}

	anomalies := schema.Validate(s, ds)
	if anomalies.Empty() {
		logger.Info(ctx, "No anomalies detected")
	} else {
		logger.Warnf(ctx, "Detected %d anomalies", len(anomalies.Anomalies))
	}

	out := filepath.Join(outDir, anomaliesFileName)
	if err := schema.WriteAnomalies(anomalies, out); err != nil {
		return "", err
	}
	return out, nil
}
