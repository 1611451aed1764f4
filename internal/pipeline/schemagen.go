package pipeline

import (
	"context"
	"path/filepath"

	"github.com/uXmii/schemaflow/internal/logger"
	"github.com/uXmii/schemaflow/internal/metadata"
	"github.com/uXmii/schemaflow/internal/schema"
	"github.com/uXmii/schemaflow/internal/stats"
)

const schemaFileName = "schema.yaml"

// SchemaGen infers a schema from an ExampleStatistics artifact.
type SchemaGen struct{}

func (g *SchemaGen) Name() string       { return StageSchemaGen }
func (g *SchemaGen) OutputType() string { return TypeSchema }

func (g *SchemaGen) Execute(ctx context.Context, outDir string, inputs []metadata.Artifact) (string, error) {
	statsArt, err := inputOfType(inputs, TypeStatistics)
	if err != nil {
		return "", err
	}

	ds, err := stats.Load(statsArt.URI)
	if err != nil {
		return "", err
	}

	inferred := schema.Infer(ds)
	logger.Info(ctx, "Inferred schema", "features", len(inferred.Features))

	out := filepath.Join(outDir, schemaFileName)
	if err := schema.Write(inferred, out); err != nil {
		return "", err
	}
	return out, nil
}
