// Package pipeline sequences the five census pipeline stages and records
// their executions in the metadata store.
package pipeline

import (
	"context"
	"fmt"

	"github.com/uXmii/schemaflow/internal/metadata"
)

// Artifact type names registered in the metadata store.
const (
	TypeExamples   = "Examples"
	TypeStatistics = "ExampleStatistics"
	TypeSchema     = "Schema"
	TypeAnomalies  = "ExampleAnomalies"
)

// Stage names in execution order.
const (
	StageExampleGen       = "ExampleGen"
	StageStatisticsGen    = "StatisticsGen"
	StageSchemaGen        = "SchemaGen"
	StageSchemaImport     = "SchemaImport"
	StageExampleValidator = "ExampleValidator"
)

// Stage is a single pipeline step. Execute reads its inputs through
// their artifact URIs, writes its output under outDir, and returns the
// output artifact URI.
type Stage interface {
	Name() string
	OutputType() string
	Execute(ctx context.Context, outDir string, inputs []metadata.Artifact) (string, error)
}

// inputOfType returns the first input artifact of the given type.
func inputOfType(inputs []metadata.Artifact, typeName string) (metadata.Artifact, error) {
	for _, a := range inputs {
		if a.Type == typeName {
			return a, nil
		}
	}
	return metadata.Artifact{}, fmt.Errorf("missing input artifact of type %s", typeName)
}
