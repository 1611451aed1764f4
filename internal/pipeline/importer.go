package pipeline

import (
	"context"
	"path/filepath"

	"github.com/uXmii/schemaflow/internal/metadata"
	"github.com/uXmii/schemaflow/internal/schema"
)

// SchemaImporter registers an externally curated schema file as a new
// Schema artifact. The file is re-read and re-registered on every run;
// imports are never cached.
type SchemaImporter struct {
	// SchemaFile is the path of the curated schema to import.
	SchemaFile string
}

func (g *SchemaImporter) Name() string       { return StageSchemaImport }
func (g *SchemaImporter) OutputType() string { return TypeSchema }

func (g *SchemaImporter) Execute(_ context.Context, outDir string, _ []metadata.Artifact) (string, error) {
	// Copy into the execution's artifact directory so later edits of the
	// source file cannot alter the imported artifact.
	s, err := schema.Load(g.SchemaFile)
	if err != nil {
		return "", err
	}
	out := filepath.Join(outDir, schemaFileName)
	if err := schema.Write(s, out); err != nil {
		return "", err
	}
	return out, nil
}
