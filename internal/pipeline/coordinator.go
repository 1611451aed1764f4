package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/uXmii/schemaflow/internal/config"
	"github.com/uXmii/schemaflow/internal/fileutil"
	"github.com/uXmii/schemaflow/internal/logger"
	"github.com/uXmii/schemaflow/internal/metadata"
	"github.com/uXmii/schemaflow/internal/schema"
)

// Coordinator runs the five pipeline stages in fixed order, threading
// each stage's output artifact into the next stage's input.
type Coordinator struct {
	paths config.PathsConfig
	pctx  *Context
}

// RunResult holds the artifacts produced by a full pipeline run.
type RunResult struct {
	Examples       metadata.Artifact
	Statistics     metadata.Artifact
	InferredSchema metadata.Artifact
	CuratedSchema  metadata.Artifact
	Anomalies      metadata.Artifact
}

// NewCoordinator creates a coordinator over the given filesystem layout
// and metadata store.
func NewCoordinator(paths config.PathsConfig, store *metadata.Store) *Coordinator {
	return &Coordinator{
		paths: paths,
		pctx:  NewContext(paths.PipelineRoot, store),
	}
}

// Context returns the orchestration context of this coordinator.
func (c *Coordinator) Context() *Context {
	return c.pctx
}

// Run executes the full pipeline. Failure of any stage aborts the
// sequence and surfaces the underlying error.
func (c *Coordinator) Run(ctx context.Context) (*RunResult, error) {
	logger.Info(ctx, "Starting pipeline run", "run", c.pctx.RunID())

	result := &RunResult{}
	var err error

	result.Examples, err = c.pctx.Run(ctx, &ExampleGen{DataFile: c.paths.DataFile()})
	if err != nil {
		return nil, err
	}

	result.Statistics, err = c.pctx.Run(ctx, &StatisticsGen{}, result.Examples)
	if err != nil {
		return nil, err
	}

	result.InferredSchema, err = c.pctx.Run(ctx, &SchemaGen{}, result.Statistics)
	if err != nil {
		return nil, err
	}

	result.CuratedSchema, err = c.curateSchema(ctx, result.InferredSchema)
	if err != nil {
		return nil, err
	}

	result.Anomalies, err = c.pctx.Run(ctx, &ExampleValidator{}, result.Statistics, result.CuratedSchema)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Pipeline run completed", "run", c.pctx.RunID())
	return result, nil
}

// curateSchema loads the inferred schema, applies the curation edits,
// writes the curated schema under the pipeline root, and imports it as a
// new Schema artifact.
func (c *Coordinator) curateSchema(ctx context.Context, inferred metadata.Artifact) (metadata.Artifact, error) {
	s, err := schema.Load(inferred.URI)
	if err != nil {
		return metadata.Artifact{}, err
	}

	curated, err := schema.Curate(ctx, s)
	if err != nil {
		return metadata.Artifact{}, fmt.Errorf("schema curation failed: %w", err)
	}

	dir := c.paths.CuratedSchemaDir()
	if err := fileutil.CreateDirs(dir); err != nil {
		return metadata.Artifact{}, err
	}
	curatedFile := filepath.Join(dir, schemaFileName)
	if err := schema.Write(curated, curatedFile); err != nil {
		return metadata.Artifact{}, err
	}
	logger.Info(ctx, "Curated schema written", "path", curatedFile)

	return c.pctx.Run(ctx, &SchemaImporter{SchemaFile: curatedFile})
}
