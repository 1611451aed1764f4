package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/uXmii/schemaflow/internal/logger"
	"github.com/uXmii/schemaflow/internal/logger/tag"
	"github.com/uXmii/schemaflow/internal/metadata"
)

// Context is the orchestration context stages run under. It allocates
// per-execution output directories under the pipeline root and records
// every stage run as an execution with input and output events.
type Context struct {
	root  string
	runID string
	store *metadata.Store
}

// NewContext creates an orchestration context rooted at the given
// pipeline directory. Each context carries a fresh run id that is stamped
// on every execution it records.
func NewContext(root string, store *metadata.Store) *Context {
	return &Context{
		root:  root,
		runID: uuid.New().String(),
		store: store,
	}
}

// RunID returns the id stamped on executions recorded by this context.
func (c *Context) RunID() string {
	return c.runID
}

// Store returns the underlying metadata store.
func (c *Context) Store() *metadata.Store {
	return c.store
}

// Run executes a single stage: it records the execution and its input
// events, invokes the stage, registers the output artifact, and links it
// with an output event. A failing stage is recorded as FAILED and its
// error is surfaced unchanged.
func (c *Context) Run(ctx context.Context, stage Stage, inputs ...metadata.Artifact) (metadata.Artifact, error) {
	logger.Info(ctx, "Running stage", tag.Stage(stage.Name()))

	exec, err := c.store.CreateExecution(ctx, stage.Name(), c.runID)
	if err != nil {
		return metadata.Artifact{}, err
	}

	for _, input := range inputs {
		if _, err := c.store.PutEvent(ctx, input.ID, exec.ID, metadata.EventInput); err != nil {
			return metadata.Artifact{}, err
		}
	}

	outDir := filepath.Join(c.root, stage.Name(), strconv.FormatInt(exec.ID, 10))
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return metadata.Artifact{}, fmt.Errorf("failed to create output directory for %s: %w", stage.Name(), err)
	}

	uri, err := stage.Execute(ctx, outDir, inputs)
	if err != nil {
		c.failExecution(ctx, exec.ID)
		logger.Error(ctx, "Stage failed", tag.Stage(stage.Name()), tag.Error(err))
		return metadata.Artifact{}, err
	}

	artifact, err := c.store.PutArtifact(ctx, stage.OutputType(), uri)
	if err != nil {
		c.failExecution(ctx, exec.ID)
		return metadata.Artifact{}, err
	}
	if _, err := c.store.PutEvent(ctx, artifact.ID, exec.ID, metadata.EventOutput); err != nil {
		return metadata.Artifact{}, err
	}
	if err := c.store.FinishExecution(ctx, exec.ID, metadata.ExecutionComplete); err != nil {
		return metadata.Artifact{}, err
	}

	logger.Info(ctx, "Stage completed",
		tag.Stage(stage.Name()), tag.Execution(exec.ID), tag.Artifact(artifact.ID))
	return artifact, nil
}

// failExecution marks an execution FAILED. Recording the failure is best
// effort; the stage error is what gets surfaced.
func (c *Context) failExecution(ctx context.Context, id int64) {
	if err := c.store.FinishExecution(ctx, id, metadata.ExecutionFailed); err != nil {
		logger.Warn(ctx, "Failed to record execution failure", tag.Execution(id), tag.Error(err))
	}
}
