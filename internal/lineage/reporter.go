// Package lineage assembles display-friendly lineage records from
// read-only metadata store queries.
package lineage

import (
	"context"

	"github.com/uXmii/schemaflow/internal/logger"
	"github.com/uXmii/schemaflow/internal/logger/tag"
	"github.com/uXmii/schemaflow/internal/metadata"
)

// Record is the input/output relationship of the execution that produced
// an artifact. It is assembled for display only and has no persisted
// identity.
type Record struct {
	ArtifactType string
	ArtifactID   int64
	ExecutionID  int64
	InputIDs     []int64
	OutputIDs    []int64
}

// TypeCount is the number of artifacts of one type.
type TypeCount struct {
	Type  string
	Count int
}

// Reporter issues read-only queries against the metadata store. Every
// lookup degrades gracefully to an empty result: store errors are logged,
// never surfaced.
type Reporter struct {
	store *metadata.Store
}

// NewReporter creates a reporter over the given store.
func NewReporter(store *metadata.Store) *Reporter {
	return &Reporter{store: store}
}

// LineageOf traces the lineage of the first artifact of the given type:
// it takes the execution id of the first event referencing the artifact
// and partitions that execution's events into input and output artifact
// id sets. A type with no artifacts or no events yields (Record{}, false),
// which is a normal outcome rather than a fault.
func (r *Reporter) LineageOf(ctx context.Context, artifactType string) (Record, bool) {
	artifacts, err := r.store.ArtifactsByType(ctx, artifactType)
	if err != nil {
		logger.Error(ctx, "Failed to list artifacts", "type", artifactType, tag.Error(err))
		return Record{}, false
	}
	if len(artifacts) == 0 {
		logger.Warn(ctx, "No artifacts found", "type", artifactType)
		return Record{}, false
	}

	first := artifacts[0]
	events, err := r.store.EventsByArtifactIDs(ctx, []int64{first.ID})
	if err != nil {
		logger.Error(ctx, "Failed to list events", tag.Artifact(first.ID), tag.Error(err))
		return Record{}, false
	}
	if len(events) == 0 {
		logger.Warn(ctx, "No events found", tag.Artifact(first.ID))
		return Record{}, false
	}

	executionID := events[0].ExecutionID
	executionEvents, err := r.store.EventsByExecutionIDs(ctx, []int64{executionID})
	if err != nil {
		logger.Error(ctx, "Failed to list execution events", tag.Execution(executionID), tag.Error(err))
		return Record{}, false
	}

	rec := Record{
		ArtifactType: artifactType,
		ArtifactID:   first.ID,
		ExecutionID:  executionID,
	}
	for _, e := range executionEvents {
		switch e.Type {
		case metadata.EventInput:
			rec.InputIDs = append(rec.InputIDs, e.ArtifactID)
		case metadata.EventOutput:
			rec.OutputIDs = append(rec.OutputIDs, e.ArtifactID)
		}
	}
	return rec, true
}

// ArtifactsOfType lists the artifacts of the given type, degrading to
// empty on store errors.
func (r *Reporter) ArtifactsOfType(ctx context.Context, artifactType string) []metadata.Artifact {
	artifacts, err := r.store.ArtifactsByType(ctx, artifactType)
	if err != nil {
		logger.Error(ctx, "Failed to list artifacts", "type", artifactType, tag.Error(err))
		return nil
	}
	return artifacts
}

// Summary counts artifacts by type across the whole store.
func (r *Reporter) Summary(ctx context.Context) []TypeCount {
	types, err := r.store.ArtifactTypes(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to list artifact types", tag.Error(err))
		return nil
	}

	var counts []TypeCount
	for _, at := range types {
		artifacts, err := r.store.ArtifactsByType(ctx, at.Name)
		if err != nil {
			logger.Warn(ctx, "Failed to count artifacts", "type", at.Name, tag.Error(err))
			continue
		}
		counts = append(counts, TypeCount{Type: at.Name, Count: len(artifacts)})
	}
	return counts
}

// ExecutionInfo looks up a single execution by id.
func (r *Reporter) ExecutionInfo(ctx context.Context, id int64) (metadata.Execution, bool) {
	execs, err := r.store.ExecutionsByID(ctx, []int64{id})
	if err != nil {
		logger.Error(ctx, "Failed to load execution", tag.Execution(id), tag.Error(err))
		return metadata.Execution{}, false
	}
	if len(execs) == 0 {
		logger.Warn(ctx, "No execution found", tag.Execution(id))
		return metadata.Execution{}, false
	}
	return execs[0], true
}
