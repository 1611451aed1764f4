package metadata

import "time"

// EventType distinguishes whether an artifact was consumed or produced by
// an execution.
type EventType string

const (
	EventInput  EventType = "INPUT"
	EventOutput EventType = "OUTPUT"
)

// ExecutionState is the last known state of a stage execution.
type ExecutionState string

const (
	ExecutionRunning  ExecutionState = "RUNNING"
	ExecutionComplete ExecutionState = "COMPLETE"
	ExecutionFailed   ExecutionState = "FAILED"
)

// ArtifactType names a kind of artifact (Examples, ExampleStatistics,
// Schema, ExampleAnomalies).
type ArtifactType struct {
	ID   int64
	Name string
}

// Artifact is an opaque reference to data produced by a pipeline stage.
type Artifact struct {
	ID        int64
	TypeID    int64
	Type      string
	URI       string
	CreatedAt time.Time
}

// Execution is a recorded run of a single pipeline stage.
type Execution struct {
	ID         int64
	Stage      string
	RunID      string
	State      ExecutionState
	StartedAt  time.Time
	FinishedAt time.Time
}

// Event links an artifact to an execution as either input or output.
type Event struct {
	ID          int64
	ArtifactID  int64
	ExecutionID int64
	Type        EventType
	CreatedAt   time.Time
}
