// Package metadata implements the sqlite-backed store that records
// artifacts, stage executions, and the events linking them.
package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("metadata: not found")

const schemaDDL = `
CREATE TABLE IF NOT EXISTS artifact_types (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS artifacts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	type_id    INTEGER NOT NULL REFERENCES artifact_types(id),
	uri        TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS executions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	stage       TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	state       TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	artifact_id  INTEGER NOT NULL REFERENCES artifacts(id),
	execution_id INTEGER NOT NULL REFERENCES executions(id),
	type         TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_artifacts_type ON artifacts(type_id);
CREATE INDEX IF NOT EXISTS idx_events_artifact ON events(artifact_id);
CREATE INDEX IF NOT EXISTS idx_events_execution ON events(execution_id);
`

// Store provides read and write access to the pipeline metadata.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite metadata store at the given path and
// applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}
	// sqlite allows a single writer; serialize all access.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to metadata store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply metadata schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RegisterArtifactType registers an artifact type by name. It is
// idempotent: registering an existing name returns the stored type.
func (s *Store) RegisterArtifactType(ctx context.Context, name string) (ArtifactType, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO artifact_types (name) VALUES (?)`, name,
	); err != nil {
		return ArtifactType{}, fmt.Errorf("failed to register artifact type %q: %w", name, err)
	}

	var at ArtifactType
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM artifact_types WHERE name = ?`, name,
	).Scan(&at.ID, &at.Name)
	if err != nil {
		return ArtifactType{}, fmt.Errorf("failed to load artifact type %q: %w", name, err)
	}
	return at, nil
}

// PutArtifact stores a new artifact of the named type and returns it.
func (s *Store) PutArtifact(ctx context.Context, typeName, uri string) (Artifact, error) {
	at, err := s.RegisterArtifactType(ctx, typeName)
	if err != nil {
		return Artifact{}, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (type_id, uri, created_at) VALUES (?, ?, ?)`,
		at.ID, uri, now,
	)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to store artifact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to read artifact id: %w", err)
	}
	return Artifact{ID: id, TypeID: at.ID, Type: at.Name, URI: uri, CreatedAt: now}, nil
}

// CreateExecution records the start of a stage execution in state RUNNING.
func (s *Store) CreateExecution(ctx context.Context, stage, runID string) (Execution, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO executions (stage, run_id, state, started_at) VALUES (?, ?, ?, ?)`,
		stage, runID, ExecutionRunning, now,
	)
	if err != nil {
		return Execution{}, fmt.Errorf("failed to create execution for stage %q: %w", stage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Execution{}, fmt.Errorf("failed to read execution id: %w", err)
	}
	return Execution{ID: id, Stage: stage, RunID: runID, State: ExecutionRunning, StartedAt: now}, nil
}

// FinishExecution sets the final state of an execution.
func (s *Store) FinishExecution(ctx context.Context, id int64, state ExecutionState) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE executions SET state = ?, finished_at = ? WHERE id = ?`,
		state, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish execution %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("execution %d: %w", id, ErrNotFound)
	}
	return nil
}

// PutEvent links an artifact to an execution as input or output.
func (s *Store) PutEvent(ctx context.Context, artifactID, executionID int64, typ EventType) (Event, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (artifact_id, execution_id, type, created_at) VALUES (?, ?, ?, ?)`,
		artifactID, executionID, typ, now,
	)
	if err != nil {
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Event{}, fmt.Errorf("failed to read event id: %w", err)
	}
	return Event{ID: id, ArtifactID: artifactID, ExecutionID: executionID, Type: typ, CreatedAt: now}, nil
}

// ArtifactTypes lists all registered artifact types.
func (s *Store) ArtifactTypes(ctx context.Context) ([]ArtifactType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM artifact_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifact types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var types []ArtifactType
	for rows.Next() {
		var at ArtifactType
		if err := rows.Scan(&at.ID, &at.Name); err != nil {
			return nil, err
		}
		types = append(types, at)
	}
	return types, rows.Err()
}

// ArtifactsByType lists all artifacts of the named type in insertion order.
func (s *Store) ArtifactsByType(ctx context.Context, typeName string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.type_id, t.name, a.uri, a.created_at
		FROM artifacts a JOIN artifact_types t ON a.type_id = t.id
		WHERE t.name = ? ORDER BY a.id`, typeName)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts of type %q: %w", typeName, err)
	}
	defer func() { _ = rows.Close() }()

	return scanArtifacts(rows)
}

// EventsByArtifactIDs lists all events referencing any of the given
// artifact ids.
func (s *Store) EventsByArtifactIDs(ctx context.Context, ids []int64) ([]Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, artifact_id, execution_id, type, created_at
		FROM events WHERE artifact_id IN (%s) ORDER BY id`, placeholders(len(ids)))
	return s.queryEvents(ctx, query, int64Args(ids)...)
}

// EventsByExecutionIDs lists all events belonging to any of the given
// execution ids.
func (s *Store) EventsByExecutionIDs(ctx context.Context, ids []int64) ([]Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, artifact_id, execution_id, type, created_at
		FROM events WHERE execution_id IN (%s) ORDER BY id`, placeholders(len(ids)))
	return s.queryEvents(ctx, query, int64Args(ids)...)
}

// ExecutionsByID lists the executions with the given ids.
func (s *Store) ExecutionsByID(ctx context.Context, ids []int64) ([]Execution, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, stage, run_id, state, started_at, finished_at
		FROM executions WHERE id IN (%s) ORDER BY id`, placeholders(len(ids)))

	rows, err := s.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var execs []Execution
	for rows.Next() {
		var (
			e        Execution
			finished sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.Stage, &e.RunID, &e.State, &e.StartedAt, &finished); err != nil {
			return nil, err
		}
		if finished.Valid {
			e.FinishedAt = finished.Time
		}
		execs = append(execs, e)
	}
	return execs, rows.Err()
}

// Executions lists all executions in start order.
func (s *Store) Executions(ctx context.Context) ([]Execution, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM executions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.ExecutionsByID(ctx, ids)
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.ArtifactID, &e.ExecutionID, &e.Type, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanArtifacts(rows *sql.Rows) ([]Artifact, error) {
	var artifacts []Artifact
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.ID, &a.TypeID, &a.Type, &a.URI, &a.CreatedAt); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
