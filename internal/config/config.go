package config

import "path/filepath"

// Config holds the overall configuration for the application.
type Config struct {
	// Global contains settings that apply to the whole process.
	Global Global

	// Paths holds the filesystem layout the pipeline operates on.
	Paths PathsConfig

	// Warnings contains non-fatal findings from the loading process.
	Warnings []string
}

type Global struct {
	// Debug toggles debug logging.
	Debug bool

	// LogFormat defines the output format for log messages (text or json).
	LogFormat string

	// Quiet suppresses console logging; the log file is still written.
	Quiet bool
}

// PathsConfig is the filesystem layout used by a pipeline run.
type PathsConfig struct {
	// PipelineRoot is where stage artifacts and the metadata store live.
	PipelineRoot string

	// DataRoot is the directory holding the raw input data.
	DataRoot string

	// DataFileName is the name of the CSV data file within DataRoot.
	DataFileName string

	// LogFile is the path of the run log file.
	LogFile string
}

// DataFile returns the full path of the raw CSV data file.
func (p PathsConfig) DataFile() string {
	return filepath.Join(p.DataRoot, p.DataFileName)
}

// MetadataDB returns the path of the sqlite metadata store.
func (p PathsConfig) MetadataDB() string {
	return filepath.Join(p.PipelineRoot, "metadata.db")
}

// CuratedSchemaDir returns the directory the curated schema is written to.
func (p PathsConfig) CuratedSchemaDir() string {
	return filepath.Join(p.PipelineRoot, "updated_schema")
}
