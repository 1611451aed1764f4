package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/uXmii/schemaflow/internal/fileutil"
	"github.com/uXmii/schemaflow/internal/logger"
	"github.com/uXmii/schemaflow/internal/metadata"
)

// CensusColumns are the field names of the Census Income dataset, which
// ships without a header row.
var CensusColumns = []string{
	"age", "workclass", "fnlwgt", "education", "education-num",
	"marital-status", "occupation", "relationship", "race", "sex",
	"capital-gain", "capital-loss", "hours-per-week", "native-country",
	"label",
}

const (
	examplesFileName = "examples.csv"
	manifestFileName = "manifest.yaml"
)

// ExamplesManifest describes an Examples artifact.
type ExamplesManifest struct {
	Columns     []string `yaml:"columns"`
	NumExamples int64    `yaml:"numExamples"`
	SkippedRows int64    `yaml:"skippedRows"`
	SourceFile  string   `yaml:"sourceFile"`
	SourceBytes int64    `yaml:"sourceBytes"`
}

// ExampleGen ingests the raw CSV data file into a normalized examples
// artifact: a headered CSV with whitespace-trimmed values plus a
// manifest.
type ExampleGen struct {
	// DataFile is the path of the raw headerless CSV file.
	DataFile string

	// Columns are the field names to assign; defaults to CensusColumns.
	Columns []string
}

func (g *ExampleGen) Name() string       { return StageExampleGen }
func (g *ExampleGen) OutputType() string { return TypeExamples }

func (g *ExampleGen) Execute(ctx context.Context, outDir string, _ []metadata.Artifact) (string, error) {
	columns := g.Columns
	if len(columns) == 0 {
		columns = CensusColumns
	}

	rows, skipped, err := readRawCSV(g.DataFile, len(columns))
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("no examples found in %s", g.DataFile)
	}
	if skipped > 0 {
		logger.Warnf(ctx, "Skipped %d malformed rows in %s", skipped, g.DataFile)
	}

	if err := writeExamples(filepath.Join(outDir, examplesFileName), columns, rows); err != nil {
		return "", err
	}

	size, err := fileutil.FileSize(g.DataFile)
	if err != nil {
		return "", err
	}
	manifest := ExamplesManifest{
		Columns:     columns,
		NumExamples: int64(len(rows)),
		SkippedRows: skipped,
		SourceFile:  g.DataFile,
		SourceBytes: size,
	}
	if err := writeManifest(filepath.Join(outDir, manifestFileName), manifest); err != nil {
		return "", err
	}

	return outDir, nil
}

// readRawCSV reads the headerless data file, trims whitespace from every
// value, and drops rows that do not have the expected column count
// (the census file ends with blank and comment-like lines).
func readRawCSV(path string, wantFields int) ([][]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open data file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var (
		rows    [][]string
		skipped int64
	)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if len(record) != wantFields {
			skipped++
			continue
		}
		for i, v := range record {
			record[i] = strings.TrimSpace(v)
		}
		rows = append(rows, record)
	}
	return rows, skipped, nil
}

func writeExamples(path string, columns []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create examples file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write examples header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write examples: %w", err)
	}
	w.Flush()
	return w.Error()
}

func writeManifest(path string, manifest ExamplesManifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal examples manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write examples manifest: %w", err)
	}
	return nil
}

// LoadExamples reads an Examples artifact back into columns and rows.
func LoadExamples(uri string) (ExamplesManifest, [][]string, error) {
	data, err := os.ReadFile(filepath.Join(uri, manifestFileName))
	if err != nil {
		return ExamplesManifest{}, nil, fmt.Errorf("failed to read examples manifest: %w", err)
	}
	var manifest ExamplesManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return ExamplesManifest{}, nil, fmt.Errorf("failed to parse examples manifest: %w", err)
	}

	f, err := os.Open(filepath.Join(uri, examplesFileName))
	if err != nil {
		return ExamplesManifest{}, nil, fmt.Errorf("failed to open examples file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return ExamplesManifest{}, nil, fmt.Errorf("failed to read examples: %w", err)
	}
	if len(records) == 0 {
		return ExamplesManifest{}, nil, fmt.Errorf("examples file in %s is empty", uri)
	}
	// First record is the header row.
	return manifest, records[1:], nil
}
