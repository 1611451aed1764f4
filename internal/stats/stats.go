// Package stats computes per-field dataset statistics used for schema
// inference and anomaly validation.
package stats

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// FieldType is the observed value type of a field.
type FieldType string

const (
	TypeInt    FieldType = "INT"
	TypeFloat  FieldType = "FLOAT"
	TypeString FieldType = "STRING"
)

// missingMarker is the placeholder the Census Income dataset uses for
// absent values.
const missingMarker = "?"

// FieldStats holds the statistics of a single field.
type FieldStats struct {
	Name    string    `yaml:"name"`
	Type    FieldType `yaml:"type"`
	Count   int64     `yaml:"count"`
	Missing int64     `yaml:"missing"`

	// Numeric statistics, only meaningful for INT and FLOAT fields.
	Min  float64 `yaml:"min,omitempty"`
	Max  float64 `yaml:"max,omitempty"`
	Mean float64 `yaml:"mean,omitempty"`

	// Values is the sorted distinct value set of a STRING field.
	Values []string `yaml:"values,omitempty"`
}

// DatasetStats holds the statistics of a whole dataset.
type DatasetStats struct {
	NumExamples int64        `yaml:"numExamples"`
	Fields      []FieldStats `yaml:"fields"`
}

// Field returns the statistics of the named field.
func (d DatasetStats) Field(name string) (FieldStats, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldStats{}, false
}

// Compute derives per-field statistics from rows of string values. Each
// row must have one value per column; shorter rows are padded with
// missing values. Values equal to the missing marker or empty after
// trimming count as missing.
func Compute(columns []string, rows [][]string) DatasetStats {
	ds := DatasetStats{NumExamples: int64(len(rows))}

	for i, col := range columns {
		fs := FieldStats{Name: col}

		var (
			values   []string
			sum      float64
			intOnly  = true
			numeric  = true
			firstNum = true
		)
		for _, row := range rows {
			var raw string
			if i < len(row) {
				raw = strings.TrimSpace(row[i])
			}
			if raw == "" || raw == missingMarker {
				fs.Missing++
				continue
			}
			fs.Count++
			values = append(values, raw)

			if !numeric {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				numeric = false
				continue
			}
			if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
				intOnly = false
			}
			sum += v
			if firstNum || v < fs.Min {
				fs.Min = v
			}
			if firstNum || v > fs.Max {
				fs.Max = v
			}
			firstNum = false
		}

		switch {
		case fs.Count == 0:
			// All values missing; treat as STRING with no observed domain.
			fs.Type = TypeString
		case numeric && intOnly:
			fs.Type = TypeInt
			fs.Mean = sum / float64(fs.Count)
		case numeric:
			fs.Type = TypeFloat
			fs.Mean = sum / float64(fs.Count)
		default:
			fs.Type = TypeString
			fs.Min, fs.Max, fs.Mean = 0, 0, 0
			fs.Values = distinct(values)
		}

		ds.Fields = append(ds.Fields, fs)
	}

	return ds
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Write serializes the statistics to the named YAML file.
func Write(ds DatasetStats, path string) error {
	data, err := yaml.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write statistics to %s: %w", path, err)
	}
	return nil
}

// Load reads statistics from the named YAML file.
func Load(path string) (DatasetStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DatasetStats{}, fmt.Errorf("failed to read statistics from %s: %w", path, err)
	}
	var ds DatasetStats
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return DatasetStats{}, fmt.Errorf("failed to parse statistics %s: %w", path, err)
	}
	return ds, nil
}
