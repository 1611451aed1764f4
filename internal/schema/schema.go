// Package schema defines the data schema model, schema inference from
// statistics, curation edits, and anomaly validation.
package schema

import (
	"fmt"
	"os"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/uXmii/schemaflow/internal/stats"
)

// IntDomain restricts the valid range of an INT feature.
type IntDomain struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

// StringDomain restricts the valid values of a STRING feature.
type StringDomain struct {
	Values []string `yaml:"values"`
}

// Feature describes one expected field of the dataset.
type Feature struct {
	Name string          `yaml:"name"`
	Type stats.FieldType `yaml:"type"`

	IntDomain    *IntDomain    `yaml:"intDomain,omitempty"`
	StringDomain *StringDomain `yaml:"stringDomain,omitempty"`

	// NotInEnvironment lists environments the feature is excluded from.
	NotInEnvironment []string `yaml:"notInEnvironment,omitempty"`
}

// Schema describes the expected fields of a dataset and the environments
// it is validated in.
type Schema struct {
	Features []Feature `yaml:"features"`

	// DefaultEnvironments are the environments the schema applies to by
	// default.
	DefaultEnvironments []string `yaml:"defaultEnvironments,omitempty"`
}

// Feature returns the named feature and whether it exists.
func (s Schema) Feature(name string) (Feature, bool) {
	for _, f := range s.Features {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// HasFeature reports whether the named feature exists.
func (s Schema) HasFeature(name string) bool {
	_, ok := s.Feature(name)
	return ok
}

// featureIndex returns the index of the named feature, or -1.
func (s Schema) featureIndex(name string) int {
	return slices.IndexFunc(s.Features, func(f Feature) bool { return f.Name == name })
}

// Infer derives a schema from dataset statistics: INT features get an int
// domain from the observed min/max, STRING features get a string domain
// from the observed value set.
func Infer(ds stats.DatasetStats) Schema {
	var s Schema
	for _, f := range ds.Fields {
		feature := Feature{Name: f.Name, Type: f.Type}
		switch f.Type {
		case stats.TypeInt:
			feature.IntDomain = &IntDomain{Min: int64(f.Min), Max: int64(f.Max)}
		case stats.TypeString:
			if len(f.Values) > 0 {
				feature.StringDomain = &StringDomain{Values: slices.Clone(f.Values)}
			}
		}
		s.Features = append(s.Features, feature)
	}
	return s
}

// Write serializes the schema to the named YAML file.
func Write(s Schema, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write schema to %s: %w", path, err)
	}
	return nil
}

// Load reads a schema from the named YAML file.
func Load(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("failed to read schema from %s: %w", path, err)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}
	return s, nil
}
