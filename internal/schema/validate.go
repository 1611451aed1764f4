package schema

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/uXmii/schemaflow/internal/stats"
)

// Anomaly is a detected deviation of observed data from the schema.
type Anomaly struct {
	Feature     string `yaml:"feature"`
	Short       string `yaml:"short"`
	Description string `yaml:"description"`
}

// Anomalies is the result of validating statistics against a schema.
type Anomalies struct {
	Anomalies []Anomaly `yaml:"anomalies,omitempty"`
}

// Empty reports whether no anomalies were detected.
func (a Anomalies) Empty() bool {
	return len(a.Anomalies) == 0
}

// Validate diffs dataset statistics against the schema and reports every
// deviation: schema features absent from the data, fields absent from the
// schema, type mismatches, and domain violations.
func Validate(s Schema, ds stats.DatasetStats) Anomalies {
	var out Anomalies

	for _, feature := range s.Features {
		fs, ok := ds.Field(feature.Name)
		if !ok {
			out.Anomalies = append(out.Anomalies, Anomaly{
				Feature:     feature.Name,
				Short:       "Column dropped",
				Description: "Feature is declared in the schema but absent from the data.",
			})
			continue
		}

		if fs.Count > 0 && fs.Type != feature.Type {
			out.Anomalies = append(out.Anomalies, Anomaly{
				Feature:     feature.Name,
				Short:       "Unexpected type",
				Description: fmt.Sprintf("Expected %s but observed %s.", feature.Type, fs.Type),
			})
			continue
		}

		if feature.IntDomain != nil {
			d := feature.IntDomain
			if fs.Count > 0 && (int64(fs.Min) < d.Min || int64(fs.Max) > d.Max) {
				out.Anomalies = append(out.Anomalies, Anomaly{
					Feature: feature.Name,
					Short:   "Out-of-range values",
					Description: fmt.Sprintf("Observed range [%d, %d] exceeds domain [%d, %d].",
						int64(fs.Min), int64(fs.Max), d.Min, d.Max),
				})
			}
		}

		if feature.StringDomain != nil {
			if unexpected := missingFrom(fs.Values, feature.StringDomain.Values); len(unexpected) > 0 {
				out.Anomalies = append(out.Anomalies, Anomaly{
					Feature:     feature.Name,
					Short:       "Unexpected string values",
					Description: fmt.Sprintf("Values not in domain: %s.", strings.Join(unexpected, ", ")),
				})
			}
		}
	}

	for _, fs := range ds.Fields {
		if !s.HasFeature(fs.Name) {
			out.Anomalies = append(out.Anomalies, Anomaly{
				Feature:     fs.Name,
				Short:       "New column",
				Description: "Field appears in the data but not in the schema.",
			})
		}
	}

	return out
}

// missingFrom returns the elements of values that are not in domain.
func missingFrom(values, domain []string) []string {
	allowed := make(map[string]struct{}, len(domain))
	for _, v := range domain {
		allowed[v] = struct{}{}
	}
	var out []string
	for _, v := range values {
		if _, ok := allowed[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// WriteAnomalies serializes anomalies to the named YAML file.
func WriteAnomalies(a Anomalies, path string) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal anomalies: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write anomalies to %s: %w", path, err)
	}
	return nil
}

// LoadAnomalies reads anomalies from the named YAML file.
func LoadAnomalies(path string) (Anomalies, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Anomalies{}, fmt.Errorf("failed to read anomalies from %s: %w", path, err)
	}
	var a Anomalies
	if err := yaml.Unmarshal(data, &a); err != nil {
		return Anomalies{}, fmt.Errorf("failed to parse anomalies %s: %w", path, err)
	}
	return a, nil
}
