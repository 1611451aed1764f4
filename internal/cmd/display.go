package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/uXmii/schemaflow/internal/logger"
	"github.com/uXmii/schemaflow/internal/logger/tag"
	"github.com/uXmii/schemaflow/internal/pipeline"
	"github.com/uXmii/schemaflow/internal/schema"
)

const sectionWidth = 60

func printSection(title string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", sectionWidth))
	fmt.Printf(" %s\n", title)
	fmt.Println(strings.Repeat("=", sectionWidth))
}

// displayResults prints the curated schema and the validation results.
// Display failures are logged, never fatal.
func displayResults(ctx context.Context, result *pipeline.RunResult) {
	curated, err := schema.Load(result.CuratedSchema.URI)
	if err != nil {
		logger.Error(ctx, "Failed to display curated schema", tag.Error(err))
	} else {
		printSection("CURATED SCHEMA")
		fmt.Printf("Default environments: %s\n", strings.Join(curated.DefaultEnvironments, ", "))
		fmt.Println(renderSchema(curated))
	}

	anomalies, err := schema.LoadAnomalies(result.Anomalies.URI)
	if err != nil {
		logger.Error(ctx, "Failed to display validation results", tag.Error(err))
		return
	}
	printSection("VALIDATION RESULTS")
	if anomalies.Empty() {
		fmt.Println("No anomalies found.")
		return
	}
	fmt.Println(renderAnomalies(anomalies))
}

func renderSchema(s schema.Schema) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Feature", "Type", "Domain", "Not In Environment"})
	for _, f := range s.Features {
		t.AppendRow(table.Row{
			f.Name,
			f.Type,
			describeDomain(f),
			strings.Join(f.NotInEnvironment, ", "),
		})
	}
	return t.Render()
}

func describeDomain(f schema.Feature) string {
	switch {
	case f.IntDomain != nil:
		return fmt.Sprintf("[%d, %d]", f.IntDomain.Min, f.IntDomain.Max)
	case f.StringDomain != nil:
		return fmt.Sprintf("%d values", len(f.StringDomain.Values))
	default:
		return ""
	}
}

func renderAnomalies(a schema.Anomalies) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Feature", "Anomaly", "Description"})
	for _, an := range a.Anomalies {
		t.AppendRow(table.Row{an.Feature, an.Short, an.Description})
	}
	return t.Render()
}
