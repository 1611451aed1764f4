package lineage

import (
	"bytes"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/uXmii/schemaflow/internal/metadata"
)

var lineageHeader = table.Row{
	"Artifact Type",
	"Artifact ID",
	"Execution ID",
	"Input IDs",
	"Output IDs",
}

// RenderRecord renders a lineage record as a table.
func RenderRecord(rec Record) string {
	t := table.NewWriter()
	t.AppendHeader(lineageHeader)
	t.AppendRow(table.Row{
		rec.ArtifactType,
		rec.ArtifactID,
		rec.ExecutionID,
		fmt.Sprint(rec.InputIDs),
		fmt.Sprint(rec.OutputIDs),
	})
	return t.Render()
}

// RenderSummary renders artifact counts by type as a table.
func RenderSummary(counts []TypeCount) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Artifact Type", "Count"})
	for _, c := range counts {
		t.AppendRow(table.Row{c.Type, c.Count})
	}
	return t.Render()
}

// RenderGraph renders a simple text lineage graph of the record.
func RenderGraph(rec Record) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Execution %d\n", rec.ExecutionID)
	buf.WriteString("Inputs:\n")
	for _, id := range rec.InputIDs {
		fmt.Fprintf(&buf, "  └── Artifact %d\n", id)
	}
	buf.WriteString("Outputs:\n")
	for _, id := range rec.OutputIDs {
		fmt.Fprintf(&buf, "  └── Artifact %d\n", id)
	}
	return buf.String()
}

// RenderArtifacts renders a list of artifacts as a table.
func RenderArtifacts(artifacts []metadata.Artifact) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Type", "URI"})
	for _, a := range artifacts {
		t.AppendRow(table.Row{a.ID, a.Type, a.URI})
	}
	return t.Render()
}
