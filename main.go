package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/uXmii/schemaflow/internal/build"
	"github.com/uXmii/schemaflow/internal/cmd"
)

var rootCmd = &cobra.Command{
	Use:   build.Slug,
	Short: "Schemaflow curates a data schema through a fixed pipeline",
	Long: `Schemaflow runs a fixed five-stage data pipeline over the Census Income
dataset: ingestion, statistics computation, schema inference, schema
curation, and anomaly validation. Every stage execution is recorded in a
local metadata store, and artifact lineage is reported after the run.
`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(cmd.Run())
	rootCmd.AddCommand(cmd.Version())

	build.Version = version
}

var version = "0.0.0"
