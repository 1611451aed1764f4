package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/uXmii/schemaflow/internal/config"
	"github.com/uXmii/schemaflow/internal/fileutil"
	"github.com/uXmii/schemaflow/internal/lineage"
	"github.com/uXmii/schemaflow/internal/logger"
	"github.com/uXmii/schemaflow/internal/logger/tag"
	"github.com/uXmii/schemaflow/internal/metadata"
	"github.com/uXmii/schemaflow/internal/pipeline"
)

const censusDataURL = "https://archive.ics.uci.edu/ml/machine-learning-databases/adult/adult.data"

// Run returns the command that executes the full pipeline.
func Run() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the five-stage schema pipeline",
		Long: `Run ingestion, statistics computation, schema inference, schema curation,
and anomaly validation in fixed order, then report artifact lineage from
the metadata store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.WithConfigFile(configFile))
			if err != nil {
				return err
			}
			return runPipeline(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "config file (default is ./schemaflow.yaml)")
	return cmd
}

func runPipeline(ctx context.Context, cfg *config.Config) error {
	logFile, err := fileutil.OpenOrCreateFile(cfg.Paths.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	opts := []logger.Option{
		logger.WithFormat(cfg.Global.LogFormat),
		logger.WithWriter(logFile),
	}
	if cfg.Global.Debug {
		opts = append(opts, logger.WithDebug())
	}
	if cfg.Global.Quiet {
		opts = append(opts, logger.WithQuiet())
	}
	ctx = logger.WithLogger(ctx, logger.NewLogger(opts...))

	for _, w := range cfg.Warnings {
		logger.Warn(ctx, w)
	}

	if err := fileutil.CreateDirs(cfg.Paths.PipelineRoot, cfg.Paths.DataRoot); err != nil {
		return err
	}

	dataFile := cfg.Paths.DataFile()
	if !fileutil.IsFile(dataFile) {
		logger.Warn(ctx, "Data file not found", tag.Path(dataFile))
		logger.Info(ctx, "Download the Census Income dataset from "+censusDataURL)
		logger.Infof(ctx, "Save it as %s and re-run", dataFile)
		return nil
	}
	if err := fileutil.ValidateDataFile(dataFile); err != nil {
		return fmt.Errorf("data file is not usable: %w", err)
	}
	if size, err := fileutil.FileSize(dataFile); err == nil {
		logger.Info(ctx, "Using data file", tag.Path(dataFile), "size", humanize.Bytes(uint64(size)))
	}

	store, err := metadata.Open(ctx, cfg.Paths.MetadataDB())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	coord := pipeline.NewCoordinator(cfg.Paths, store)
	result, err := coord.Run(ctx)
	if err != nil {
		logger.Error(ctx, "Pipeline execution failed", tag.Error(err))
		return err
	}

	displayResults(ctx, result)
	displayLineage(ctx, store)

	logger.Info(ctx, "Run completed successfully")
	return nil
}

// displayLineage prints the metadata tracking results: the lineage of the
// anomalies artifact, the schema artifacts, and the per-type artifact
// counts. All lookups are best effort.
func displayLineage(ctx context.Context, store *metadata.Store) {
	reporter := lineage.NewReporter(store)

	printSection("METADATA TRACKING RESULTS")
	rec, found := reporter.LineageOf(ctx, pipeline.TypeAnomalies)
	if !found {
		fmt.Println("No lineage information available.")
	} else {
		fmt.Println(lineage.RenderRecord(rec))
		fmt.Println(lineage.RenderGraph(rec))
		if info, ok := reporter.ExecutionInfo(ctx, rec.ExecutionID); ok {
			fmt.Printf("Produced by stage %s (state %s)\n", info.Stage, info.State)
		}
	}

	if schemas := reporter.ArtifactsOfType(ctx, pipeline.TypeSchema); len(schemas) > 0 {
		printSection("SCHEMA ARTIFACTS")
		fmt.Println(lineage.RenderArtifacts(schemas))
	}

	printSection("METADATA STORE SUMMARY")
	fmt.Println(lineage.RenderSummary(reporter.Summary(ctx)))
}
