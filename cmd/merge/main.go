// Command merge concatenates FIRMS hotspot layers and removes duplicate
// acquisitions, preferring a designated instrument.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/madremonte/hotspot-data-etl/internal/config"
	"github.com/madremonte/hotspot-data-etl/internal/observability"
	"github.com/madremonte/hotspot-data-etl/internal/pipeline"
)

func main() {
	jobPath := flag.String("job", "job.yaml", "path to the YAML job file")
	flag.Parse()

	cfg, err := config.Load(*jobPath)
	if err != nil {
		slog.Error("failed to load job file", "error", err)
		os.Exit(1)
	}
	if err := cfg.Merge.Validate(); err != nil {
		slog.Error("invalid job file", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := observability.JobLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	metrics := observability.NewMetrics()

	merger := pipeline.NewMerger(logger, metrics)
	summary, err := merger.Run(pipeline.MergeParams{
		InputPaths:       cfg.Merge.Inputs,
		OutputPath:       cfg.Merge.Output,
		ExpectedCRS:      cfg.Merge.ExpectedCRS,
		FallbackCRS:      cfg.Merge.FallbackCRS,
		PreferInstrument: cfg.Merge.PreferInstrument,
		Version:          cfg.Merge.Version,
	})
	if err != nil {
		logger.Error("merge failed", "error", err)
		closeLog()
		os.Exit(1)
	}
	closeLog()

	fmt.Printf("merged %d records from %d layers into %s (%d duplicates dropped)\n",
		summary.RecordsOut, summary.Inputs, summary.OutputPath, summary.DuplicatesDropped)
}
