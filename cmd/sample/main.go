// Command sample draws reproducible pseudo-absence points from an area of
// interest, excluding a buffer around every known hotspot.
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
	if err := cfg.Sample.Validate(); err != nil {
		slog.Error("invalid job file", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := observability.JobLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	metrics := observability.NewMetrics()

	sampler := pipeline.NewSampler(logger, metrics)
	summary, err := sampler.Run(pipeline.SampleParams{
		AOIPath:           cfg.Sample.AOI,
		ExclusionsPath:    cfg.Sample.Exclusions,
		TargetCRS:         cfg.Sample.CRS,
		BufferMeters:      cfg.Sample.BufferMeters,
		TargetCount:       cfg.Sample.Count,
		Seed:              cfg.Sample.Seed,
		MaxAttemptsFactor: cfg.Sample.MaxAttemptsFactor,
		OutputPath:        cfg.Sample.Output,
		Version:           cfg.Sample.Version,
	})
	if err != nil {
		logger.Error("sampling failed", "error", err)
		closeLog()
		os.Exit(1)
	}
	closeLog()

	fmt.Printf("sampled %d points (seed %d, %d attempts) into %s\n",
		summary.Obtained, summary.Seed, summary.Attempts, summary.OutputPath)
}
