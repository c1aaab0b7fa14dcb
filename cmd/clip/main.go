// Command clip walks a directory of hotspot layers and clips each one to
// an area of interest. A failing file is logged and skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

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
	if err := cfg.Clip.Validate(); err != nil {
		slog.Error("invalid job file", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := observability.JobLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clipper := pipeline.NewClipper(logger, metrics)
	summary, err := clipper.Run(ctx, pipeline.ClipBatchParams{
		InputDir:  cfg.Clip.InputDir,
		Pattern:   cfg.Clip.Pattern,
		AOIPath:   cfg.Clip.AOI,
		OutputDir: cfg.Clip.OutputDir,
		Suffix:    cfg.Clip.Suffix,
		Version:   cfg.Clip.Version,
	})
	if err != nil {
		logger.Error("batch clip failed", "error", err)
		closeLog()
		os.Exit(1)
	}
	closeLog()

	fmt.Printf("clipped %d of %d files (%d points kept, %d dropped, %d files failed)\n",
		summary.Succeeded, summary.Files, summary.Kept, summary.Dropped, summary.Failed)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
