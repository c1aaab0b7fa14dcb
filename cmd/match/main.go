// Command match pairs each FIRMS hotspot with its temporally closest
// UNGRD disaster report in the same municipality.
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
	if err := cfg.Match.Validate(); err != nil {
		slog.Error("invalid job file", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := observability.JobLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	metrics := observability.NewMetrics()

	matcher := pipeline.NewMatcher(logger, metrics)
	summary, err := matcher.Run(pipeline.MatchParams{
		PointsPath: cfg.Match.Points,
		EventsPath: cfg.Match.Events,
		OutputPath: cfg.Match.Output,
		WindowDays: cfg.Match.WindowDays,
		Version:    cfg.Match.Version,
	})
	if err != nil {
		logger.Error("match failed", "error", err)
		closeLog()
		os.Exit(1)
	}
	closeLog()

	fmt.Printf("matched %d points against %d reports into %s (%d exact, %d within %d days, %d unmatched)\n",
		summary.Points, summary.EventRows, summary.OutputPath,
		summary.Exact, summary.Windowed, summary.WindowDays, summary.None)
}
