// Command join attributes each hotspot with the department and
// municipality of the polygon it falls in, writing the columns the match
// pipeline reads.
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
	if err := cfg.Join.Validate(); err != nil {
		slog.Error("invalid job file", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := observability.JobLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	metrics := observability.NewMetrics()

	joiner := pipeline.NewAdminJoiner(logger, metrics)
	summary, err := joiner.Run(pipeline.AdminJoinParams{
		PointsPath:        cfg.Join.Points,
		AdminPath:         cfg.Join.Admin,
		DepartmentField:   cfg.Join.DepartmentField,
		MunicipalityField: cfg.Join.MunicipalityField,
		OutputPath:        cfg.Join.Output,
		Version:           cfg.Join.Version,
	})
	if err != nil {
		logger.Error("admin join failed", "error", err)
		closeLog()
		os.Exit(1)
	}
	closeLog()

	fmt.Printf("joined %d points into %s (%d attributed, %d outside every polygon)\n",
		summary.Points, summary.OutputPath, summary.JoinOK, summary.JoinFail)
}
