// Command export submits monthly Landsat composite exports over an area
// of interest to the imagery service, one task per month.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/madremonte/hotspot-data-etl/internal/adapter/geofile"
	"github.com/madremonte/hotspot-data-etl/internal/adapter/imagery"
	"github.com/madremonte/hotspot-data-etl/internal/config"
	"github.com/madremonte/hotspot-data-etl/internal/observability"
)

func main() {
	jobPath := flag.String("job", "job.yaml", "path to the YAML job file")
	aoiPath := flag.String("aoi", "", "AOI layer the exports are clipped to")
	year := flag.Int("year", 0, "year to export")
	scale := flag.Float64("scale", 30, "export resolution in meters")
	dryRun := flag.Bool("dry-run", false, "validate requests without queuing tasks")
	wait := flag.Bool("wait", false, "poll each task until it finishes")
	flag.Parse()

	if *aoiPath == "" || *year == 0 {
		slog.Error("both -aoi and -year are required")
		os.Exit(1)
	}

	cfg, err := config.Load(*jobPath)
	if err != nil {
		slog.Error("failed to load job file", "error", err)
		os.Exit(1)
	}
	if cfg.Imagery.BaseURL == "" {
		slog.Error("invalid job file", "error", "imagery: base_url is required")
		os.Exit(1)
	}
	token, err := config.ImageryToken()
	if err != nil {
		slog.Error("missing credentials", "error", err)
		os.Exit(1)
	}
	timeout, err := cfg.Imagery.ClientTimeout()
	if err != nil {
		slog.Error("invalid job file", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := observability.JobLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer closeLog()

	aoi, err := geofile.ReadLayer(*aoiPath, "")
	if err != nil {
		logger.Error("failed to read AOI", "error", err)
		os.Exit(1)
	}
	if err := aoi.RequireCRS(); err != nil {
		logger.Error("AOI has no CRS", "error", err)
		os.Exit(1)
	}
	bounds, err := layerBounds(aoi)
	if err != nil {
		logger.Error("failed to compute AOI bounds", "error", err)
		os.Exit(1)
	}

	client := imagery.NewClient(cfg.Imagery.BaseURL, token, timeout, logger)
	catalog := imagery.NewCachedCatalog(client, cfg.Imagery.CacheSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed := 0
	for month := 1; month <= 12; month++ {
		comp, err := catalog.Composite(ctx, *year, month)
		if err != nil {
			logger.Error("composite lookup failed", "month", month, "error", err)
			failed++
			continue
		}
		if comp.Scenes == 0 {
			logger.Warn("no scenes for month, skipping", "composite", imagery.CompositeName(*year, month))
			continue
		}

		task, err := client.SubmitExport(ctx, imagery.ExportRequest{
			Year:        *year,
			Month:       month,
			Bounds:      bounds,
			CRS:         aoi.CRS,
			ScaleMeters: *scale,
			DryRun:      *dryRun,
		})
		if err != nil {
			logger.Error("export submission failed", "month", month, "error", err)
			failed++
			continue
		}
		fmt.Printf("%s: task %s (%s)\n", comp.Name, task.ID, task.State)

		if *wait && !*dryRun {
			done, err := client.WaitForTask(ctx, task.ID, 10*time.Second)
			if err != nil {
				logger.Error("task polling failed", "task_id", task.ID, "error", err)
				failed++
				continue
			}
			fmt.Printf("%s: task %s finished %s\n", comp.Name, done.ID, done.State)
			if done.State == imagery.TaskFailed {
				failed++
			}
		}
	}

	if failed > 0 {
		logger.Error("some exports failed", "count", failed)
		closeLog()
		os.Exit(1)
	}
}

// layerBounds is the bounding box of every feature in the layer.
func layerBounds(l *geofile.Layer) ([4]float64, error) {
	if len(l.Features) == 0 {
		return [4]float64{}, fmt.Errorf("AOI layer has no features")
	}
	bound := l.Features[0].Geometry.Bound()
	for _, f := range l.Features[1:] {
		bound = bound.Union(f.Geometry.Bound())
	}
	return [4]float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]}, nil
}
