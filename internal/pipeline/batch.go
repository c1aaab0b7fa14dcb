package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/madremonte/hotspot-data-etl/internal/adapter/geofile"
	"github.com/madremonte/hotspot-data-etl/internal/domain"
	"github.com/madremonte/hotspot-data-etl/internal/geo"
	"github.com/madremonte/hotspot-data-etl/internal/observability"
)

// ClipBatchParams configures one batch clip over a directory of point
// layers. Pattern is a filepath.Glob pattern relative to InputDir.
type ClipBatchParams struct {
	InputDir string
	Pattern  string
	AOIPath  string

	OutputDir   string
	Suffix      string
	FallbackCRS string
	Version     bool
}

// FileResult records the outcome of one file in a batch.
type FileResult struct {
	Input   string
	Output  string
	Kept    int
	Dropped int
	Err     error
}

// BatchSummary is the batch clipper's user-visible result.
type BatchSummary struct {
	RunID       string
	GeneratedAt time.Time

	Files     int
	Succeeded int
	Failed    int

	Kept    int
	Dropped int

	Results []FileResult
}

// Clipper clips every point layer in a directory against one AOI polygon
// layer. A failing file is logged and counted, never fatal; the batch keeps
// going so one corrupt year does not sink a decade of downloads.
type Clipper struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClipper creates a Clipper with the given observability handles.
func NewClipper(logger *slog.Logger, metrics *observability.Metrics) *Clipper {
	return &Clipper{logger: logger, metrics: metrics}
}

// Run executes the batch. It fails outright only when the AOI cannot be
// read or the glob matches nothing; per-file errors land in the summary.
func (c *Clipper) Run(ctx context.Context, p ClipBatchParams) (*BatchSummary, error) {
	start := time.Now()
	summary, err := c.run(ctx, p)
	observeRun(c.metrics, "clip", start, err)
	return summary, err
}

func (c *Clipper) run(ctx context.Context, p ClipBatchParams) (*BatchSummary, error) {
	pattern := p.Pattern
	if pattern == "" {
		pattern = "*.geojson"
	}
	suffix := p.Suffix
	if suffix == "" {
		suffix = "_clip"
	}
	outDir := p.OutputDir
	if outDir == "" {
		outDir = p.InputDir
	}

	aoiLayer, err := geofile.ReadLayer(p.AOIPath, p.FallbackCRS)
	if err != nil {
		return nil, err
	}
	if err := aoiLayer.RequireCRS(); err != nil {
		return nil, fmt.Errorf("AOI layer %s: %w", p.AOIPath, err)
	}
	polys := make([]orb.Geometry, 0, len(aoiLayer.Features))
	for _, f := range aoiLayer.Features {
		polys = append(polys, f.Geometry)
	}
	coverage, err := geo.NewCoverage(polys, aoiLayer.CRS)
	if err != nil {
		return nil, err
	}

	inputs, err := filepath.Glob(filepath.Join(p.InputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no files match %s in %s", pattern, p.InputDir)
	}

	summary := &BatchSummary{
		RunID:       uuid.NewString(),
		GeneratedAt: domain.Now(),
		Files:       len(inputs),
	}
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res := c.clipOne(input, outDir, suffix, coverage, p)
		summary.Results = append(summary.Results, res)
		if res.Err != nil {
			summary.Failed++
			c.metrics.BatchFiles.WithLabelValues("error").Inc()
			c.logger.Error("file failed, continuing batch", "input", input, "error", res.Err)
			continue
		}
		summary.Succeeded++
		summary.Kept += res.Kept
		summary.Dropped += res.Dropped
		c.metrics.BatchFiles.WithLabelValues("ok").Inc()
		c.logger.Info("file clipped", "input", input, "kept", res.Kept, "dropped", res.Dropped, "output", res.Output)
	}

	c.logger.Info("batch complete",
		"run_id", summary.RunID,
		"files", summary.Files,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"kept", summary.Kept,
		"dropped", summary.Dropped,
	)
	return summary, nil
}

func (c *Clipper) clipOne(input, outDir, suffix string, coverage *geo.Coverage, p ClipBatchParams) FileResult {
	res := FileResult{Input: input}

	layer, err := geofile.ReadLayer(input, p.FallbackCRS)
	if err != nil {
		res.Err = err
		return res
	}
	if layer.CRS != "" && layer.CRS != coverage.CRS {
		res.Err = fmt.Errorf("layer is in %s but AOI in %s; reproject one first", layer.CRS, coverage.CRS)
		return res
	}

	out := &geofile.Layer{CRS: coverage.CRS}
	for _, f := range layer.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			res.Dropped++
			continue
		}
		if coverage.IntersectsXY(pt[0], pt[1]) {
			out.Features = append(out.Features, f)
			res.Kept++
		} else {
			res.Dropped++
		}
	}
	if out.Features == nil {
		out.Features = []*geojson.Feature{}
	}

	outPath := filepath.Join(outDir, clipName(filepath.Base(input), suffix))
	finalPath, err := geofile.WriteLayer(out, outPath, p.Version)
	if err != nil {
		res.Err = err
		return res
	}
	res.Output = finalPath
	c.metrics.RecordsWritten.WithLabelValues("clip").Add(float64(res.Kept))
	return res
}

// clipName inserts the suffix before the extension: firms_2019.geojson
// becomes firms_2019_clip.geojson.
func clipName(base, suffix string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + suffix + ext
}
