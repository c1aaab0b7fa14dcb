// Package pipeline orchestrates the batch runs: deduplicating merge,
// FIRMS-vs-UNGRD matching, absence-point sampling, admin attribute join,
// and the fault-isolated batch clipper. Pipelines are single-threaded,
// synchronous, and hold the full working set in memory for one run.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"github.com/madremonte/hotspot-data-etl/internal/adapter/geofile"
	"github.com/madremonte/hotspot-data-etl/internal/domain"
	"github.com/madremonte/hotspot-data-etl/internal/observability"
)

// MergeParams configures one merge run. Everything is explicit; nothing is
// read from the environment.
type MergeParams struct {
	InputPaths []string
	OutputPath string

	// ExpectedCRS triggers a warning (never a reprojection) when an input
	// layer declares something else. Empty disables the check.
	ExpectedCRS string
	// FallbackCRS is used for output when every input layer is CRS-less.
	FallbackCRS string

	Columns          geofile.HotspotColumns
	RequiredFields   []string
	PreferInstrument string
	Version          bool
}

// MergeSummary is the merge pipeline's user-visible result.
type MergeSummary struct {
	RunID       string
	GeneratedAt time.Time

	Inputs            int
	RecordsIn         int
	RecordsOut        int
	DuplicatesDropped int
	NullKeyCollapsed  int
	BadCoordinates    int
	NullDates         int
	CRSMismatches     int

	OutputCRS  string
	OutputPath string
}

// Merger concatenates FIRMS point layers and keeps one record per
// (normalized date, coordinates) key, preferring a designated instrument.
type Merger struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewMerger creates a Merger with the given observability handles.
func NewMerger(logger *slog.Logger, metrics *observability.Metrics) *Merger {
	return &Merger{logger: logger, metrics: metrics}
}

// Run executes the merge. Configuration errors (missing files, missing
// fields, no usable CRS) abort before any output is written; data-quality
// coercions are counted and surfaced in the summary.
func (m *Merger) Run(p MergeParams) (*MergeSummary, error) {
	start := time.Now()
	summary, err := m.run(p)
	m.observeRun("merge", start, err)
	return summary, err
}

func (m *Merger) run(p MergeParams) (*MergeSummary, error) {
	if len(p.InputPaths) == 0 {
		return nil, fmt.Errorf("merge: no input paths")
	}
	cols := p.Columns
	if cols == (geofile.HotspotColumns{}) {
		cols = geofile.MergeColumns()
	}
	required := p.RequiredFields
	if required == nil {
		required = []string{cols.AcqDate, cols.Latitude, cols.Longitude, cols.Instrument}
	}
	prefer := p.PreferInstrument
	if prefer == "" {
		prefer = "MODIS"
	}

	summary := &MergeSummary{
		RunID:       uuid.NewString(),
		GeneratedAt: domain.Now(),
		Inputs:      len(p.InputPaths),
	}

	var allFeatures []*geojson.Feature
	outputCRS := ""
	for i, path := range p.InputPaths {
		layer, err := geofile.ReadLayer(path, "")
		if err != nil {
			return nil, err
		}
		if len(layer.Features) == 0 {
			return nil, fmt.Errorf("merge: layer %s is empty", path)
		}
		if outputCRS == "" {
			outputCRS = layer.CRS
		}
		if p.ExpectedCRS != "" && layer.CRS != p.ExpectedCRS {
			summary.CRSMismatches++
			m.metrics.CRSMismatches.Inc()
			m.logger.Warn("layer CRS differs from expected, continuing without reprojection",
				"layer", path, "crs", layer.CRS, "expected", p.ExpectedCRS)
		}
		m.logger.Info("layer read", "index", i+1, "path", path, "features", len(layer.Features), "crs", layer.CRS)
		allFeatures = append(allFeatures, layer.Features...)
	}
	if outputCRS == "" {
		outputCRS = p.FallbackCRS
	}

	// Field validation runs over the concatenated schema, matching how a
	// column survives concatenation when any source carries it.
	combined := &geofile.Layer{CRS: outputCRS, Features: allFeatures}
	if err := combined.RequireFields("merged FIRMS layers", required...); err != nil {
		return nil, err
	}

	all, stats := geofile.ParseHotspots(combined, cols)
	summary.RecordsIn = len(all)
	summary.BadCoordinates = stats.BadCoordinates
	summary.NullDates = stats.NullDates
	m.metrics.RecordsRead.WithLabelValues("merge").Add(float64(len(all)))
	m.metrics.NullDates.WithLabelValues("merge").Add(float64(stats.NullDates))
	if stats.BadCoordinates > 0 {
		m.logger.Warn("rows with non-numeric coordinates", "count", stats.BadCoordinates)
	}

	kept, dedupStats := domain.Deduplicate(all, domain.AcquisitionKey, prefer)
	summary.RecordsOut = len(kept)
	summary.DuplicatesDropped = dedupStats.Dropped
	summary.NullKeyCollapsed = dedupStats.NullKeyCollapsed
	m.metrics.DuplicatesDropped.Add(float64(dedupStats.Dropped))
	m.metrics.NullKeyCollapsed.Add(float64(dedupStats.NullKeyCollapsed))

	out := &geofile.Layer{CRS: outputCRS, Features: make([]*geojson.Feature, 0, len(kept))}
	for _, h := range kept {
		out.Features = append(out.Features, geofile.HotspotFeature(h))
	}

	finalPath, err := geofile.WriteLayer(out, p.OutputPath, p.Version)
	if err != nil {
		return nil, err
	}
	summary.OutputCRS = outputCRS
	summary.OutputPath = finalPath
	m.metrics.RecordsWritten.WithLabelValues("merge").Add(float64(len(kept)))

	m.logger.Info("merge complete",
		"run_id", summary.RunID,
		"inputs", summary.Inputs,
		"records_in", summary.RecordsIn,
		"records_out", summary.RecordsOut,
		"dropped", summary.DuplicatesDropped,
		"null_key_collapsed", summary.NullKeyCollapsed,
		"output", finalPath,
	)
	return summary, nil
}

// observeRun records duration and outcome for a pipeline run.
func (m *Merger) observeRun(name string, start time.Time, err error) {
	observeRun(m.metrics, name, start, err)
}

func observeRun(metrics *observability.Metrics, name string, start time.Time, err error) {
	metrics.RunDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RunsCompleted.WithLabelValues(name, outcome).Inc()
}
