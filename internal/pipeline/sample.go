package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/madremonte/hotspot-data-etl/internal/adapter/geofile"
	"github.com/madremonte/hotspot-data-etl/internal/domain"
	"github.com/madremonte/hotspot-data-etl/internal/geo"
	"github.com/madremonte/hotspot-data-etl/internal/observability"
)

// SampleParams configures one absence-point sampling run. Both layers must
// already be in TargetCRS, a projected meter-based system so the buffer
// radius means meters; this pipeline never reprojects.
type SampleParams struct {
	AOIPath        string
	ExclusionsPath string

	TargetCRS    string
	BufferMeters float64

	TargetCount       int
	Seed              uint64
	MaxAttemptsFactor int

	OutputPath string
	Version    bool
}

// SampleSummary is the sampling pipeline's user-visible result.
type SampleSummary struct {
	RunID       string
	GeneratedAt time.Time

	Requested int
	Obtained  int
	Attempts  int

	BufferMeters float64
	Seed         uint64
	RegionType   string

	OutputCRS  string
	OutputPath string
}

// Sampler draws reproducible pseudo-absence points from the AOI minus a
// buffer around every known hotspot.
type Sampler struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSampler creates a Sampler with the given observability handles.
func NewSampler(logger *slog.Logger, metrics *observability.Metrics) *Sampler {
	return &Sampler{logger: logger, metrics: metrics}
}

// Run executes the sampling. An exhausted attempt budget fails with
// geo.InsufficientSamplesError carrying the partial progress.
func (s *Sampler) Run(p SampleParams) (*SampleSummary, error) {
	start := time.Now()
	summary, err := s.run(p)
	observeRun(s.metrics, "sample", start, err)
	return summary, err
}

func (s *Sampler) run(p SampleParams) (*SampleSummary, error) {
	if p.TargetCRS == "" {
		return nil, geofile.ErrMissingCRS
	}

	aoiLayer, err := s.readInCRS(p.AOIPath, "AOI", p.TargetCRS)
	if err != nil {
		return nil, err
	}
	exclLayer, err := s.readInCRS(p.ExclusionsPath, "exclusion points", p.TargetCRS)
	if err != nil {
		return nil, err
	}

	aoi := make([]orb.Geometry, 0, len(aoiLayer.Features))
	for _, f := range aoiLayer.Features {
		aoi = append(aoi, f.Geometry)
	}
	exclusions := make([]orb.Point, 0, len(exclLayer.Features))
	for _, f := range exclLayer.Features {
		if pt, ok := f.Geometry.(orb.Point); ok {
			exclusions = append(exclusions, pt)
		}
	}
	if len(exclusions) == 0 {
		return nil, fmt.Errorf("exclusion layer %s has no point features; cannot build buffers", p.ExclusionsPath)
	}

	region, err := geo.BuildEligibleRegion(aoi, exclusions, p.BufferMeters, p.TargetCRS)
	if err != nil {
		return nil, err
	}
	minX, minY, maxX, maxY := region.Bounds()
	s.logger.Info("eligible region built",
		"type", region.GeometryType(),
		"bounds", fmt.Sprintf("%.1f %.1f %.1f %.1f", minX, minY, maxX, maxY),
		"buffer_m", p.BufferMeters,
	)

	points, stats, sampleErr := geo.SamplePoints(region, p.TargetCount, p.Seed, p.MaxAttemptsFactor)
	s.metrics.SamplerAttempts.Add(float64(stats.Attempts))
	s.metrics.SamplerAccepted.Add(float64(stats.Obtained))
	if sampleErr != nil {
		s.logger.Error("sampling exhausted attempt budget",
			"obtained", stats.Obtained, "requested", stats.Requested, "attempts", stats.Attempts)
		return nil, sampleErr
	}

	out := &geofile.Layer{CRS: p.TargetCRS, Features: geofile.PointFeatures(points)}
	finalPath, err := geofile.WriteLayer(out, p.OutputPath, p.Version)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordsWritten.WithLabelValues("sample").Add(float64(len(points)))

	summary := &SampleSummary{
		RunID:        uuid.NewString(),
		GeneratedAt:  domain.Now(),
		Requested:    stats.Requested,
		Obtained:     stats.Obtained,
		Attempts:     stats.Attempts,
		BufferMeters: p.BufferMeters,
		Seed:         p.Seed,
		RegionType:   region.GeometryType(),
		OutputCRS:    p.TargetCRS,
		OutputPath:   finalPath,
	}
	s.logger.Info("sampling complete",
		"run_id", summary.RunID,
		"obtained", summary.Obtained,
		"attempts", summary.Attempts,
		"seed", p.Seed,
		"output", finalPath,
	)
	return summary, nil
}

// readInCRS reads a layer and insists it is already in the target CRS.
// Reprojection happens upstream of this pipeline, never inside it.
func (s *Sampler) readInCRS(path, what, targetCRS string) (*geofile.Layer, error) {
	layer, err := geofile.ReadLayer(path, "")
	if err != nil {
		return nil, err
	}
	if err := layer.RequireCRS(); err != nil {
		return nil, fmt.Errorf("%s layer %s: %w", what, path, err)
	}
	if len(layer.Features) == 0 {
		return nil, fmt.Errorf("%s layer %s is empty", what, path)
	}
	if layer.CRS != targetCRS {
		return nil, fmt.Errorf("%s layer %s is in %s, want %s; reproject it first", what, path, layer.CRS, targetCRS)
	}
	return layer, nil
}
