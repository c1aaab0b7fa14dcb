package pipeline

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"github.com/madremonte/hotspot-data-etl/internal/adapter/geofile"
	"github.com/madremonte/hotspot-data-etl/internal/adapter/xlsx"
	"github.com/madremonte/hotspot-data-etl/internal/domain"
	"github.com/madremonte/hotspot-data-etl/internal/observability"
)

// MatchParams configures one FIRMS-vs-UNGRD matching run.
type MatchParams struct {
	PointsPath   string
	PointColumns geofile.HotspotColumns

	EventsPath   string
	EventColumns xlsx.EventColumns

	// FallbackCRS applies when the points layer carries no CRS member; if
	// both are empty the run aborts, since the base layer must have one.
	FallbackCRS string

	OutputPath string
	WindowDays int
	Version    bool
}

// MatchSummary is the matching pipeline's user-visible result.
type MatchSummary struct {
	RunID       string
	GeneratedAt time.Time

	Points     int
	EventRows  int
	Candidates int

	// PointsWithEvent counts points whose best match carries an event date,
	// regardless of tier.
	PointsWithEvent int
	Exact           int
	Windowed        int
	None            int

	NullPointDates int
	NullEventDates int

	WindowDays int
	OutputPath string
}

// Matcher pairs each FIRMS hotspot with its temporally closest UNGRD
// disaster report in the same municipality.
type Matcher struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewMatcher creates a Matcher with the given observability handles.
func NewMatcher(logger *slog.Logger, metrics *observability.Metrics) *Matcher {
	return &Matcher{logger: logger, metrics: metrics}
}

// Run executes the match. Zero matches is a valid outcome; the run only
// fails on configuration errors (missing inputs, missing fields, missing
// CRS on the points layer).
func (m *Matcher) Run(p MatchParams) (*MatchSummary, error) {
	start := time.Now()
	summary, err := m.run(p)
	observeRun(m.metrics, "match", start, err)
	return summary, err
}

func (m *Matcher) run(p MatchParams) (*MatchSummary, error) {
	cols := p.PointColumns
	if cols == (geofile.HotspotColumns{}) {
		cols = geofile.MatchColumns()
	}
	eventCols := p.EventColumns
	if eventCols == (xlsx.EventColumns{}) {
		eventCols = xlsx.DefaultEventColumns()
	}
	window := p.WindowDays
	if window <= 0 {
		window = domain.DefaultWindowDays
	}

	events, eventStats, err := xlsx.ReadEvents(p.EventsPath, eventCols)
	if err != nil {
		return nil, err
	}
	m.logger.Info("events read", "path", p.EventsPath, "rows", eventStats.Rows, "null_dates", eventStats.NullDates)

	layer, err := geofile.ReadLayer(p.PointsPath, p.FallbackCRS)
	if err != nil {
		return nil, err
	}
	if err := layer.RequireCRS(); err != nil {
		return nil, err
	}
	if err := layer.RequireFields("FIRMS points layer",
		cols.Department, cols.Municipality, cols.Year, cols.Month, cols.Day); err != nil {
		return nil, err
	}

	points, pointStats := geofile.ParseHotspots(layer, cols)
	m.logger.Info("points read", "path", p.PointsPath, "points", len(points), "null_dates", pointStats.NullDates)
	m.metrics.RecordsRead.WithLabelValues("match").Add(float64(len(points)))
	m.metrics.NullDates.WithLabelValues("match").Add(float64(pointStats.NullDates + eventStats.NullDates))

	candidates := domain.BuildCandidates(points, events)
	results := domain.BestMatches(candidates, events, len(points), window)
	matched := domain.AttachMatches(points, results)

	summary := &MatchSummary{
		RunID:          uuid.NewString(),
		GeneratedAt:    domain.Now(),
		Points:         len(points),
		EventRows:      len(events),
		Candidates:     len(candidates),
		NullPointDates: pointStats.NullDates,
		NullEventDates: eventStats.NullDates,
		WindowDays:     window,
	}

	out := &geofile.Layer{CRS: layer.CRS, Features: make([]*geojson.Feature, 0, len(matched))}
	for _, mh := range matched {
		switch mh.Match.Tier {
		case domain.TierExact:
			summary.Exact++
		case domain.TierWindowed:
			summary.Windowed++
		default:
			summary.None++
		}
		if mh.Match.EventDate != nil {
			summary.PointsWithEvent++
		}
		m.metrics.MatchesByTier.WithLabelValues(string(mh.Match.Tier)).Inc()
		out.Features = append(out.Features, geofile.MatchedFeature(mh))
	}

	finalPath, err := geofile.WriteLayer(out, p.OutputPath, p.Version)
	if err != nil {
		return nil, err
	}
	summary.OutputPath = finalPath
	m.metrics.RecordsWritten.WithLabelValues("match").Add(float64(len(matched)))

	m.logger.Info("match complete",
		"run_id", summary.RunID,
		"points", summary.Points,
		"event_rows", summary.EventRows,
		"candidates", summary.Candidates,
		"exact", summary.Exact,
		"windowed", summary.Windowed,
		"none", summary.None,
		"window_days", window,
		"output", finalPath,
	)
	return summary, nil
}
