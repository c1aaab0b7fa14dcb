package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/madremonte/hotspot-data-etl/internal/adapter/geofile"
	"github.com/madremonte/hotspot-data-etl/internal/domain"
	"github.com/madremonte/hotspot-data-etl/internal/geo"
	"github.com/madremonte/hotspot-data-etl/internal/observability"
)

// AdminJoinParams configures one administrative attribute join. The output
// layer carries the columns the matching pipeline expects: normalized
// department, raw municipality, and year/month/day integers.
type AdminJoinParams struct {
	PointsPath string
	AdminPath  string

	// Column names on the admin polygon layer.
	DepartmentField   string
	MunicipalityField string

	PointColumns geofile.HotspotColumns
	FallbackCRS  string

	OutputPath string
	Version    bool
}

// AdminJoinSummary is the join pipeline's user-visible result.
type AdminJoinSummary struct {
	RunID       string
	GeneratedAt time.Time

	Points   int
	JoinOK   int
	JoinFail int

	OutputCRS  string
	OutputPath string
}

// AdminJoiner attributes each hotspot with the department and municipality
// of the polygon it falls in.
type AdminJoiner struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAdminJoiner creates an AdminJoiner with the given observability handles.
func NewAdminJoiner(logger *slog.Logger, metrics *observability.Metrics) *AdminJoiner {
	return &AdminJoiner{logger: logger, metrics: metrics}
}

// Run executes the join. Points outside every polygon stay in the output
// with empty admin fields; they are counted as join failures, not dropped.
func (a *AdminJoiner) Run(p AdminJoinParams) (*AdminJoinSummary, error) {
	start := time.Now()
	summary, err := a.run(p)
	observeRun(a.metrics, "adminjoin", start, err)
	return summary, err
}

func (a *AdminJoiner) run(p AdminJoinParams) (*AdminJoinSummary, error) {
	deptField := p.DepartmentField
	if deptField == "" {
		deptField = "Depto"
	}
	muniField := p.MunicipalityField
	if muniField == "" {
		muniField = "MpNombre"
	}
	cols := p.PointColumns
	if cols == (geofile.HotspotColumns{}) {
		cols = geofile.MergeColumns()
	}

	adminLayer, err := geofile.ReadLayer(p.AdminPath, p.FallbackCRS)
	if err != nil {
		return nil, err
	}
	if err := adminLayer.RequireFields("admin polygons", deptField, muniField); err != nil {
		return nil, err
	}

	pointsLayer, err := geofile.ReadLayer(p.PointsPath, p.FallbackCRS)
	if err != nil {
		return nil, err
	}
	if err := pointsLayer.RequireCRS(); err != nil {
		return nil, err
	}
	if pointsLayer.CRS != adminLayer.CRS {
		return nil, fmt.Errorf("points are in %s but admin polygons in %s; reproject one first",
			pointsLayer.CRS, adminLayer.CRS)
	}

	polys := make([]orb.Geometry, 0, len(adminLayer.Features))
	for _, f := range adminLayer.Features {
		polys = append(polys, f.Geometry)
	}
	index, err := geo.NewPolygonIndex(polys)
	if err != nil {
		return nil, err
	}

	points, _ := geofile.ParseHotspots(pointsLayer, cols)
	m := a.metrics
	summary := &AdminJoinSummary{
		RunID:       uuid.NewString(),
		GeneratedAt: domain.Now(),
		Points:      len(points),
	}
	m.RecordsRead.WithLabelValues("adminjoin").Add(float64(len(points)))

	out := &geofile.Layer{CRS: pointsLayer.CRS, Features: make([]*geojson.Feature, 0, len(points))}
	for _, h := range points {
		if i := index.FindXY(h.Geometry[0], h.Geometry[1]); i >= 0 {
			h.Department = geofile.StringProp(adminLayer.Features[i], deptField)
			h.Municipality = geofile.StringProp(adminLayer.Features[i], muniField)
			h.DepartmentKey = domain.Normalize(h.Department)
			h.MunicipalityKey = domain.Normalize(h.Municipality)
			summary.JoinOK++
		} else {
			summary.JoinFail++
		}
		out.Features = append(out.Features, adminJoinedFeature(h))
	}

	finalPath, err := geofile.WriteLayer(out, p.OutputPath, p.Version)
	if err != nil {
		return nil, err
	}
	summary.OutputCRS = pointsLayer.CRS
	summary.OutputPath = finalPath
	m.RecordsWritten.WithLabelValues("adminjoin").Add(float64(len(points)))

	a.logger.Info("admin join complete",
		"run_id", summary.RunID,
		"points", summary.Points,
		"join_ok", summary.JoinOK,
		"join_fail", summary.JoinFail,
		"output", finalPath,
	)
	return summary, nil
}

// adminJoinedFeature writes the shapefile-truncated column names the
// matching pipeline reads back (see geofile.MatchColumns).
func adminJoinedFeature(h domain.Hotspot) *geojson.Feature {
	f := geojson.NewFeature(h.Geometry)
	for k, v := range h.Attrs {
		f.Properties[k] = v
	}
	f.Properties["ACQ_DATE"] = h.AcqDateRaw
	f.Properties["INSTRUMENT"] = h.Instrument
	if h.Latitude != nil {
		f.Properties["LATITUDE"] = *h.Latitude
	}
	if h.Longitude != nil {
		f.Properties["LONGITUDE"] = *h.Longitude
	}
	f.Properties["depto_std"] = h.DepartmentKey
	f.Properties["mpnombre_s"] = h.Municipality
	if h.AcqDate != nil {
		f.Properties["anio"] = h.AcqDate.Year()
		f.Properties["mes"] = int(h.AcqDate.Month())
		f.Properties["dia"] = h.AcqDate.Day()
	}
	return f
}
