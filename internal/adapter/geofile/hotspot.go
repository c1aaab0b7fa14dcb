package geofile

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/madremonte/hotspot-data-etl/internal/domain"
)

// HotspotColumns names the source columns a hotspot layer stores its
// fields under. Zero-valued names mean "not present in this flavor":
// merge inputs carry a raw AcqDate column, admin-joined match inputs carry
// year/month/day integer columns instead.
type HotspotColumns struct {
	AcqDate    string
	Latitude   string
	Longitude  string
	Instrument string

	Department   string
	Municipality string

	Year  string
	Month string
	Day   string
}

// MergeColumns are the FIRMS download column names merge inputs use.
func MergeColumns() HotspotColumns {
	return HotspotColumns{
		AcqDate:    "ACQ_DATE",
		Latitude:   "LATITUDE",
		Longitude:  "LONGITUDE",
		Instrument: "INSTRUMENT",
	}
}

// MatchColumns are the shapefile-truncated column names admin-joined
// layers use.
func MatchColumns() HotspotColumns {
	return HotspotColumns{
		Department:   "depto_std",
		Municipality: "mpnombre_s",
		Year:         "anio",
		Month:        "mes",
		Day:          "dia",
	}
}

// CoercionStats counts non-fatal data-quality coercions performed while
// parsing a layer.
type CoercionStats struct {
	BadCoordinates int
	NullDates      int
	BadGeometries  int
}

// ParseHotspots maps layer features to domain records. Coercion failures
// (non-numeric coordinates, unparseable dates) become nils and are
// counted, never fatal. Features without point geometry are skipped and
// counted; a point layer containing anything else is malformed upstream.
func ParseHotspots(l *Layer, cols HotspotColumns) ([]domain.Hotspot, CoercionStats) {
	var stats CoercionStats
	records := make([]domain.Hotspot, 0, len(l.Features))

	for _, f := range l.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			stats.BadGeometries++
			continue
		}

		h := domain.Hotspot{Geometry: pt, Attrs: passthrough(f, cols)}

		if cols.Latitude != "" {
			h.Latitude = FloatProp(f, cols.Latitude)
			h.Longitude = FloatProp(f, cols.Longitude)
			if h.Latitude == nil || h.Longitude == nil {
				stats.BadCoordinates++
			}
		}
		if cols.Instrument != "" {
			h.Instrument = StringProp(f, cols.Instrument)
		}
		if cols.Department != "" {
			h.Department = StringProp(f, cols.Department)
			h.DepartmentKey = domain.Normalize(h.Department)
		}
		if cols.Municipality != "" {
			h.Municipality = StringProp(f, cols.Municipality)
			h.MunicipalityKey = domain.Normalize(h.Municipality)
		}

		switch {
		case cols.Year != "":
			h.AcqDate = domain.DateFromYMD(IntProp(f, cols.Year), IntProp(f, cols.Month), IntProp(f, cols.Day))
			if h.AcqDate == nil {
				stats.NullDates++
			}
		case cols.AcqDate != "":
			h.AcqDateRaw = StringProp(f, cols.AcqDate)
			h.AcqDate = domain.ParseDayFirst(h.AcqDateRaw)
			if h.AcqDate == nil {
				stats.NullDates++
			}
		}

		records = append(records, h)
	}
	return records, stats
}

// passthrough collects the properties no pipeline touches so they survive
// to the output file unchanged.
func passthrough(f *geojson.Feature, cols HotspotColumns) map[string]any {
	mapped := map[string]struct{}{}
	for _, c := range []string{
		cols.AcqDate, cols.Latitude, cols.Longitude, cols.Instrument,
		cols.Department, cols.Municipality, cols.Year, cols.Month, cols.Day,
	} {
		if c != "" {
			mapped[c] = struct{}{}
		}
	}

	extra := make(map[string]any)
	for k, v := range f.Properties {
		if _, ok := mapped[k]; !ok {
			extra[k] = v
		}
	}
	return extra
}
