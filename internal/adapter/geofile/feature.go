package geofile

import (
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/madremonte/hotspot-data-etl/internal/domain"
)

// setUnique writes a property, suffixing _1, _2, … when the name is
// already taken. Shapefile-derived sources truncate names to 10
// characters, so distinct upstream columns can collide once several
// sources are concatenated.
func setUnique(props geojson.Properties, key string, v any) {
	if _, taken := props[key]; !taken {
		props[key] = v
		return
	}
	for i := 1; ; i++ {
		cand := key + "_" + strconv.Itoa(i)
		if _, taken := props[cand]; !taken {
			props[cand] = v
			return
		}
	}
}

// HotspotFeature serializes a merged hotspot record. The normalized
// acquisition date lands in ACQ_DATE_NORM next to the raw column, the way
// downstream consumers of the merged layer expect it.
func HotspotFeature(h domain.Hotspot) *geojson.Feature {
	f := geojson.NewFeature(h.Geometry)
	for k, v := range h.Attrs {
		f.Properties[k] = v
	}

	setUnique(f.Properties, "ACQ_DATE", h.AcqDateRaw)
	norm := h.AcqDateRaw
	if h.AcqDate != nil {
		norm = h.AcqDate.Format("2006-01-02")
	}
	setUnique(f.Properties, "ACQ_DATE_NORM", norm)
	if h.Latitude != nil {
		setUnique(f.Properties, "LATITUDE", *h.Latitude)
	}
	if h.Longitude != nil {
		setUnique(f.Properties, "LONGITUDE", *h.Longitude)
	}
	setUnique(f.Properties, "INSTRUMENT", h.Instrument)
	return f
}

// MatchedFeature serializes a hotspot with its disaster-report match
// outcome. Nullable match fields are omitted when nil rather than written
// as nulls.
func MatchedFeature(m domain.MatchedHotspot) *geojson.Feature {
	f := geojson.NewFeature(m.Geometry)
	for k, v := range m.Attrs {
		f.Properties[k] = v
	}

	setUnique(f.Properties, "department", m.Department)
	setUnique(f.Properties, "municipality", m.Municipality)
	if m.AcqDate != nil {
		setUnique(f.Properties, "acq_date", m.AcqDate.Format("2006-01-02"))
	}
	if m.Match.EventDate != nil {
		setUnique(f.Properties, "match_date", m.Match.EventDate.Format("2006-01-02"))
	}
	if m.Match.DayDiff != nil {
		setUnique(f.Properties, "day_diff", *m.Match.DayDiff)
	}
	if m.Match.AbsDiff != nil {
		setUnique(f.Properties, "abs_day_diff", *m.Match.AbsDiff)
	}
	setUnique(f.Properties, "match_tier", string(m.Match.Tier))
	return f
}

// PointFeatures serializes sampled points with 1-based sequential ids.
func PointFeatures(points []orb.Point) []*geojson.Feature {
	features := make([]*geojson.Feature, len(points))
	for i, p := range points {
		f := geojson.NewFeature(p)
		f.Properties["id"] = i + 1
		features[i] = f
	}
	return features
}
