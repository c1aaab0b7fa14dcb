// Package geo builds eligible sampling regions and draws reproducible
// random points from them. Topology operations (buffer, union, difference,
// containment) are delegated to GEOS; this package only composes them.
package geo

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-geos"
)

// bufferQuadSegs controls how many segments approximate a quarter circle
// when buffering exclusion points. 8 keeps the disk round enough that the
// "never within bufferMeters of an exclusion" guarantee holds at the scale
// of hotspot data.
const bufferQuadSegs = 8

// EmptyRegionError means no eligible area remains to sample from.
type EmptyRegionError struct {
	Reason string
}

func (e *EmptyRegionError) Error() string {
	return "empty eligible region: " + e.Reason
}

// Region is a planar eligible area, possibly multi-part. It pairs the GEOS
// geometry with the CRS the coordinates are expressed in; the CRS is
// carried explicitly, never inferred.
type Region struct {
	CRS  string
	geom *geos.Geom
}

// Bounds returns the region's bounding box (minX, minY, maxX, maxY).
func (r *Region) Bounds() (float64, float64, float64, float64) {
	b := r.geom.Bounds()
	return b.MinX, b.MinY, b.MaxX, b.MaxY
}

// ContainsXY reports whether (x, y) lies in the strict interior of the
// region. Points exactly on the boundary are not contained.
func (r *Region) ContainsXY(x, y float64) bool {
	return r.geom.Contains(geos.NewPoint([]float64{x, y}))
}

// GeometryType returns the GEOS type name of the underlying geometry,
// e.g. "Polygon" or "MultiPolygon".
func (r *Region) GeometryType() string {
	return r.geom.Type()
}

// BuildEligibleRegion unions the AOI polygons, unions a bufferMeters-radius
// disk around every exclusion point, and subtracts the latter from the
// former. Coordinates of all inputs must already be in crs (a projected,
// meter-based system for the buffer distance to mean meters).
func BuildEligibleRegion(aoi []orb.Geometry, exclusions []orb.Point, bufferMeters float64, crs string) (*Region, error) {
	if len(aoi) == 0 {
		return nil, &EmptyRegionError{Reason: "no AOI polygons"}
	}

	aoiUnion, err := unionAll(aoi)
	if err != nil {
		return nil, fmt.Errorf("union AOI: %w", err)
	}
	if aoiUnion.IsEmpty() {
		return nil, &EmptyRegionError{Reason: "AOI union is empty"}
	}

	eligible := aoiUnion
	if len(exclusions) > 0 && bufferMeters > 0 {
		var buffered *geos.Geom
		for _, p := range exclusions {
			disk := geos.NewPoint([]float64{p[0], p[1]}).Buffer(bufferMeters, bufferQuadSegs)
			if buffered == nil {
				buffered = disk
				continue
			}
			buffered = buffered.Union(disk)
		}
		eligible = aoiUnion.Difference(buffered)
	}

	if eligible.IsEmpty() {
		return nil, &EmptyRegionError{Reason: "AOI minus exclusion buffers is empty; shrink the buffer or widen the AOI"}
	}

	return &Region{CRS: crs, geom: eligible}, nil
}

func unionAll(geoms []orb.Geometry) (*geos.Geom, error) {
	var acc *geos.Geom
	for i, g := range geoms {
		gg, err := toGeos(g)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		if acc == nil {
			acc = gg
			continue
		}
		acc = acc.Union(gg)
	}
	return acc, nil
}

// toGeos converts an orb geometry to its GEOS counterpart via GeoJSON,
// the one encoding both libraries speak.
func toGeos(g orb.Geometry) (*geos.Geom, error) {
	raw, err := json.Marshal(geojson.NewGeometry(g))
	if err != nil {
		return nil, fmt.Errorf("encode geometry: %w", err)
	}
	gg, err := geos.NewGeomFromGeoJSON(string(raw))
	if err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	return gg, nil
}
