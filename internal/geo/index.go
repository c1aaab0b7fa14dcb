package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"
)

// PolygonIndex answers "which polygon holds this point" for a fixed set of
// polygons, preserving input order so hits map back to source features.
// Containment uses intersects semantics: a point on a shared municipal
// border attributes to the first polygon that touches it.
type PolygonIndex struct {
	polys []*geos.Geom
}

// NewPolygonIndex converts the given polygon geometries to GEOS form.
func NewPolygonIndex(geoms []orb.Geometry) (*PolygonIndex, error) {
	polys := make([]*geos.Geom, len(geoms))
	for i, g := range geoms {
		gg, err := toGeos(g)
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		polys[i] = gg
	}
	return &PolygonIndex{polys: polys}, nil
}

// FindXY returns the index of the first polygon intersecting (x, y), or -1.
func (ix *PolygonIndex) FindXY(x, y float64) int {
	pt := geos.NewPoint([]float64{x, y})
	for i, poly := range ix.polys {
		if poly.Intersects(pt) {
			return i
		}
	}
	return -1
}

// Coverage is a unioned polygon set used for keep/drop tests when clipping
// point layers.
type Coverage struct {
	CRS  string
	geom *geos.Geom
}

// NewCoverage unions the given polygons into one test geometry.
func NewCoverage(geoms []orb.Geometry, crs string) (*Coverage, error) {
	if len(geoms) == 0 {
		return nil, &EmptyRegionError{Reason: "no polygons to clip against"}
	}
	u, err := unionAll(geoms)
	if err != nil {
		return nil, err
	}
	if u.IsEmpty() {
		return nil, &EmptyRegionError{Reason: "clip polygons union to nothing"}
	}
	return &Coverage{CRS: crs, geom: u}, nil
}

// IntersectsXY reports whether (x, y) touches the coverage, boundary
// included. Clipping keeps border points, unlike sampling.
func (c *Coverage) IntersectsXY(x, y float64) bool {
	return c.geom.Intersects(geos.NewPoint([]float64{x, y}))
}
