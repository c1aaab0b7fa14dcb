// Package geofile reads and writes vector layers as GeoJSON with an
// explicit coordinate reference system, and maps features to domain
// records. It is the I/O collaborator the pipelines delegate file-format
// concerns to.
package geofile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/madremonte/hotspot-data-etl/internal/domain"
)

// ErrMissingCRS means a layer carries no coordinate reference system and
// none was supplied by the caller. CRS is never inferred.
var ErrMissingCRS = errors.New("layer has no CRS and no fallback was given")

// Layer is a set of features plus the CRS their coordinates are expressed
// in. CRS may be empty after reading; operations that need one must call
// RequireCRS.
type Layer struct {
	CRS      string
	Features []*geojson.Feature
}

// fileCollection is the on-disk form: a GeoJSON FeatureCollection with the
// legacy named-CRS member, which is how the upstream conversion from
// shapefiles records the .prj content.
type fileCollection struct {
	Type     string             `json:"type"`
	CRS      *crsMember         `json:"crs,omitempty"`
	Features []*geojson.Feature `json:"features"`
}

type crsMember struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

// ReadLayer reads a GeoJSON layer. A missing file surfaces as an error
// wrapping fs.ErrNotExist. The layer's CRS comes from the file's crs
// member when present, else fallbackCRS, else empty.
func ReadLayer(path, fallbackCRS string) (*Layer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layer %s: %w", path, err)
	}

	var fc fileCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse layer %s: %w", path, err)
	}

	crs := fallbackCRS
	if fc.CRS != nil && fc.CRS.Properties.Name != "" {
		crs = fc.CRS.Properties.Name
	}

	return &Layer{CRS: crs, Features: fc.Features}, nil
}

// RequireCRS fails with ErrMissingCRS when the layer has no CRS.
func (l *Layer) RequireCRS() error {
	if l.CRS == "" {
		return ErrMissingCRS
	}
	return nil
}

// RequireFields validates that every named field appears somewhere in the
// layer's schema (the union of feature property keys, matching how a
// column exists on a table even when some rows are null). Field names are
// compared after trimming surrounding whitespace.
func (l *Layer) RequireFields(source string, fields ...string) error {
	present := make(map[string]struct{})
	for _, f := range l.Features {
		for k := range f.Properties {
			present[strings.TrimSpace(k)] = struct{}{}
		}
	}

	var missing []string
	for _, want := range fields {
		if _, ok := present[strings.TrimSpace(want)]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return &domain.MissingFieldError{Source: source, Fields: missing}
	}
	return nil
}

// StringProp returns a property as a trimmed string, empty when absent.
func StringProp(f *geojson.Feature, key string) string {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// FloatProp coerces a property to a float, nil when absent or not numeric.
func FloatProp(f *geojson.Feature, key string) *float64 {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		fv := float64(n)
		return &fv
	case string:
		fv, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &fv
	default:
		return nil
	}
}

// IntProp coerces a property to an int, nil when absent or not a whole
// number. JSON numbers arrive as float64; fractional values do not round.
func IntProp(f *geojson.Feature, key string) *int {
	fv := FloatProp(f, key)
	if fv == nil {
		return nil
	}
	iv := int(*fv)
	if float64(iv) != *fv {
		return nil
	}
	return &iv
}
