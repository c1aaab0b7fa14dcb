package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// Hotspot is one FIRMS satellite fire detection.
//
// Geometry is always present. The LATITUDE/LONGITUDE attribute columns are
// carried separately from the geometry because they arrive as text and may
// fail numeric coercion (nil) while the geometry itself is fine. Attrs
// holds passthrough columns the pipelines never touch.
type Hotspot struct {
	Geometry orb.Point

	AcqDateRaw string
	AcqDate    *time.Time

	Latitude  *float64
	Longitude *float64

	Instrument string

	Department   string
	Municipality string

	// Normalized join keys, uppercase and accent-free. See Normalize.
	DepartmentKey   string
	MunicipalityKey string

	Attrs map[string]any
}

// AdminKey is the composite key hotspots join to disaster reports on.
func (h Hotspot) AdminKey() string {
	return h.DepartmentKey + "|" + h.MunicipalityKey
}

// DisasterEvent is one UNGRD disaster-report row. EventDate is nil when the
// source cell could not be parsed; such rows are retained but never match.
type DisasterEvent struct {
	Department   string
	Municipality string

	DepartmentKey   string
	MunicipalityKey string

	EventDate *time.Time
	EventType string
}

// AdminKey is the composite key disaster reports are joined on.
func (e DisasterEvent) AdminKey() string {
	return e.DepartmentKey + "|" + e.MunicipalityKey
}
