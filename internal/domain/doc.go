// Package domain models FIRMS satellite hotspot detections and UNGRD
// disaster-report records, and the pure transforms that join them.
//
// # Data Sources
//
// FIRMS (Fire Information for Resource Management System) distributes
// satellite fire detections as point layers. Each point carries an
// acquisition date, the detecting instrument ("MODIS" or "VIIRS"), raw
// LATITUDE/LONGITUDE attribute columns, and, once the administrative join
// has run, department and municipality names.
//
// UNGRD (Unidad Nacional para la Gestión del Riesgo de Desastres) publishes
// disaster reports as spreadsheet rows: department, municipality, event
// date, and event type. Dates are written day-first ("15/03/2020").
//
// # Field Name Conventions
//
// Shapefile-derived layers truncate attribute names to 10 characters, so
// the municipality column arrives as "mpnombre_s" and year/month/day as
// "anio"/"mes"/"dia". Loaders accept these names as configuration; nothing
// in this package hardcodes them.
//
// # Key Normalization
//
// Administrative names join unreliably in raw form ("Bogotá  D.C." vs
// "BOGOTA D.C."). [Normalize] canonicalizes them: uppercase, accents
// stripped via Unicode decomposition, whitespace collapsed. Both sides of
// every join use normalized keys; raw values are preserved for output.
//
// # Null Dates
//
// Rows with unparseable dates are kept, not dropped. A nil date means
// "cannot match": such rows never participate in day-distance ranking but
// still appear in output with the no-match tier.
//
// # Match Tiers
//
// A hotspot's best UNGRD match is classified by the absolute whole-day
// difference between acquisition date and event date:
//
//	exact     difference = 0
//	windowed  0 < |difference| <= window (default 5 days)
//	none      everything else, including hotspots with no candidate
//
// The signed difference is acquisition date minus event date, so a
// positive value means the satellite detection came after the report.
package domain
