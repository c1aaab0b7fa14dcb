package domain

import (
	"sort"
	"strconv"
	"strings"
)

// DedupKey identifies a duplicate group. Null reports whether any of the
// key's source fields was missing. Null-keyed records still deduplicate as
// a key group (all records with an identical null-carrying key collapse to
// one survivor); the count of records dropped that way is surfaced
// separately so callers can judge whether the collapse lost real data.
type DedupKey struct {
	Value string
	Null  bool
}

// AcquisitionKey is the standard dedup key for merged FIRMS layers:
// normalized acquisition date plus the raw coordinate columns. When the
// date never parsed, the raw string stands in so distinct raw values stay
// distinct.
func AcquisitionKey(h Hotspot) DedupKey {
	date := h.AcqDateRaw
	if h.AcqDate != nil {
		date = h.AcqDate.Format("2006-01-02")
	}

	var lat, lon string
	if h.Latitude != nil {
		lat = strconv.FormatFloat(*h.Latitude, 'f', -1, 64)
	}
	if h.Longitude != nil {
		lon = strconv.FormatFloat(*h.Longitude, 'f', -1, 64)
	}

	return DedupKey{
		Value: date + "|" + lat + "|" + lon,
		Null:  h.Latitude == nil || h.Longitude == nil,
	}
}

// DedupStats reports what Deduplicate removed.
type DedupStats struct {
	Dropped          int
	NullKeyCollapsed int
}

// Deduplicate keeps exactly one record per key group. Records whose
// instrument equals preferInstrument (case-insensitive) outrank the rest;
// within a rank, the first record in input order survives. Output order is
// the rank-stable order, preferred instruments first.
func Deduplicate(records []Hotspot, keyFn func(Hotspot) DedupKey, preferInstrument string) ([]Hotspot, DedupStats) {
	rank := func(h Hotspot) int {
		if strings.EqualFold(strings.TrimSpace(h.Instrument), preferInstrument) {
			return 0
		}
		return 1
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rank(records[order[a]]) < rank(records[order[b]])
	})

	var stats DedupStats
	seen := make(map[string]struct{}, len(records))
	out := make([]Hotspot, 0, len(records))
	for _, i := range order {
		k := keyFn(records[i])
		if _, dup := seen[k.Value]; dup {
			stats.Dropped++
			if k.Null {
				stats.NullKeyCollapsed++
			}
			continue
		}
		seen[k.Value] = struct{}{}
		out = append(out, records[i])
	}
	return out, stats
}
