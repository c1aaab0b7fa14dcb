package domain

import "time"

// MatchTier classifies a hotspot's best disaster-report match.
type MatchTier string

const (
	TierExact    MatchTier = "exact"
	TierWindowed MatchTier = "windowed"
	TierNone     MatchTier = "none"
)

// DefaultWindowDays is the inclusive upper bound, in whole days, for the
// windowed tier.
const DefaultWindowDays = 5

// Candidate pairs one hotspot with one disaster report sharing its
// normalized (department, municipality) key. EventIdx is -1 when the
// hotspot has no admin match at all; that single placeholder row keeps the
// hotspot present through the join. DayDiff is nil when either date is
// nil, which excludes the candidate from ranking.
type Candidate struct {
	PointIdx int
	EventIdx int
	DayDiff  *int
}

// BuildCandidates left-joins hotspots to disaster reports on the
// normalized admin key. Every hotspot yields at least one candidate, so
// hotspots are never lost before selection.
func BuildCandidates(points []Hotspot, events []DisasterEvent) []Candidate {
	byKey := make(map[string][]int, len(events))
	for i, e := range events {
		k := e.AdminKey()
		byKey[k] = append(byKey[k], i)
	}

	cands := make([]Candidate, 0, len(points))
	for i, p := range points {
		idxs := byKey[p.AdminKey()]
		if len(idxs) == 0 {
			cands = append(cands, Candidate{PointIdx: i, EventIdx: -1})
			continue
		}
		for _, j := range idxs {
			c := Candidate{PointIdx: i, EventIdx: j}
			if p.AcqDate != nil && events[j].EventDate != nil {
				d := DayDiff(*p.AcqDate, *events[j].EventDate)
				c.DayDiff = &d
			}
			cands = append(cands, c)
		}
	}
	return cands
}

// MatchResult is the per-hotspot outcome. EventIdx is -1 and the nullable
// fields are nil when no candidate could be ranked. A result can carry an
// event reference and still be TierNone when the best candidate falls
// outside the window.
type MatchResult struct {
	EventIdx  int
	EventDate *time.Time
	DayDiff   *int
	AbsDiff   *int
	Tier      MatchTier
}

// BestMatches selects, per hotspot, the ranked candidate with the smallest
// absolute day difference. Ties keep the earliest candidate in input
// order. The returned slice always has numPoints entries (left-join
// invariant); hotspots with no ranked candidate get TierNone with no
// reference.
func BestMatches(cands []Candidate, events []DisasterEvent, numPoints, windowDays int) []MatchResult {
	results := make([]MatchResult, numPoints)
	for i := range results {
		results[i] = MatchResult{EventIdx: -1, Tier: TierNone}
	}

	for _, c := range cands {
		if c.DayDiff == nil {
			continue
		}
		abs := *c.DayDiff
		if abs < 0 {
			abs = -abs
		}
		r := &results[c.PointIdx]
		if r.AbsDiff != nil && *r.AbsDiff <= abs {
			continue
		}
		diff := *c.DayDiff
		absCopy := abs
		*r = MatchResult{
			EventIdx:  c.EventIdx,
			EventDate: events[c.EventIdx].EventDate,
			DayDiff:   &diff,
			AbsDiff:   &absCopy,
			Tier:      classifyMatch(abs, windowDays),
		}
	}
	return results
}

func classifyMatch(absDiff, windowDays int) MatchTier {
	switch {
	case absDiff == 0:
		return TierExact
	case absDiff <= windowDays:
		return TierWindowed
	default:
		return TierNone
	}
}

// MatchedHotspot is a hotspot with its match outcome attached.
type MatchedHotspot struct {
	Hotspot
	Match MatchResult
}

// AttachMatches joins match results back onto the full hotspot set by
// index. Exactly one output per input hotspot; an index without a result
// defaults to TierNone.
func AttachMatches(points []Hotspot, results []MatchResult) []MatchedHotspot {
	out := make([]MatchedHotspot, len(points))
	for i, p := range points {
		m := MatchResult{EventIdx: -1, Tier: TierNone}
		if i < len(results) {
			m = results[i]
		}
		out[i] = MatchedHotspot{Hotspot: p, Match: m}
	}
	return out
}
