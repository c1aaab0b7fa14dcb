package geo

import (
	"fmt"
	"math/rand/v2"

	"github.com/paulmach/orb"
)

// DefaultMaxAttemptsFactor bounds rejection sampling at target×factor
// draws. 500 tolerates acceptance rates down to a fraction of a percent,
// which covers heavily fragmented eligible regions.
const DefaultMaxAttemptsFactor = 500

// InsufficientSamplesError reports an exhausted attempt budget. It carries
// the partial progress so a caller can retry with a larger region, a
// smaller buffer, or a higher attempt factor.
type InsufficientSamplesError struct {
	Requested int
	Obtained  int
	Attempts  int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("generated %d/%d points after %d attempts; eligible region too small or fragmented",
		e.Obtained, e.Requested, e.Attempts)
}

// SampleStats reports how the sampling run went.
type SampleStats struct {
	Requested int
	Obtained  int
	Attempts  int
}

// SamplePoints draws target points uniformly from the region's bounding
// box, accepting only those in the region's strict interior, until target
// points are collected or the attempt budget (target×maxAttemptsFactor) is
// exhausted. The generator is seeded, so identical (region, target, seed,
// factor) inputs reproduce the identical ordered point sequence.
func SamplePoints(region *Region, target int, seed uint64, maxAttemptsFactor int) ([]orb.Point, SampleStats, error) {
	if maxAttemptsFactor <= 0 {
		maxAttemptsFactor = DefaultMaxAttemptsFactor
	}

	rng := rand.New(rand.NewPCG(seed, 0))
	minX, minY, maxX, maxY := region.Bounds()

	points := make([]orb.Point, 0, target)
	attempts := 0
	maxAttempts := target * maxAttemptsFactor

	for len(points) < target && attempts < maxAttempts {
		x := minX + rng.Float64()*(maxX-minX)
		y := minY + rng.Float64()*(maxY-minY)
		if region.ContainsXY(x, y) {
			points = append(points, orb.Point{x, y})
		}
		attempts++
	}

	stats := SampleStats{Requested: target, Obtained: len(points), Attempts: attempts}
	if len(points) < target {
		return points, stats, &InsufficientSamplesError{
			Requested: target,
			Obtained:  len(points),
			Attempts:  attempts,
		}
	}
	return points, stats, nil
}
