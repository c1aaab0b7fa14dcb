package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitSquare returns a w×h rectangle with its lower-left corner at (x, y).
func rect(x, y, w, h float64) orb.Geometry {
	return orb.Polygon{{
		{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}, {x, y},
	}}
}

func TestBuildEligibleRegion(t *testing.T) {
	t.Run("no exclusions keeps the AOI", func(t *testing.T) {
		region, err := BuildEligibleRegion([]orb.Geometry{rect(0, 0, 100, 100)}, nil, 10, "EPSG:9377")

		require.NoError(t, err)
		assert.Equal(t, "EPSG:9377", region.CRS)
		minX, minY, maxX, maxY := region.Bounds()
		assert.Equal(t, 0.0, minX)
		assert.Equal(t, 0.0, minY)
		assert.Equal(t, 100.0, maxX)
		assert.Equal(t, 100.0, maxY)
	})

	t.Run("buffered exclusions are carved out", func(t *testing.T) {
		region, err := BuildEligibleRegion(
			[]orb.Geometry{rect(0, 0, 100, 100)},
			[]orb.Point{{50, 50}},
			10,
			"EPSG:9377",
		)

		require.NoError(t, err)
		assert.False(t, region.ContainsXY(50, 50))
		assert.False(t, region.ContainsXY(55, 50)) // inside the buffer disk
		assert.True(t, region.ContainsXY(70, 50))  // outside the buffer disk
	})

	t.Run("multiple AOI parts union", func(t *testing.T) {
		region, err := BuildEligibleRegion(
			[]orb.Geometry{rect(0, 0, 10, 10), rect(20, 0, 10, 10)},
			nil, 0, "EPSG:9377",
		)

		require.NoError(t, err)
		assert.True(t, region.ContainsXY(5, 5))
		assert.True(t, region.ContainsXY(25, 5))
		assert.False(t, region.ContainsXY(15, 5)) // the gap between parts
	})

	t.Run("boundary points are not contained", func(t *testing.T) {
		region, err := BuildEligibleRegion([]orb.Geometry{rect(0, 0, 10, 10)}, nil, 0, "EPSG:9377")

		require.NoError(t, err)
		assert.False(t, region.ContainsXY(0, 5))
		assert.False(t, region.ContainsXY(10, 10))
		assert.True(t, region.ContainsXY(5, 5))
	})

	t.Run("empty AOI fails", func(t *testing.T) {
		_, err := BuildEligibleRegion(nil, nil, 10, "EPSG:9377")

		var emptyErr *EmptyRegionError
		require.ErrorAs(t, err, &emptyErr)
	})

	t.Run("buffers swallowing the AOI fail", func(t *testing.T) {
		_, err := BuildEligibleRegion(
			[]orb.Geometry{rect(0, 0, 10, 10)},
			[]orb.Point{{5, 5}},
			50, // disk radius dwarfs the AOI
			"EPSG:9377",
		)

		var emptyErr *EmptyRegionError
		require.ErrorAs(t, err, &emptyErr)
	})
}
