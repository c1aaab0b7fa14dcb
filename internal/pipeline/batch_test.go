package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madremonte/hotspot-data-etl/internal/observability"
)

func TestClipperRun(t *testing.T) {
	dir := t.TempDir()
	inDir := filepath.Join(dir, "in")
	outDir := filepath.Join(dir, "out")

	aoi := writeLayer(t, filepath.Join(dir, "aoi.geojson"), "EPSG:4326", rectFeature(-76, 4, -74, 6))

	writeLayer(t, filepath.Join(inDir, "firms_2018.geojson"), "EPSG:4326",
		firmsFeature(-75.0, 5.0, "15-01-2018", "MODIS"), // inside
		firmsFeature(-80.0, 5.0, "16-01-2018", "MODIS"), // outside
	)
	writeLayer(t, filepath.Join(inDir, "firms_2019.geojson"), "EPSG:4326",
		firmsFeature(-75.5, 4.5, "15-01-2019", "VIIRS"), // inside
	)
	writeRawLayer(t, filepath.Join(inDir, "firms_2020.geojson"), "this is not geojson")

	metrics := observability.NewMetricsForTesting()
	clipper := NewClipper(discardLogger(), metrics)
	summary, err := clipper.Run(context.Background(), ClipBatchParams{
		InputDir:  inDir,
		Pattern:   "firms_*.geojson",
		AOIPath:   aoi,
		OutputDir: outDir,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Files)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Kept)
	assert.Equal(t, 1, summary.Dropped)

	out2018 := readLayer(t, filepath.Join(outDir, "firms_2018_clip.geojson"))
	assert.Len(t, out2018.Features, 1)
	assert.Equal(t, "EPSG:4326", out2018.CRS)
	out2019 := readLayer(t, filepath.Join(outDir, "firms_2019_clip.geojson"))
	assert.Len(t, out2019.Features, 1)

	require.Len(t, summary.Results, 3)
	var failed *FileResult
	for i := range summary.Results {
		if summary.Results[i].Err != nil {
			failed = &summary.Results[i]
		}
	}
	require.NotNil(t, failed)
	assert.Contains(t, failed.Input, "firms_2020")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.BatchFiles.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BatchFiles.WithLabelValues("error")))
}

func TestClipperNoMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	aoi := writeLayer(t, filepath.Join(dir, "aoi.geojson"), "EPSG:4326", rectFeature(-76, 4, -74, 6))

	clipper := NewClipper(discardLogger(), observability.NewMetricsForTesting())
	_, err := clipper.Run(context.Background(), ClipBatchParams{
		InputDir: dir,
		Pattern:  "firms_*.geojson",
		AOIPath:  aoi,
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "no files match")
}

func TestClipperStopsOnCanceledContext(t *testing.T) {
	dir := t.TempDir()
	aoi := writeLayer(t, filepath.Join(dir, "aoi.geojson"), "EPSG:4326", rectFeature(-76, 4, -74, 6))
	writeLayer(t, filepath.Join(dir, "firms_2018.geojson"), "EPSG:4326",
		firmsFeature(-75.0, 5.0, "15-01-2018", "MODIS"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	clipper := NewClipper(discardLogger(), observability.NewMetricsForTesting())
	summary, err := clipper.Run(ctx, ClipBatchParams{
		InputDir: dir,
		Pattern:  "firms_*.geojson",
		AOIPath:  aoi,
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Succeeded)
}

func TestClipName(t *testing.T) {
	assert.Equal(t, "firms_2019_clip.geojson", clipName("firms_2019.geojson", "_clip"))
	assert.Equal(t, "points_aoi.geojson", clipName("points.geojson", "_aoi"))
}
