package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madremonte/hotspot-data-etl/internal/adapter/geofile"
	"github.com/madremonte/hotspot-data-etl/internal/observability"
)

func TestAdminJoinerRun(t *testing.T) {
	dir := t.TempDir()

	medellin := rectFeature(-76, 6, -75, 7)
	medellin.Properties["Depto"] = "Antioquia"
	medellin.Properties["MpNombre"] = "Medellín"
	quibdo := rectFeature(-77, 5, -76, 6)
	quibdo.Properties["Depto"] = "Chocó"
	quibdo.Properties["MpNombre"] = "Quibdó"
	admin := writeLayer(t, filepath.Join(dir, "admin.geojson"), "EPSG:4326", medellin, quibdo)

	points := writeLayer(t, filepath.Join(dir, "points.geojson"), "EPSG:4326",
		firmsFeature(-75.5, 6.5, "15-01-2019", "MODIS"), // inside Medellín
		firmsFeature(-76.5, 5.5, "20-02-2019", "VIIRS"), // inside Quibdó
		firmsFeature(-60.0, 1.0, "25-03-2019", "MODIS"), // in no municipality
	)

	joiner := NewAdminJoiner(discardLogger(), observability.NewMetricsForTesting())
	outPath := filepath.Join(dir, "joined.geojson")
	summary, err := joiner.Run(AdminJoinParams{
		PointsPath: points,
		AdminPath:  admin,
		OutputPath: outPath,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Points)
	assert.Equal(t, 2, summary.JoinOK)
	assert.Equal(t, 1, summary.JoinFail)
	assert.Equal(t, "EPSG:4326", summary.OutputCRS)

	out := readLayer(t, outPath)
	require.Len(t, out.Features, 3)

	first := out.Features[0]
	assert.Equal(t, "ANTIOQUIA", geofile.StringProp(first, "depto_std"))
	assert.Equal(t, "Medellín", geofile.StringProp(first, "mpnombre_s"))
	year := geofile.IntProp(first, "anio")
	require.NotNil(t, year)
	assert.Equal(t, 2019, *year)
	month := geofile.IntProp(first, "mes")
	require.NotNil(t, month)
	assert.Equal(t, 1, *month)
	day := geofile.IntProp(first, "dia")
	require.NotNil(t, day)
	assert.Equal(t, 15, *day)

	second := out.Features[1]
	assert.Equal(t, "CHOCO", geofile.StringProp(second, "depto_std"))
	assert.Equal(t, "Quibdó", geofile.StringProp(second, "mpnombre_s"))

	// Points in no polygon survive with empty admin fields.
	third := out.Features[2]
	assert.Equal(t, "", geofile.StringProp(third, "depto_std"))
	assert.Equal(t, "", geofile.StringProp(third, "mpnombre_s"))
}

func TestAdminJoinerOutputFeedsMatcher(t *testing.T) {
	dir := t.TempDir()

	muni := rectFeature(-76, 6, -75, 7)
	muni.Properties["Depto"] = "Antioquia"
	muni.Properties["MpNombre"] = "Medellín"
	admin := writeLayer(t, filepath.Join(dir, "admin.geojson"), "EPSG:4326", muni)
	points := writeLayer(t, filepath.Join(dir, "points.geojson"), "EPSG:4326",
		firmsFeature(-75.5, 6.5, "15-01-2019", "MODIS"),
	)

	joiner := NewAdminJoiner(discardLogger(), observability.NewMetricsForTesting())
	joined, err := joiner.Run(AdminJoinParams{
		PointsPath: points,
		AdminPath:  admin,
		OutputPath: filepath.Join(dir, "joined.geojson"),
	})
	require.NoError(t, err)

	events := writeEventsXLSX(t, dir,
		[]string{"DEPARTAMENTO", "MUNICIPIO", "FECHA"},
		[][]any{{"Antioquia", "Medellín", "15/01/2019"}},
	)
	matcher := NewMatcher(discardLogger(), observability.NewMetricsForTesting())
	summary, err := matcher.Run(MatchParams{
		PointsPath: joined.OutputPath,
		EventsPath: events,
		OutputPath: filepath.Join(dir, "matched.geojson"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Exact)
}

func TestAdminJoinerErrors(t *testing.T) {
	dir := t.TempDir()
	points := writeLayer(t, filepath.Join(dir, "points.geojson"), "EPSG:4326",
		firmsFeature(-75.5, 6.5, "15-01-2019", "MODIS"),
	)

	t.Run("admin layer missing name columns", func(t *testing.T) {
		bare := writeLayer(t, filepath.Join(dir, "bare.geojson"), "EPSG:4326", rectFeature(-76, 6, -75, 7))
		joiner := NewAdminJoiner(discardLogger(), observability.NewMetricsForTesting())
		_, err := joiner.Run(AdminJoinParams{
			PointsPath: points,
			AdminPath:  bare,
			OutputPath: filepath.Join(dir, "out.geojson"),
		})
		require.Error(t, err)
	})

	t.Run("CRS mismatch", func(t *testing.T) {
		muni := rectFeature(0, 0, 1000, 1000)
		muni.Properties["Depto"] = "Antioquia"
		muni.Properties["MpNombre"] = "Medellín"
		projected := writeLayer(t, filepath.Join(dir, "projected.geojson"), "EPSG:3116", muni)
		joiner := NewAdminJoiner(discardLogger(), observability.NewMetricsForTesting())
		_, err := joiner.Run(AdminJoinParams{
			PointsPath: points,
			AdminPath:  projected,
			OutputPath: filepath.Join(dir, "out.geojson"),
		})
		require.Error(t, err)
		assert.ErrorContains(t, err, "reproject")
	})
}
