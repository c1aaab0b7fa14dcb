package pipeline

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/madremonte/hotspot-data-etl/internal/adapter/geofile"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeLayer(t *testing.T, path, crs string, feats ...*geojson.Feature) string {
	t.Helper()
	_, err := geofile.WriteLayer(&geofile.Layer{CRS: crs, Features: feats}, path, false)
	require.NoError(t, err)
	return path
}

func writeRawLayer(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func readLayer(t *testing.T, path string) *geofile.Layer {
	t.Helper()
	layer, err := geofile.ReadLayer(path, "")
	require.NoError(t, err)
	return layer
}

// firmsFeature mimics one row of a raw FIRMS download.
func firmsFeature(lon, lat float64, date, instrument string) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{lon, lat})
	f.Properties["ACQ_DATE"] = date
	f.Properties["LATITUDE"] = lat
	f.Properties["LONGITUDE"] = lon
	f.Properties["INSTRUMENT"] = instrument
	return f
}

// joinedFeature mimics one row of an admin-joined points layer.
func joinedFeature(lon, lat float64, dept, muni string, year, month, day int) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{lon, lat})
	f.Properties["depto_std"] = dept
	f.Properties["mpnombre_s"] = muni
	f.Properties["anio"] = year
	f.Properties["mes"] = month
	f.Properties["dia"] = day
	return f
}

func geojsonPoint(x, y float64) *geojson.Feature {
	return geojson.NewFeature(orb.Point{x, y})
}

func rectFeature(minX, minY, maxX, maxY float64) *geojson.Feature {
	return geojson.NewFeature(orb.Polygon{{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}})
}

// writeEventsXLSX writes a one-sheet workbook whose first row is the header.
func writeEventsXLSX(t *testing.T, dir string, header []string, rows [][]any) string {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close()

	sheet := book.GetSheetList()[0]
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, book.SetCellValue(sheet, cell, name))
	}
	for r, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			require.NoError(t, err)
			require.NoError(t, book.SetCellValue(sheet, cell, v))
		}
	}

	path := filepath.Join(dir, "events.xlsx")
	require.NoError(t, book.SaveAs(path))
	return path
}
