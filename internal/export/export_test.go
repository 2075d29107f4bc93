package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/choropleth-cli/internal/enrich"
	"github.com/sells-group/choropleth-cli/internal/fetcher"
	"github.com/sells-group/choropleth-cli/internal/region"
)

func testView(t *testing.T) enrich.View {
	t.Helper()
	attrs := []region.Attribute{
		{ID: "01", Name: "Kab Bogor", Value: 15, Category: region.Low, Quality: "Reliable"},
		{ID: "02", Name: "Kab Sukabumi", Value: 45.5, Category: region.VeryHigh, Quality: "Caution"},
	}
	geoms := make([]region.Geometry, len(attrs))
	for i, a := range attrs {
		x := 106.0 + float64(i)
		geoms[i] = region.Geometry{
			ID: a.ID,
			Boundary: geom.NewMultiPolygonFlat(geom.XY, []float64{
				x, -7, x + 1, -7, x + 1, -6, x, -6, x, -7,
			}, [][]int{{10}}).SetSRID(region.WGS84),
		}
	}
	v, err := enrich.Join(attrs, geoms, enrich.LastWins)
	require.NoError(t, err)
	return v
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
		wantErr  bool
	}{
		{in: "geojson", expected: FormatGeoJSON},
		{in: "JSON", expected: FormatGeoJSON},
		{in: " csv ", expected: FormatCSV},
		{in: "xlsx", expected: FormatXLSX},
		{in: "sqlite", expected: FormatSQLite},
		{in: "db", expected: FormatSQLite},
		{in: "shp", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestRecords(t *testing.T) {
	recs := Records(testView(t), enrich.DefaultPalette())
	require.Len(t, recs, 2)
	assert.Equal(t, Record{
		ID: "01", Name: "Kab Bogor", Value: 15, Category: "Low",
		Label: "Rendah", Color: "green", Quality: "Reliable", Lon: 106.5, Lat: -6.5,
	}, recs[0])
	assert.Equal(t, "darkred", recs[1].Color)
}

func TestWriteGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, testView(t), enrich.DefaultPalette()))

	var fc geojson.FeatureCollection
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	require.Len(t, fc.Features, 2)

	f := fc.Features[1]
	assert.Equal(t, "02", f.ID)
	assert.IsType(t, &geom.MultiPolygon{}, f.Geometry)
	assert.Equal(t, "Kab Sukabumi", f.Properties["region_name"])
	assert.Equal(t, 45.5, f.Properties["metric_value"])
	assert.Equal(t, "Very High", f.Properties["metric_category"])
	assert.Equal(t, "Sangat Tinggi", f.Properties["label"])
	assert.Equal(t, "darkred", f.Properties["color"])
	assert.Equal(t, []any{107.5, -6.5}, f.Properties["centroid"])
}

func TestWriteGeoJSON_EmptyView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, enrich.View{}, enrich.DefaultPalette()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "FeatureCollection", doc["type"])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testView(t), enrich.DefaultPalette()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, recordHeader, rows[0])
	assert.Equal(t, []string{"02", "Kab Sukabumi", "45.5", "Very High", "Sangat Tinggi", "darkred", "Caution", "107.5", "-6.5"}, rows[2])
}

func TestWriteXLSX(t *testing.T) {
	v := testView(t)
	s := enrich.Summarize(v, 3, 1)
	path := filepath.Join(t.TempDir(), "out.xlsx")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteXLSX(f, v, s, enrich.DefaultPalette()))
	require.NoError(t, f.Close())

	regions, err := fetcher.ReadXLSXTable(path, fetcher.XLSXOptions{SheetName: RegionsSheet})
	require.NoError(t, err)
	assert.Equal(t, recordHeader, regions.Header)
	require.Len(t, regions.Rows, 2)
	assert.Equal(t, "Kab Bogor", regions.Rows[0][1])
	value, err := strconv.ParseFloat(regions.Rows[1][2], 64)
	require.NoError(t, err)
	assert.InDelta(t, 45.5, value, 1e-9)

	summary, err := fetcher.ReadXLSXTable(path, fetcher.XLSXOptions{SheetName: SummarySheet})
	require.NoError(t, err)
	require.Len(t, summary.Rows, 2+len(region.Categories))
	assert.Equal(t, "count", summary.Rows[0][0])
	assert.Equal(t, "2", summary.Rows[0][1])
	assert.Equal(t, "Rendah", summary.Rows[2][0])
}

func TestWriteSummary(t *testing.T) {
	v := testView(t)
	doc := SummaryDocument{
		Filters: enrich.FilterOptions{Category: enrich.All, Quality: enrich.All, Region: enrich.All},
		Summary: enrich.Summarize(v, 1, 1),
		Legend:  enrich.Legend(v, enrich.DefaultPalette()),
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSummary(&buf, doc, "json"))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		summary := got["summary"].(map[string]any)
		assert.Equal(t, 2.0, summary["count"])
		assert.InDelta(t, 30.25, summary["mean"].(float64), 1e-9)
		assert.Len(t, got["legend"], 2)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSummary(&buf, doc, "yaml"))
		out := buf.String()
		assert.Contains(t, out, "count: 2")
		assert.Contains(t, out, "mean: 30.25")
		assert.Contains(t, out, "region_name: Kab Sukabumi")
		assert.Contains(t, out, "color: darkred")
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, WriteSummary(&bytes.Buffer{}, doc, "toml"))
	})
}

func TestWriteFile(t *testing.T) {
	v := testView(t)
	s := enrich.Summarize(v, 3, 1)
	dir := t.TempDir()

	for _, format := range []Format{FormatGeoJSON, FormatCSV, FormatXLSX, FormatSQLite} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(dir, "out."+string(format))
			require.NoError(t, WriteFile(context.Background(), path, format, v, s, enrich.DefaultPalette()))
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}

	assert.Error(t, WriteFile(context.Background(), filepath.Join(dir, "out.bin"), Format("bin"), v, s, enrich.DefaultPalette()))
}
