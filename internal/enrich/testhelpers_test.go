package enrich

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/choropleth-cli/internal/region"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// featureCollection renders unit squares at lon 106+i, keyed by the given ids.
func featureCollection(keyField string, ids ...string) string {
	features := make([]string, len(ids))
	for i, id := range ids {
		x := 106.0 + float64(i)
		features[i] = fmt.Sprintf(`{"type":"Feature","properties":{%q:%q},
		  "geometry":{"type":"Polygon","coordinates":[[[%g,-7],[%g,-7],[%g,-6],[%g,-6],[%g,-7]]]}}`,
			keyField, id, x, x+1, x+1, x, x)
	}
	return `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`
}

func squareBoundary(x float64) *geom.MultiPolygon {
	return geom.NewMultiPolygonFlat(geom.XY, []float64{
		x, -7, x + 1, -7, x + 1, -6, x, -6, x, -7,
	}, [][]int{{10}}).SetSRID(region.WGS84)
}

func attr(id string, value float64) region.Attribute {
	return region.Attribute{ID: id, Name: "Kab " + id, Value: value, Category: region.Classify(value)}
}

func geometry(id string, x float64) region.Geometry {
	return region.Geometry{ID: id, Boundary: squareBoundary(x)}
}

// scenarioView is the four-region scenario with values 15, 25, 35, 45.
func scenarioView(t *testing.T) View {
	t.Helper()
	attrs := []region.Attribute{attr("A", 15), attr("B", 25), attr("C", 35), attr("D", 45)}
	geoms := []region.Geometry{geometry("A", 106), geometry("B", 107), geometry("C", 108), geometry("D", 109)}
	v, err := Join(attrs, geoms, LastWins)
	require.NoError(t, err)
	return v
}

// writeShapefile writes unit squares at lon 106+i with a KODE attribute per
// key and returns the .shp path.
func writeShapefile(t *testing.T, dir string, keys ...string) string {
	t.Helper()
	shpPath := filepath.Join(dir, "jabar.shp")
	w, err := shp.Create(shpPath, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("KODE", 10)}))

	for i, key := range keys {
		x := 106.0 + float64(i)
		ring := []shp.Point{{X: x, Y: -7}, {X: x, Y: -6}, {X: x + 1, Y: -6}, {X: x + 1, Y: -7}, {X: x, Y: -7}}
		poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
		row := w.Write(&poly)
		require.NoError(t, w.WriteAttribute(int(row), 0, key))
	}
	w.Close()

	// go-shp v0.1.1 names the attribute table <base>dbf, without the dot.
	base := strings.TrimSuffix(shpPath, ".shp")
	if _, err := os.Stat(base + "dbf"); err == nil {
		require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	}
	require.FileExists(t, base+".dbf")
	return shpPath
}

// zipShapefile archives a shapefile and its sidecars next to it.
func zipShapefile(t *testing.T, shpPath string) string {
	t.Helper()
	base := strings.TrimSuffix(shpPath, filepath.Ext(shpPath))
	zipPath := base + ".zip"
	out, err := os.Create(zipPath)
	require.NoError(t, err)
	defer func() { _ = out.Close() }()

	zw := zip.NewWriter(out)
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		f, err := os.Open(base + ext)
		require.NoError(t, err)
		dst, err := zw.Create(filepath.Base(base + ext))
		require.NoError(t, err)
		_, err = io.Copy(dst, f)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	require.NoError(t, zw.Close())
	return zipPath
}
