package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/choropleth-cli/internal/config"
)

const fixtureCSV = `region_id;region_name;metric_value;quality_category
1;Kab Bogor;15;Reliable
2;Kab Sukabumi;25;Reliable
3;Kab Cianjur;35;Caution
4;Kab Bandung;45;Unreliable
9;Kab Tanpa Batas;50;Reliable
`

func fixtureGeoJSON(ids ...string) string {
	features := make([]string, len(ids))
	for i, id := range ids {
		x := 106.0 + float64(i)
		features[i] = fmt.Sprintf(`{"type":"Feature","properties":{"KODE":%s},
		  "geometry":{"type":"Polygon","coordinates":[[[%g,-7],[%g,-7],[%g,-6],[%g,-6],[%g,-7]]]}}`,
			id, x, x+1, x+1, x, x)
	}
	return `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`
}

// testConfig writes a fixture dataset and config file and loads it.
// Attribute ids are zero-padded to two digits; boundary ids are JSON numbers.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "unmet.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(fixtureCSV), 0o644))
	geoPath := filepath.Join(dir, "jabar.geojson")
	require.NoError(t, os.WriteFile(geoPath, []byte(fixtureGeoJSON("1.0", "2", "3", "4", "7")), 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf(`sources:
  attributes: %s
  geometries: %s
  delimiter: ";"
  temp_dir: %s
columns:
  geometry_id: kode
  key_pad: 2
log:
  level: error
`, csvPath, geoPath, filepath.Join(dir, "tmp"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	c, err := config.Load(cfgPath)
	require.NoError(t, err)
	return c
}

func testEnv(t *testing.T) *pipelineEnv {
	t.Helper()
	env, err := initPipeline(context.Background(), testConfig(t))
	require.NoError(t, err)
	return env
}
