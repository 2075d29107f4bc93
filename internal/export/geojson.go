package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/choropleth-cli/internal/enrich"
)

// FeatureCollection builds the GeoJSON document of v. Each feature carries
// the region fields, its legend label and color, and the centroid used as
// marker position.
func FeatureCollection(v enrich.View, p enrich.Palette) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, v.Len())}
	for _, r := range v.Regions() {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.ID,
			Geometry: r.Boundary,
			Properties: map[string]any{
				"region_id":        r.ID,
				"region_name":      r.Name,
				"metric_value":     r.Value,
				"metric_category":  string(r.Category),
				"quality_category": r.Quality,
				"label":            p.Label(r.Category),
				"color":            p.Color(r.Category),
				"centroid":         []float64{r.Centroid.X(), r.Centroid.Y()},
			},
		})
	}
	return fc
}

// WriteGeoJSON writes v as a FeatureCollection.
func WriteGeoJSON(w io.Writer, v enrich.View, p enrich.Palette) error {
	data, err := json.Marshal(FeatureCollection(v, p))
	if err != nil {
		return eris.Wrap(err, "export: marshal geojson")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return eris.Wrap(err, "export: write geojson")
	}
	return nil
}
