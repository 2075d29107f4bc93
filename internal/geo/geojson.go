package geo

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

type geoJSONDocument struct {
	Type string `json:"type"`
	CRS  *struct {
		Type       string `json:"type"`
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
	Features []struct {
		ID         json.RawMessage `json:"id"`
		Properties map[string]any  `json:"properties"`
		Geometry   json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// ReadGeoJSON decodes a FeatureCollection. The region key is read from the
// keyField property, falling back to the feature id.
func ReadGeoJSON(r io.Reader, keyField string) (*Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "geojson: read")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc geoJSONDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, eris.Wrap(err, "geojson: decode")
	}
	if doc.Type != "FeatureCollection" {
		return nil, eris.Errorf("geojson: expected FeatureCollection, got %q", doc.Type)
	}

	crs := CRSUnspecified
	if doc.CRS != nil {
		crs, err = ParseCRSName(doc.CRS.Properties.Name)
		if err != nil {
			return nil, err
		}
	}

	log := zap.L().With(zap.String("component", "geo.geojson"))
	out := &Collection{CRS: crs, Features: make([]Feature, 0, len(doc.Features))}
	keyed := false

	for i, f := range doc.Features {
		key := ""
		if v, ok := lookupProperty(f.Properties, keyField); ok {
			key = rawKey(v)
			keyed = true
		} else if len(f.ID) > 0 && string(f.ID) != "null" {
			var id any
			idDec := json.NewDecoder(bytes.NewReader(f.ID))
			idDec.UseNumber()
			if err := idDec.Decode(&id); err == nil {
				key = rawKey(id)
				keyed = true
			}
		}

		if len(f.Geometry) == 0 || string(f.Geometry) == "null" {
			out.Skipped++
			continue
		}
		var g geom.T
		if err := geojson.Unmarshal(f.Geometry, &g); err != nil {
			return nil, eris.Wrapf(err, "geojson: decode geometry of feature %d", i)
		}
		mp, ok := toMultiPolygon(g)
		if !ok {
			log.Warn("skipping non-polygonal feature", zap.Int("feature", i), zap.String("key", key))
			out.Skipped++
			continue
		}
		out.Features = append(out.Features, Feature{Key: key, Boundary: mp})
	}

	if len(doc.Features) > 0 && !keyed {
		return nil, eris.Errorf("geojson: key field %q not found in any feature", keyField)
	}
	return out, nil
}
