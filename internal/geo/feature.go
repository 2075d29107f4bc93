package geo

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// Feature is a decoded boundary keyed by the raw (not yet normalized) region id.
type Feature struct {
	Key      string
	Boundary *geom.MultiPolygon
}

// Collection is the decoded content of one geometry source.
type Collection struct {
	CRS      CRS
	Features []Feature
	// Skipped counts records dropped for missing or non-polygonal geometry.
	Skipped int
}

// toMultiPolygon promotes polygons to single-part multipolygons.
// Non-polygonal geometries report false.
func toMultiPolygon(g geom.T) (*geom.MultiPolygon, bool) {
	switch t := g.(type) {
	case *geom.MultiPolygon:
		if t.NumPolygons() == 0 {
			return nil, false
		}
		return t, true
	case *geom.Polygon:
		if t.NumLinearRings() == 0 {
			return nil, false
		}
		mp := geom.NewMultiPolygon(t.Layout()).SetSRID(t.SRID())
		if err := mp.Push(t); err != nil {
			return nil, false
		}
		return mp, true
	default:
		return nil, false
	}
}

// rawKey renders a property value as a key string. Numbers never use
// exponent notation so 3201 and 3201.0 render identically.
func rawKey(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return strings.Trim(string(b), `"`)
	}
}

// lookupProperty finds a property by name, case-insensitively.
func lookupProperty(props map[string]any, name string) (any, bool) {
	if v, ok := props[name]; ok {
		return v, true
	}
	for k, v := range props {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}
