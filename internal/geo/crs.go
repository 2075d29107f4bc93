// Package geo decodes region boundaries, normalizes them to WGS84 and
// simplifies them for rendering.
package geo

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// CRS identifies a coordinate reference system the loader understands.
type CRS string

// Supported reference systems. CRSUnspecified means the source declared none.
const (
	CRSUnspecified CRS = ""
	CRSWGS84       CRS = "EPSG:4326"
	CRSWebMercator CRS = "EPSG:3857"
)

// ErrUnsupportedCRS is returned for declared reference systems that cannot be normalized.
var ErrUnsupportedCRS = eris.New("geo: unsupported coordinate reference system")

const earthRadius = 6378137.0 // WGS84 semi-major axis, meters

// ParseCRSName resolves a GeoJSON named CRS, e.g. "EPSG:4326",
// "urn:ogc:def:crs:OGC:1.3:CRS84" or "urn:ogc:def:crs:EPSG::3857".
func ParseCRSName(name string) (CRS, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return CRSUnspecified, nil
	}
	code := n
	if i := strings.LastIndex(n, ":"); i >= 0 {
		code = n[i+1:]
	}
	switch code {
	case "4326", "CRS84", "WGS84":
		return CRSWGS84, nil
	case "3857", "900913", "102100", "102113", "3785":
		return CRSWebMercator, nil
	}
	return CRSUnspecified, eris.Wrapf(ErrUnsupportedCRS, "crs %q", name)
}

// ParsePRJ resolves the WKT content of a shapefile .prj sidecar.
func ParsePRJ(wkt string) (CRS, error) {
	w := strings.ToUpper(strings.TrimSpace(wkt))
	if w == "" {
		return CRSUnspecified, nil
	}
	if strings.HasPrefix(w, "PROJCS") {
		if strings.Contains(w, "MERCATOR") &&
			(strings.Contains(w, "AUXILIARY_SPHERE") || strings.Contains(w, "PSEUDO") ||
				strings.Contains(w, "WEB_MERCATOR") || strings.Contains(w, "3857")) {
			return CRSWebMercator, nil
		}
		return CRSUnspecified, eris.Wrapf(ErrUnsupportedCRS, "projection %.40q", wkt)
	}
	if strings.HasPrefix(w, "GEOGCS") &&
		(strings.Contains(w, "WGS_1984") || strings.Contains(w, "WGS 84") || strings.Contains(w, "WGS84")) {
		return CRSWGS84, nil
	}
	return CRSUnspecified, eris.Wrapf(ErrUnsupportedCRS, "datum %.40q", wkt)
}

// ToWGS84 returns a copy of mp expressed in lon/lat degrees with SRID 4326.
// Boundaries with no declared CRS must already fall within geographic bounds.
func ToWGS84(mp *geom.MultiPolygon, crs CRS) (*geom.MultiPolygon, error) {
	if mp == nil {
		return nil, eris.New("geo: nil boundary")
	}
	stride := mp.Stride()
	flat := append([]float64(nil), mp.FlatCoords()...)

	switch crs {
	case CRSWebMercator:
		for i := 0; i+1 < len(flat); i += stride {
			flat[i], flat[i+1] = mercatorToLonLat(flat[i], flat[i+1])
		}
	case CRSWGS84, CRSUnspecified:
		for i := 0; i+1 < len(flat); i += stride {
			if math.Abs(flat[i]) > 180 || math.Abs(flat[i+1]) > 90 {
				return nil, eris.Errorf("geo: coordinate (%g, %g) outside geographic bounds", flat[i], flat[i+1])
			}
		}
	default:
		return nil, eris.Wrapf(ErrUnsupportedCRS, "crs %q", string(crs))
	}

	endss := make([][]int, len(mp.Endss()))
	for i, ends := range mp.Endss() {
		endss[i] = append([]int(nil), ends...)
	}
	return geom.NewMultiPolygonFlat(mp.Layout(), flat, endss).SetSRID(4326), nil
}

func mercatorToLonLat(x, y float64) (lon, lat float64) {
	lon = x / earthRadius * 180 / math.Pi
	lat = (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}
