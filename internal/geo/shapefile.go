package geo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/fetcher"
)

// ReadShapefile decodes a polygon shapefile with its .dbf attributes and
// optional .prj projection sidecar.
func ReadShapefile(shpPath, keyField string) (*Collection, error) {
	crs, err := readPRJ(shpPath)
	if err != nil {
		return nil, err
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: open %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	keyIdx := fieldIndex(reader, keyField)
	if keyIdx < 0 {
		return nil, eris.Errorf("shapefile: required field %q not found", keyField)
	}

	log := zap.L().With(zap.String("component", "geo.shapefile"))
	out := &Collection{CRS: crs}
	for reader.Next() {
		n, shape := reader.Shape()
		key := strings.TrimSpace(strings.TrimRight(reader.Attribute(keyIdx), "\x00"))

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			out.Skipped++
			continue
		}
		mp := PolygonToMultiPolygon(poly)
		if mp == nil {
			log.Warn("skipping empty shape", zap.Int("record", n), zap.String("key", key))
			out.Skipped++
			continue
		}
		out.Features = append(out.Features, Feature{Key: key, Boundary: mp})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "shapefile: read %s", shpPath)
	}

	return out, nil
}

// ReadZippedShapefile extracts a zipped shapefile into tempDir and decodes it.
func ReadZippedShapefile(zipPath, keyField, tempDir string) (*Collection, error) {
	if tempDir != "" {
		if err := os.MkdirAll(tempDir, 0o755); err != nil {
			return nil, eris.Wrap(err, "shapefile: create temp dir")
		}
	}
	dir, err := os.MkdirTemp(tempDir, "shp-*")
	if err != nil {
		return nil, eris.Wrap(err, "shapefile: create extract dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	files, err := fetcher.ExtractZIP(zipPath, dir)
	if err != nil {
		return nil, eris.Wrap(err, "shapefile: extract")
	}
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ".shp") {
			return ReadShapefile(f, keyField)
		}
	}
	return nil, eris.Errorf("shapefile: no .shp file in %s", zipPath)
}

func readPRJ(shpPath string) (CRS, error) {
	prjPath := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj"
	data, err := os.ReadFile(prjPath)
	if os.IsNotExist(err) {
		return CRSUnspecified, nil
	}
	if err != nil {
		return CRSUnspecified, eris.Wrap(err, "shapefile: read prj")
	}
	return ParsePRJ(string(data))
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// PolygonToMultiPolygon converts shapefile polygon parts into a multipolygon.
// Clockwise parts start a new polygon; counter-clockwise parts are holes of
// the preceding polygon. Returns nil when no valid ring remains.
func PolygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var current *geom.Polygon
	flush := func() {
		if current != nil && current.NumLinearRings() > 0 {
			if err := mp.Push(current); err != nil {
				zap.L().Debug("geo: skipping malformed polygon", zap.Error(err))
			}
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < minRingCoords {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current == nil || signedArea(flat) < 0 {
			flush()
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("geo: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is positive for counter-clockwise rings.
func signedArea(flat []float64) float64 {
	var sum float64
	for i := 0; i+3 < len(flat); i += 2 {
		sum += flat[i]*flat[i+3] - flat[i+2]*flat[i+1]
	}
	return sum / 2
}
