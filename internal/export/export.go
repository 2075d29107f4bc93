// Package export writes enriched views and their summaries for the
// rendering layer.
package export

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/enrich"
)

// Format names an export file format.
type Format string

// Supported formats.
const (
	FormatGeoJSON Format = "geojson"
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatSQLite  Format = "sqlite"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatGeoJSON, FormatCSV, FormatXLSX, FormatSQLite:
		return f, nil
	case "json":
		return FormatGeoJSON, nil
	case "db":
		return FormatSQLite, nil
	default:
		return "", eris.Errorf("export: unknown format %q", s)
	}
}

// Record is one region flattened for tabular outputs.
type Record struct {
	ID       string  `json:"region_id"`
	Name     string  `json:"region_name"`
	Value    float64 `json:"metric_value"`
	Category string  `json:"metric_category"`
	Label    string  `json:"label"`
	Color    string  `json:"color"`
	Quality  string  `json:"quality_category"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
}

// Records flattens v in view order.
func Records(v enrich.View, p enrich.Palette) []Record {
	out := make([]Record, v.Len())
	for i, r := range v.Regions() {
		out[i] = Record{
			ID:       r.ID,
			Name:     r.Name,
			Value:    r.Value,
			Category: string(r.Category),
			Label:    p.Label(r.Category),
			Color:    p.Color(r.Category),
			Quality:  r.Quality,
			Lon:      r.Centroid.X(),
			Lat:      r.Centroid.Y(),
		}
	}
	return out
}

var recordHeader = []string{
	"region_id", "region_name", "metric_value", "metric_category",
	"label", "color", "quality_category", "lon", "lat",
}

// WriteFile writes v to path in the given format. SQLite exports also carry
// the summary's category counts.
func WriteFile(ctx context.Context, path string, format Format, v enrich.View, s enrich.Summary, p enrich.Palette) error {
	log := zap.L().With(zap.String("component", "export"))

	if format == FormatSQLite {
		if err := WriteSQLite(ctx, path, v, s, p); err != nil {
			return err
		}
		log.Info("export written", zap.String("format", string(format)), zap.String("path", path), zap.Int("regions", v.Len()))
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	switch format {
	case FormatGeoJSON:
		err = WriteGeoJSON(f, v, p)
	case FormatCSV:
		err = WriteCSV(f, v, p)
	case FormatXLSX:
		err = WriteXLSX(f, v, s, p)
	default:
		err = eris.Errorf("export: unknown format %q", format)
	}
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "export: close %s", path)
	}

	log.Info("export written", zap.String("format", string(format)), zap.String("path", path), zap.Int("regions", v.Len()))
	return nil
}
