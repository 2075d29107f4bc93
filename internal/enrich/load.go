// Package enrich joins region attributes with boundaries, classifies regions
// and derives the summary statistics and filtered views a dashboard renders.
package enrich

import (
	"context"
	"io"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/fetcher"
	"github.com/sells-group/choropleth-cli/internal/geo"
	"github.com/sells-group/choropleth-cli/internal/region"
)

var decimalComma = regexp.MustCompile(`^[+-]?[0-9]*,[0-9]{1,2}$`)

// Sources identifies the two pipeline inputs by path or URI.
type Sources struct {
	Attributes string
	Geometries string
}

// Columns maps source column names onto region fields. Name and Quality may
// be empty to mean "not present"; Category is only read when categories are
// supplied rather than derived.
type Columns struct {
	ID         string
	Name       string
	Value      string
	Category   string
	Quality    string
	GeometryID string
	KeyPad     int
}

// Opener resolves sources. fetcher.Sources satisfies it.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
	Localize(ctx context.Context, uri, tempDir string) (string, func(), error)
}

// LoadOptions configures LoadAndNormalize.
type LoadOptions struct {
	Columns Columns
	// DeriveCategory classifies from the metric; otherwise the category column
	// is authoritative and only validated.
	DeriveCategory bool
	// Lenient drops rows with invalid supplied categories instead of failing.
	Lenient           bool
	SimplifyTolerance float64
	Sheet             string
	SkipRows          int
	Delimiter         rune
	TempDir           string
	Opener            Opener
}

// DefaultLoadOptions returns options for the default column layout.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Columns: Columns{
			ID:         "region_id",
			Name:       "region_name",
			Value:      "metric_value",
			Category:   "metric_category",
			Quality:    "quality_category",
			GeometryID: "region_id",
		},
		DeriveCategory:    true,
		SimplifyTolerance: geo.DefaultSimplifyTolerance,
		Delimiter:         ',',
		Opener:            fetcher.New(fetcher.Options{}),
	}
}

// Dataset is the normalized pair of inputs. It is shared by cache readers
// and must not be modified.
type Dataset struct {
	Attributes []region.Attribute
	Geometries []region.Geometry
}

// LoadAndNormalize reads both sources, normalizes join keys, classifies or
// validates categories, reprojects boundaries to WGS84 and simplifies them.
func LoadAndNormalize(ctx context.Context, src Sources, opts LoadOptions) (*Dataset, error) {
	if opts.Opener == nil {
		opts.Opener = fetcher.New(fetcher.Options{})
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}

	log := zap.L().With(zap.String("component", "enrich.load"))

	attrs, err := loadAttributes(ctx, src.Attributes, opts)
	if err != nil {
		return nil, asLoadError(src.Attributes, err)
	}
	geoms, err := loadGeometries(ctx, src.Geometries, opts)
	if err != nil {
		return nil, asLoadError(src.Geometries, err)
	}

	log.Info("sources loaded",
		zap.String("attributes", src.Attributes),
		zap.String("geometries", src.Geometries),
		zap.Int("attribute_records", len(attrs)),
		zap.Int("geometry_records", len(geoms)),
	)
	return &Dataset{Attributes: attrs, Geometries: geoms}, nil
}

// sourceExt returns the lowercased extension of a path or URI path.
func sourceExt(uri string) string {
	if fetcher.Scheme(uri) != "" {
		if u, err := url.Parse(uri); err == nil {
			return strings.ToLower(filepath.Ext(u.Path))
		}
	}
	return strings.ToLower(filepath.Ext(uri))
}

func loadAttributes(ctx context.Context, uri string, opts LoadOptions) ([]region.Attribute, error) {
	if uri == "" {
		return nil, eris.New("attribute source not configured")
	}

	var table *fetcher.Table
	switch ext := sourceExt(uri); ext {
	case ".csv", ".tsv", ".txt":
		rc, err := opts.Opener.Open(ctx, uri)
		if err != nil {
			return nil, err
		}
		defer rc.Close() //nolint:errcheck

		delim := opts.Delimiter
		if ext == ".tsv" {
			delim = '\t'
		}
		table, err = fetcher.ReadCSVTable(ctx, rc, fetcher.CSVOptions{Delimiter: delim, LazyQuotes: true})
		if err != nil {
			return nil, err
		}
	case ".xlsx":
		path, cleanup, err := opts.Opener.Localize(ctx, uri, opts.TempDir)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		table, err = fetcher.ReadXLSXTable(path, fetcher.XLSXOptions{SheetName: opts.Sheet, SkipRows: opts.SkipRows})
		if err != nil {
			return nil, err
		}
	default:
		return nil, eris.Errorf("unsupported attribute format %q", ext)
	}

	return parseAttributes(table, opts)
}

type attributeColumns struct {
	id, name, value, category, quality int
}

func resolveColumns(table *fetcher.Table, opts LoadOptions) (attributeColumns, error) {
	c := attributeColumns{id: -1, name: -1, value: -1, category: -1, quality: -1}
	var missing []string

	need := func(name string, dst *int) {
		if name == "" {
			return
		}
		*dst = table.Index(name)
		if *dst < 0 {
			missing = append(missing, name)
		}
	}
	need(opts.Columns.ID, &c.id)
	need(opts.Columns.Name, &c.name)
	need(opts.Columns.Value, &c.value)
	need(opts.Columns.Quality, &c.quality)
	if !opts.DeriveCategory {
		need(opts.Columns.Category, &c.category)
	}
	if opts.Columns.ID == "" || opts.Columns.Value == "" {
		missing = append(missing, "(unconfigured id/value column)")
	}

	if len(missing) > 0 {
		return c, eris.Errorf("missing required columns %s", strings.Join(missing, ", "))
	}
	return c, nil
}

func parseAttributes(table *fetcher.Table, opts LoadOptions) ([]region.Attribute, error) {
	cols, err := resolveColumns(table, opts)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("component", "enrich.load"))
	out := make([]region.Attribute, 0, len(table.Rows))

	for i, row := range table.Rows {
		rowNum := i + 2 // 1-based, after the header

		id := NormalizeKey(fetcher.Cell(row, cols.id), opts.Columns.KeyPad)
		if id == "" {
			log.Warn("skipping row without region id", zap.Int("row", rowNum))
			continue
		}

		value, err := ParseMetric(fetcher.Cell(row, cols.value))
		if err != nil {
			return nil, eris.Wrapf(err, "row %d (region %s)", rowNum, id)
		}

		a := region.Attribute{
			ID:      id,
			Name:    id,
			Value:   value,
			Quality: fetcher.Cell(row, cols.quality),
		}
		if cols.name >= 0 {
			if name := fetcher.Cell(row, cols.name); name != "" {
				a.Name = name
			}
		}

		if opts.DeriveCategory {
			a.Category = region.Classify(value)
		} else {
			label := fetcher.Cell(row, cols.category)
			c, err := region.ParseCategory(label)
			if err != nil {
				if opts.Lenient {
					log.Warn("dropping row with invalid category",
						zap.Int("row", rowNum),
						zap.String("region_id", id),
						zap.String("label", label),
					)
					continue
				}
				return nil, &InvalidCategoryError{RegionID: id, Label: label, Row: rowNum}
			}
			a.Category = c
		}

		out = append(out, a)
	}
	return out, nil
}

// ParseMetric parses a percentage cell. A trailing "%" is allowed. When no
// dot is present, a single comma followed by one or two digits is a decimal
// separator ("35,2"); any other comma, such as the thousands separator in
// "1,234", is rejected.
func ParseMetric(raw string) (float64, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if s == "" {
		return 0, eris.New("empty metric value")
	}
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		if !decimalComma.MatchString(s) {
			return 0, eris.Errorf("metric value %q: ambiguous comma", raw)
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "metric value %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Errorf("metric value %q is not a finite number", raw)
	}
	return v, nil
}

func loadGeometries(ctx context.Context, uri string, opts LoadOptions) ([]region.Geometry, error) {
	if uri == "" {
		return nil, eris.New("geometry source not configured")
	}

	var coll *geo.Collection
	switch ext := sourceExt(uri); ext {
	case ".geojson", ".json":
		rc, err := opts.Opener.Open(ctx, uri)
		if err != nil {
			return nil, err
		}
		defer rc.Close() //nolint:errcheck

		coll, err = geo.ReadGeoJSON(rc, opts.Columns.GeometryID)
		if err != nil {
			return nil, err
		}
	case ".shp":
		path, ok := fetcher.LocalPath(uri)
		if !ok {
			return nil, eris.New("remote shapefiles must be zipped with their sidecar files")
		}
		var err error
		coll, err = geo.ReadShapefile(path, opts.Columns.GeometryID)
		if err != nil {
			return nil, err
		}
	case ".zip":
		path, cleanup, err := opts.Opener.Localize(ctx, uri, opts.TempDir)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		tempDir := opts.TempDir
		if tempDir == "" {
			tempDir = os.TempDir()
		}
		coll, err = geo.ReadZippedShapefile(path, opts.Columns.GeometryID, tempDir)
		if err != nil {
			return nil, err
		}
	default:
		return nil, eris.Errorf("unsupported geometry format %q", ext)
	}

	return normalizeGeometries(coll, opts)
}

func normalizeGeometries(coll *geo.Collection, opts LoadOptions) ([]region.Geometry, error) {
	log := zap.L().With(zap.String("component", "enrich.load"))
	if coll.Skipped > 0 {
		log.Warn("skipped boundary records without polygon geometry", zap.Int("skipped", coll.Skipped))
	}

	out := make([]region.Geometry, 0, len(coll.Features))
	for i, f := range coll.Features {
		id := NormalizeKey(f.Key, opts.Columns.KeyPad)
		if id == "" {
			log.Warn("skipping boundary without region id", zap.Int("feature", i))
			continue
		}
		mp, err := geo.ToWGS84(f.Boundary, coll.CRS)
		if err != nil {
			return nil, eris.Wrapf(err, "region %s", id)
		}
		out = append(out, region.Geometry{ID: id, Boundary: geo.Simplify(mp, opts.SimplifyTolerance)})
	}
	return out, nil
}
