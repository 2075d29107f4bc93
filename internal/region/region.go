// Package region defines the region records flowing through the enrichment
// pipeline and the unmet-need severity classification.
package region

import (
	"github.com/twpayne/go-geom"
)

// WGS84 is the SRID every boundary carries after normalization.
const WGS84 = 4326

// Attribute is one row of the region attribute table.
type Attribute struct {
	ID       string   `json:"region_id" yaml:"region_id"`
	Name     string   `json:"region_name" yaml:"region_name"`
	Value    float64  `json:"metric_value" yaml:"metric_value"`
	Category Category `json:"metric_category" yaml:"metric_category"`
	Quality  string   `json:"quality_category,omitempty" yaml:"quality_category,omitempty"`
}

// Geometry is one boundary record keyed by region id.
type Geometry struct {
	ID       string
	Boundary *geom.MultiPolygon
}

// Enriched is an attribute record joined with its boundary.
type Enriched struct {
	Attribute
	Boundary *geom.MultiPolygon `json:"-" yaml:"-"`
	// Centroid is the lon/lat marker position of the boundary.
	Centroid geom.Coord `json:"centroid" yaml:"centroid"`
}

// Geometry returns the geometry half of the enriched record.
func (e Enriched) Geometry() Geometry {
	return Geometry{ID: e.ID, Boundary: e.Boundary}
}
