package enrich

import (
	"github.com/sells-group/choropleth-cli/internal/region"
)

// View is an immutable ordered snapshot of enriched regions. Accessors
// return copies, so callers cannot change a view they were handed.
type View struct {
	regions []region.Enriched
}

// NewView copies regions into a view.
func NewView(regions []region.Enriched) View {
	return View{regions: append([]region.Enriched(nil), regions...)}
}

// Len returns the number of regions.
func (v View) Len() int { return len(v.regions) }

// At returns the i-th region.
func (v View) At(i int) region.Enriched { return v.regions[i] }

// Regions returns a copy of the regions in view order.
func (v View) Regions() []region.Enriched {
	return append([]region.Enriched(nil), v.regions...)
}

// IDs returns region ids in view order.
func (v View) IDs() []string {
	ids := make([]string, len(v.regions))
	for i, r := range v.regions {
		ids[i] = r.ID
	}
	return ids
}

// Attributes splits the view back into attribute records.
func (v View) Attributes() []region.Attribute {
	out := make([]region.Attribute, len(v.regions))
	for i, r := range v.regions {
		out[i] = r.Attribute
	}
	return out
}

// Geometries splits the view back into geometry records.
func (v View) Geometries() []region.Geometry {
	out := make([]region.Geometry, len(v.regions))
	for i, r := range v.regions {
		out[i] = r.Geometry()
	}
	return out
}

// Equal reports whether both views hold the same regions in the same order.
func (v View) Equal(other View) bool {
	if len(v.regions) != len(other.regions) {
		return false
	}
	for i := range v.regions {
		a, b := v.regions[i], other.regions[i]
		if a.Attribute != b.Attribute || a.Boundary != b.Boundary {
			return false
		}
	}
	return true
}
