package enrich

import (
	"github.com/sells-group/choropleth-cli/internal/geo"
	"github.com/sells-group/choropleth-cli/internal/region"
)

// DuplicatePolicy decides how Join treats a region id that occurs twice on one side.
type DuplicatePolicy string

// Duplicate policies.
const (
	// LastWins keeps the later record. Deterministic for a given input order.
	LastWins DuplicatePolicy = "last"
	// FailOnDuplicate rejects the input with a DuplicateKeyError.
	FailOnDuplicate DuplicatePolicy = "error"
)

// Join inner-joins attributes and geometries on their normalized region id.
// Regions missing from either side are dropped. Output follows the first
// appearance of each id in attrs. Inputs are not modified.
func Join(attrs []region.Attribute, geoms []region.Geometry, policy DuplicatePolicy) (View, error) {
	boundaries := make(map[string]region.Geometry, len(geoms))
	for _, g := range geoms {
		if _, dup := boundaries[g.ID]; dup && policy == FailOnDuplicate {
			return View{}, &DuplicateKeyError{Side: "geometries", RegionID: g.ID}
		}
		boundaries[g.ID] = g
	}

	winners := make([]region.Attribute, 0, len(attrs))
	position := make(map[string]int, len(attrs))
	for _, a := range attrs {
		if i, dup := position[a.ID]; dup {
			if policy == FailOnDuplicate {
				return View{}, &DuplicateKeyError{Side: "attributes", RegionID: a.ID}
			}
			winners[i] = a
			continue
		}
		position[a.ID] = len(winners)
		winners = append(winners, a)
	}

	out := make([]region.Enriched, 0, min(len(winners), len(boundaries)))
	for _, a := range winners {
		g, ok := boundaries[a.ID]
		if !ok || g.Boundary == nil {
			continue
		}
		out = append(out, region.Enriched{
			Attribute: a,
			Boundary:  g.Boundary,
			Centroid:  geo.Centroid(g.Boundary),
		})
	}
	return View{regions: out}, nil
}
