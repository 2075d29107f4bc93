package enrich

import (
	"cmp"
	"slices"

	"github.com/sells-group/choropleth-cli/internal/region"
)

// CategoryCount is the number of regions in one tier.
type CategoryCount struct {
	Category region.Category `json:"category" yaml:"category"`
	Count    int             `json:"count" yaml:"count"`
}

// Summary holds the aggregate statistics of a view.
type Summary struct {
	Count int `json:"count" yaml:"count"`
	// Mean, Min and Max are meaningful only when NoData is false.
	Mean   float64 `json:"mean" yaml:"mean"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	NoData bool    `json:"no_data" yaml:"no_data"`
	// CategoryCounts lists every recognized tier, zero counts included.
	CategoryCounts []CategoryCount     `json:"category_counts" yaml:"category_counts"`
	Top            []region.Attribute `json:"top" yaml:"top"`
	Bottom         []region.Attribute `json:"bottom" yaml:"bottom"`
}

// MeanValue returns the mean, or ErrNoData for an empty view.
func (s Summary) MeanValue() (float64, error) {
	if s.NoData {
		return 0, ErrNoData
	}
	return s.Mean, nil
}

// CountOf returns the number of regions in category c.
func (s Summary) CountOf(c region.Category) int {
	for _, cc := range s.CategoryCounts {
		if cc.Category == c {
			return cc.Count
		}
	}
	return 0
}

// Summarize computes the mean, per-tier counts and the top/bottom regions.
func Summarize(v View, topK, bottomK int) Summary {
	s := Summary{
		Count:          v.Len(),
		CategoryCounts: make([]CategoryCount, len(region.Categories)),
		Top:            attributesOf(TopK(v, topK)),
		Bottom:         attributesOf(BottomK(v, bottomK)),
	}
	for i, c := range region.Categories {
		s.CategoryCounts[i].Category = c
	}

	if v.Len() == 0 {
		s.NoData = true
		return s
	}

	var sum float64
	s.Min, s.Max = v.regions[0].Value, v.regions[0].Value
	for _, r := range v.regions {
		sum += r.Value
		s.Min = min(s.Min, r.Value)
		s.Max = max(s.Max, r.Value)
		if rank := r.Category.Rank(); rank >= 0 {
			s.CategoryCounts[rank].Count++
		}
	}
	s.Mean = sum / float64(v.Len())
	return s
}

// TopK returns up to n regions by descending value, ties by ascending id.
func TopK(v View, n int) []region.Enriched {
	return ranked(v, n, func(a, b region.Enriched) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// BottomK returns up to n regions by ascending value, ties by ascending id.
func BottomK(v View, n int) []region.Enriched {
	return ranked(v, n, func(a, b region.Enriched) int {
		if c := cmp.Compare(a.Value, b.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func ranked(v View, n int, order func(a, b region.Enriched) int) []region.Enriched {
	if n <= 0 || v.Len() == 0 {
		return []region.Enriched{}
	}
	sorted := v.Regions()
	slices.SortStableFunc(sorted, order)
	return sorted[:min(n, len(sorted))]
}

func attributesOf(regions []region.Enriched) []region.Attribute {
	out := make([]region.Attribute, len(regions))
	for i, r := range regions {
		out[i] = r.Attribute
	}
	return out
}
