package enrich

import (
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/region"
)

// Palette maps tiers to display labels and colors.
type Palette struct {
	Labels map[region.Category]string
	Colors map[region.Category]string
}

// DefaultPalette returns the labels and colors of the unmet-need dashboard.
func DefaultPalette() Palette {
	return Palette{
		Labels: map[region.Category]string{
			region.Low:      "Rendah",
			region.Medium:   "Sedang",
			region.High:     "Tinggi",
			region.VeryHigh: "Sangat Tinggi",
		},
		Colors: map[region.Category]string{
			region.Low:      "green",
			region.Medium:   "yellow",
			region.High:     "orange",
			region.VeryHigh: "darkred",
		},
	}
}

// NewPalette builds a palette from label and color maps keyed by any
// recognized category spelling. Unrecognized keys are logged and ignored.
func NewPalette(labels, colors map[string]string) Palette {
	p := Palette{
		Labels: make(map[region.Category]string, len(labels)),
		Colors: make(map[region.Category]string, len(colors)),
	}
	fill := func(dst map[region.Category]string, src map[string]string) {
		for k, v := range src {
			c, err := region.ParseCategory(k)
			if err != nil {
				zap.L().Warn("enrich: ignoring palette entry", zap.String("category", k))
				continue
			}
			dst[c] = v
		}
	}
	fill(p.Labels, labels)
	fill(p.Colors, colors)
	return p
}

// Label returns the display label of c, defaulting to the tier name.
func (p Palette) Label(c region.Category) string {
	if l, ok := p.Labels[c]; ok && l != "" {
		return l
	}
	return string(c)
}

// Color returns the color of c, defaulting to gray.
func (p Palette) Color(c region.Category) string {
	if col, ok := p.Colors[c]; ok && col != "" {
		return col
	}
	return "gray"
}

// LegendEntry is one legend row.
type LegendEntry struct {
	Category region.Category `json:"category" yaml:"category"`
	Label    string          `json:"label" yaml:"label"`
	Color    string          `json:"color" yaml:"color"`
	Count    int             `json:"count" yaml:"count"`
}

// ActiveCategories returns the tiers that occur in v, lowest severity first.
func ActiveCategories(v View) []region.Category {
	counts := make([]int, len(region.Categories))
	for _, r := range v.regions {
		if rank := r.Category.Rank(); rank >= 0 {
			counts[rank]++
		}
	}
	var out []region.Category
	for i, c := range region.Categories {
		if counts[i] > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Legend maps only the tiers present in v.
func Legend(v View, p Palette) []LegendEntry {
	s := Summarize(v, 0, 0)
	var out []LegendEntry
	for _, c := range ActiveCategories(v) {
		out = append(out, LegendEntry{
			Category: c,
			Label:    p.Label(c),
			Color:    p.Color(c),
			Count:    s.CountOf(c),
		})
	}
	return out
}
