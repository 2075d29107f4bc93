package enrich

import (
	"strings"

	"github.com/sells-group/choropleth-cli/internal/region"
)

// All matches every value of a filter. "Semua" is accepted as an alias.
const All = "all"

// FilterOptions selects regions by category, quality tier and region.
// Empty fields behave like All. Region matches a region name or an id;
// ids are normalized with KeyPad the way NormalizeKey treats loaded keys.
type FilterOptions struct {
	Category string `json:"category" yaml:"category"`
	Quality  string `json:"quality" yaml:"quality"`
	Region   string `json:"region" yaml:"region"`
	KeyPad   int    `json:"-" yaml:"-"`
}

func isAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, All) || strings.EqualFold(s, "semua")
}

// Filter returns the regions matching every selected filter, in view order.
// Values that match nothing yield an empty view.
func Filter(v View, opts FilterOptions) View {
	var preds []func(region.Enriched) bool

	if !isAll(opts.Category) {
		want, err := region.ParseCategory(opts.Category)
		if err != nil {
			return View{regions: []region.Enriched{}}
		}
		preds = append(preds, func(r region.Enriched) bool { return r.Category == want })
	}
	if !isAll(opts.Quality) {
		want := strings.TrimSpace(opts.Quality)
		preds = append(preds, func(r region.Enriched) bool { return strings.EqualFold(r.Quality, want) })
	}
	if !isAll(opts.Region) {
		want := strings.TrimSpace(opts.Region)
		id := NormalizeKey(want, opts.KeyPad)
		preds = append(preds, func(r region.Enriched) bool {
			return r.ID == id || strings.EqualFold(r.Name, want)
		})
	}

	out := make([]region.Enriched, 0, v.Len())
	for _, r := range v.regions {
		if matchesAll(r, preds) {
			out = append(out, r)
		}
	}
	return View{regions: out}
}

func matchesAll(r region.Enriched, preds []func(region.Enriched) bool) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// QualityOptions lists the distinct quality tiers of a view in first-seen order.
func QualityOptions(v View) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range v.regions {
		key := strings.ToLower(r.Quality)
		if r.Quality == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r.Quality)
	}
	return out
}
