package region

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
)

// Category is the unmet-need severity tier of a region.
type Category string

// Severity tiers in ascending order.
const (
	Low      Category = "Low"
	Medium   Category = "Medium"
	High     Category = "High"
	VeryHigh Category = "Very High"
)

// Categories lists every recognized tier, lowest severity first.
var Categories = []Category{Low, Medium, High, VeryHigh}

// Bucket upper edges (percent). Buckets are right-closed: [0,20], (20,30], (30,40], (40,100].
const (
	lowUpper    = 20.0
	mediumUpper = 30.0
	highUpper   = 40.0

	minValue = 0.0
	maxValue = 100.0
)

// ErrUnknownCategory is returned by ParseCategory for labels outside the enumeration.
var ErrUnknownCategory = eris.New("region: unknown category")

// Classify returns the severity tier for an unmet-need percentage.
// Values outside [0, 100] are clamped to the nearest bound. NaN has no
// position on the scale and classifies as Low.
func Classify(value float64) Category {
	v := clamp(value)
	switch {
	case v <= lowUpper:
		return Low
	case v <= mediumUpper:
		return Medium
	case v <= highUpper:
		return High
	default:
		return VeryHigh
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < minValue {
		return minValue
	}
	if v > maxValue {
		return maxValue
	}
	return v
}

// Rank returns the severity position of c (0 for Low), or -1 if c is not recognized.
func (c Category) Rank() int {
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return -1
}

// Valid reports whether c is one of the recognized tiers.
func (c Category) Valid() bool { return c.Rank() >= 0 }

// aliases maps case-folded labels to tiers. The Indonesian labels are the ones
// used by the source dashboards.
var aliases = func() map[string]Category {
	m := map[string]Category{
		"rendah":        Low,
		"sedang":        Medium,
		"tinggi":        High,
		"sangat tinggi": VeryHigh,
		"very_high":     VeryHigh,
		"veryhigh":      VeryHigh,
	}
	folder := cases.Fold()
	for _, c := range Categories {
		m[folder.String(string(c))] = c
	}
	return m
}()

// ParseCategory maps a supplied label to its tier. Matching is case-insensitive
// and collapses internal whitespace.
func ParseCategory(label string) (Category, error) {
	key := cases.Fold().String(strings.Join(strings.Fields(label), " "))
	if c, ok := aliases[key]; ok {
		return c, nil
	}
	return "", eris.Wrapf(ErrUnknownCategory, "label %q", label)
}
