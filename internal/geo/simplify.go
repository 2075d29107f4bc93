package geo

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// DefaultSimplifyTolerance is the shared Douglas-Peucker tolerance in degrees.
const DefaultSimplifyTolerance = 0.01

// minRingCoords is the smallest valid closed ring.
const minRingCoords = 4

// Simplify reduces every ring of mp with the Douglas-Peucker algorithm.
// A tolerance <= 0 returns mp unchanged. Rings stay closed and a ring that
// would collapse below four coordinates keeps its original coordinates.
func Simplify(mp *geom.MultiPolygon, tolerance float64) *geom.MultiPolygon {
	if mp == nil || tolerance <= 0 {
		return mp
	}
	stride := mp.Stride()
	flat := mp.FlatCoords()

	out := make([]float64, 0, len(flat))
	endss := make([][]int, 0, len(mp.Endss()))
	offset := 0
	for _, ends := range mp.Endss() {
		newEnds := make([]int, 0, len(ends))
		for _, end := range ends {
			out = append(out, simplifyRing(flat[offset:end], stride, tolerance)...)
			newEnds = append(newEnds, len(out))
			offset = end
		}
		endss = append(endss, newEnds)
	}
	return geom.NewMultiPolygonFlat(mp.Layout(), out, endss).SetSRID(mp.SRID())
}

func simplifyRing(ring []float64, stride int, tolerance float64) []float64 {
	n := len(ring) / stride
	if n <= minRingCoords {
		return append([]float64(nil), ring...)
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	type span struct{ first, last int }
	stack := []span{{0, n - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		maxDist, index := 0.0, -1
		for i := s.first + 1; i < s.last; i++ {
			d := segmentDistance(ring, stride, i, s.first, s.last)
			if d > maxDist {
				maxDist, index = d, i
			}
		}
		if index >= 0 && maxDist > tolerance {
			keep[index] = true
			stack = append(stack, span{s.first, index}, span{index, s.last})
		}
	}

	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	if kept < minRingCoords {
		return append([]float64(nil), ring...)
	}

	out := make([]float64, 0, kept*stride)
	for i, k := range keep {
		if k {
			out = append(out, ring[i*stride:(i+1)*stride]...)
		}
	}
	return out
}

// segmentDistance is the planar distance from point p to the segment a-b.
func segmentDistance(ring []float64, stride, p, a, b int) float64 {
	px, py := ring[p*stride], ring[p*stride+1]
	ax, ay := ring[a*stride], ring[a*stride+1]
	bx, by := ring[b*stride], ring[b*stride+1]

	dx, dy := bx-ax, by-ay
	if dx == 0 && dy == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

// Centroid returns the area centroid of mp, falling back to the bounds
// center when the boundary has no area.
func Centroid(mp *geom.MultiPolygon) geom.Coord {
	if mp == nil || mp.Empty() {
		return geom.Coord{0, 0}
	}
	c, err := xy.Centroid(mp)
	if err != nil || len(c) < 2 || math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		b := mp.Bounds()
		return geom.Coord{(b.Min(0) + b.Max(0)) / 2, (b.Min(1) + b.Max(1)) / 2}
	}
	return geom.Coord{c[0], c[1]}
}
