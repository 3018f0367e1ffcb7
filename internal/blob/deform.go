package blob

import (
	"math"
	"math/rand/v2"
)

// Deform distorts a base contour with seeded multi-frequency noise. Each
// point is pushed along its ray from center by
// 1 + noise·variation/baseRadius. The same inputs always give the same
// output because the generator is re-seeded from seed on every call.
func Deform(base []Point, center Point, baseRadius, variation float64, seed int) []Point {
	if baseRadius <= 0 {
		return append([]Point(nil), base...)
	}
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	s := float64(seed)
	n := float64(len(base))

	out := make([]Point, len(base))
	for i, p := range base {
		theta := float64(i) / n * 2 * math.Pi
		noise := 0.3*math.Sin(3*theta+0.1*s) +
			0.2*math.Sin(5*theta+0.2*s) +
			0.1*math.Sin(7*theta+0.3*s) +
			(rng.Float64()*0.2 - 0.1)

		factor := 1 + noise*variation/baseRadius
		out[i] = Point{
			X: center.X + (p.X-center.X)*factor,
			Y: center.Y + (p.Y-center.Y)*factor,
		}
	}
	return out
}
