package blob

import (
	"image"
	"math"
	"slices"

	"github.com/disintegration/imaging"
)

// contourPercentile is the luminance percentile above which a pixel counts
// as part of the previous blob.
const contourPercentile = 60

// RecoverContour estimates the previous blob outline from a raster. Pixels
// brighter than the 60th luminance percentile are collected in row-major
// order and subsampled by a fixed stride; at most n are kept and ordered by
// angle around their centroid so they line up with freshly generated
// contours. The estimate is approximate and may hold fewer than n points.
func RecoverContour(img image.Image, n int) []Point {
	if img == nil || n <= 0 {
		return nil
	}
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	lum := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w*4]
		for x := 0; x < w; x++ {
			lum[y*w+x] = row[x*4]
		}
	}
	threshold := percentile(lum, contourPercentile)

	var above []Point
	for i, v := range lum {
		if float64(v) > threshold {
			above = append(above, Point{X: float64(i % w), Y: float64(i / w)})
		}
	}
	if len(above) == 0 {
		return nil
	}

	stride := max(len(above)/n, 1)
	points := make([]Point, 0, n)
	for i := 0; i < len(above) && len(points) < n; i += stride {
		points = append(points, above[i])
	}

	c := Centroid(points)
	angle := func(p Point) float64 {
		a := math.Atan2(p.Y-c.Y, p.X-c.X)
		if a < 0 {
			a += 2 * math.Pi
		}
		return a
	}
	slices.SortStableFunc(points, func(p, q Point) int {
		ap, aq := angle(p), angle(q)
		switch {
		case ap < aq:
			return -1
		case ap > aq:
			return 1
		default:
			return 0
		}
	})
	return points
}

// percentile returns the p-th percentile of values with linear
// interpolation between the closest ranks.
func percentile(values []uint8, p float64) float64 {
	var hist [256]int
	for _, v := range values {
		hist[v]++
	}
	rank := p / 100 * float64(len(values)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	return lerp(float64(nth(hist, lo)), float64(nth(hist, hi)), rank-float64(lo))
}

// nth returns the k-th smallest value (0-based) from a histogram.
func nth(hist [256]int, k int) uint8 {
	seen := 0
	for v, count := range hist {
		seen += count
		if k < seen {
			return uint8(v)
		}
	}
	return 255
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// MeanColor returns the average RGB of img.
func MeanColor(img image.Image) RGB {
	src := imaging.Clone(img)
	b := src.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return Background
	}
	var r, g, bl int
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			r += int(row[x*4])
			g += int(row[x*4+1])
			bl += int(row[x*4+2])
		}
	}
	return RGB{uint8(r / n), uint8(g / n), uint8(bl / n)}
}
