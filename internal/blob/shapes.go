package blob

import (
	"image"
	"math"

	"github.com/easeaico/echoverse/internal/emotion"
)

// ContourPoints is the number of points of every blob contour.
const ContourPoints = 360

// Point is a canvas coordinate. Y grows downward.
type Point struct {
	X, Y float64
}

// heartScale maps the parametric heart curve (about 32 units wide) onto the
// base radius.
const heartScale = 0.05

// BaseContour returns the n-point closed base shape of e around center.
// Angles are swept from 0 to 2π; the result is deterministic.
func BaseContour(e emotion.Emotion, center Point, radius float64, n int) []Point {
	if n <= 0 {
		return nil
	}
	points := make([]Point, n)
	for i := range points {
		theta := float64(i) / float64(n) * 2 * math.Pi
		if e == emotion.Love {
			x := 16 * math.Pow(math.Sin(theta), 3)
			y := 13*math.Cos(theta) - 5*math.Cos(2*theta) - 2*math.Cos(3*theta) - math.Cos(4*theta)
			s := radius * heartScale
			points[i] = Point{X: center.X + x*s, Y: center.Y - y*s}
			continue
		}
		r := radius * radialFactor(e, theta)
		points[i] = Point{X: center.X + r*math.Cos(theta), Y: center.Y + r*math.Sin(theta)}
	}
	return points
}

// radialFactor is r(θ)/R for the radial shapes.
func radialFactor(e emotion.Emotion, theta float64) float64 {
	switch e {
	case emotion.Sadness:
		f := 0.9 + 0.1*math.Sin(theta)
		if theta > math.Pi {
			f *= 1.2
		}
		return f
	case emotion.Anger:
		return 1 + 0.4*math.Sin(5*theta)
	case emotion.Fear:
		return 1 + 0.25*math.Sin(9*theta)
	case emotion.Anxiety:
		return 1 - 0.3*math.Sin(6*theta)
	case emotion.Excitement:
		return 1 + 0.5*math.Sin(8*theta)
	case emotion.Disgust:
		return 1 + 0.2*math.Sin(3*theta+math.Sin(6*theta))
	case emotion.Surprise:
		return 1 + 0.35*math.Sin(4*theta)
	default:
		return 1
	}
}

// Centroid returns the mean of points.
func Centroid(points []Point) Point {
	var c Point
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(points))
	return Point{X: c.X / n, Y: c.Y / n}
}

// ScalePoints expands (factor > 1) or contracts points about their centroid.
func ScalePoints(points []Point, factor float64) []Point {
	c := Centroid(points)
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{X: c.X + (p.X-c.X)*factor, Y: c.Y + (p.Y-c.Y)*factor}
	}
	return out
}

// Interpolate moves each point of from toward the matching point of to by
// alpha. Both contours must have the same length.
func Interpolate(from, to []Point, alpha float64) []Point {
	out := make([]Point, len(to))
	for i := range to {
		out[i] = Point{
			X: from[i].X*(1-alpha) + to[i].X*alpha,
			Y: from[i].Y*(1-alpha) + to[i].Y*alpha,
		}
	}
	return out
}

// bounds returns the smallest integer rectangle containing points.
func bounds(points []Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
}
