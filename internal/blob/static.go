package blob

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/disintegration/imaging"

	"github.com/easeaico/echoverse/internal/emotion"
)

const (
	staticSize          = 800
	staticRadius        = 200
	staticVertices      = 12
	staticJitter        = 50
	staticCircleCutoff  = 0.2
	staticCircleOffset  = 100
	staticCircleScale   = 0.6
	staticBlur          = 20
	staticGlowBlur      = 40
	staticGlowOpacity   = 0.3
	staticCircleSamples = 90
)

// Static draws the simple 800x800 mood blob used for charts: a jittered
// twelve-vertex polygon in the primary color plus translucent circles for
// the strongest secondary emotions. rng may be nil.
func Static(v emotion.Vector, rng *rand.Rand) *image.NRGBA {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	img := imaging.New(staticSize, staticSize, Background.NRGBA(255))
	center := Point{X: staticSize / 2, Y: staticSize / 2}

	jitter := staticJitter * v.PrimaryScore
	polygon := make([]Point, staticVertices)
	for i := range polygon {
		theta := float64(i) / staticVertices * 2 * math.Pi
		r := staticRadius + (rng.Float64()*2-1)*jitter
		polygon[i] = Point{X: center.X + r*math.Cos(theta), Y: center.Y + r*math.Sin(theta)}
	}
	fillPolygon(img, polygon, ColorOf(v.Primary).NRGBA(255))

	for _, s := range staticSecondaries(v) {
		at := Point{
			X: center.X + float64(rng.IntN(2*staticCircleOffset)-staticCircleOffset),
			Y: center.Y + float64(rng.IntN(2*staticCircleOffset)-staticCircleOffset),
		}
		radius := float64(int(staticRadius * s.score * staticCircleScale))
		circle := BaseContour(emotion.Neutral, at, radius, staticCircleSamples)
		fillPolygon(img, circle, ColorOf(s.emotion).NRGBA(uint8(s.score*128)))
	}

	img = imaging.Blur(img, staticBlur)
	return imaging.Overlay(img, imaging.Blur(img, staticGlowBlur), image.Point{}, staticGlowOpacity)
}

// StaticPNG encodes Static as PNG.
func StaticPNG(v emotion.Vector, rng *rand.Rand) ([]byte, error) {
	return encodePNG(Static(v, rng))
}

// staticSecondaries are the second to fourth ranked emotions when they score
// above the circle cutoff.
func staticSecondaries(v emotion.Vector) []scoredEmotion {
	ranked := make([]scoredEmotion, 0, emotion.NumEmotions)
	for i, e := range emotion.Emotions {
		ranked = append(ranked, scoredEmotion{emotion: e, score: v.Scores[i]})
	}
	slices.SortStableFunc(ranked, func(a, b scoredEmotion) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})
	var out []scoredEmotion
	for _, s := range ranked[1:4] {
		if s.score > staticCircleCutoff {
			out = append(out, s)
		}
	}
	return out
}

func fillPolygon(dst *image.NRGBA, points []Point, fill color.NRGBA) {
	rect := bounds(points).Intersect(dst.Bounds())
	if rect.Empty() || len(points) < 3 {
		return
	}
	mask := polygonMask(points, rect)
	draw.DrawMask(dst, rect, image.NewUniform(fill), image.Point{}, mask, image.Point{}, draw.Over)
}
