package blob

import (
	"image"
	"image/draw"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"github.com/easeaico/echoverse/internal/emotion"
)

// pulsePeriod is the length in seconds of one glow cycle.
const pulsePeriod = 4.0

// Pulse maps a time in seconds onto the glow intensity, oscillating in
// [0.1, 0.5] around 0.3 with a four second period.
func Pulse(seconds float64) float64 {
	t := math.Mod(seconds, pulsePeriod)
	return 0.3 + 0.2*math.Sin(t*math.Pi/2)
}

// tinted emotions get a translucent overlay of the primary color.
var tinted = map[emotion.Emotion]bool{
	emotion.Anger:      true,
	emotion.Excitement: true,
	emotion.Fear:       true,
}

// Glow blends a wide blur of img back over itself with the pulse as opacity
// and tints high-arousal emotions.
func Glow(img *image.NRGBA, tint RGB, e emotion.Emotion, pulse, blurScale float64) *image.NRGBA {
	glow := imaging.Blur(img, 60*pulse*blurScale)
	out := imaging.Overlay(img, glow, image.Point{}, pulse)
	if tinted[e] {
		overlay := image.NewUniform(tint.NRGBA(uint8(40 + 40*pulse)))
		draw.Draw(out, out.Bounds(), overlay, image.Point{}, draw.Over)
	}
	return out
}

// Drift shifts img by up to one pixel in each direction, blurs the shifted
// copy and blends it back at 60% to suggest motion.
func Drift(img *image.NRGBA, rng *rand.Rand, blurScale float64) *image.NRGBA {
	dx, dy := rng.IntN(3)-1, rng.IntN(3)-1
	drifted := image.NewNRGBA(img.Bounds())
	draw.Draw(drifted, img.Bounds().Add(image.Pt(dx, dy)), img, img.Bounds().Min, draw.Src)

	smooth := imaging.Blur(drifted, math.Max(3*blurScale, 0.5))
	return imaging.Overlay(img, smooth, image.Point{}, 0.6)
}

// Grain adds uniform noise in [-5,4] to the color channels of every pixel.
// Alpha is left untouched.
func Grain(img *image.NRGBA, rng *rand.Rand) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		for c := range 3 {
			v := int(out.Pix[i+c]) + rng.IntN(10) - 5
			out.Pix[i+c] = uint8(min(max(v, 0), 255))
		}
	}
	return out
}
