// Package blob renders emotion vectors into evolving procedural "mood blob"
// images.
package blob

import (
	"fmt"
	"image/color"
	"math"
	"slices"

	"github.com/easeaico/echoverse/internal/emotion"
)

// RGB is an opaque 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Background is the canvas color of every blob image.
var Background = RGB{26, 26, 46}

var neutralGray = RGB{128, 128, 128}

var emotionColors = map[emotion.Emotion]RGB{
	emotion.Joy:        {255, 215, 0},
	emotion.Sadness:    {65, 105, 225},
	emotion.Anger:      {220, 20, 60},
	emotion.Fear:       {139, 0, 139},
	emotion.Surprise:   {255, 99, 71},
	emotion.Disgust:    {85, 107, 47},
	emotion.Neutral:    {128, 128, 128},
	emotion.Love:       {255, 105, 180},
	emotion.Anxiety:    {147, 112, 219},
	emotion.Excitement: {255, 140, 0},
}

// ColorOf returns the display color of e. Unknown emotions are gray.
func ColorOf(e emotion.Emotion) RGB {
	if c, ok := emotionColors[e]; ok {
		return c
	}
	return neutralGray
}

// Hex returns the color as #RRGGBB.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// NRGBA returns c with the given alpha.
func (c RGB) NRGBA(alpha uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha}
}

// BlendColors moves a toward b by ratio; 0 keeps a, 1 yields b. Channels are
// truncated toward zero.
func BlendColors(a, b RGB, ratio float64) RGB {
	mix := func(x, y uint8) uint8 {
		return uint8(clamp255(float64(x)*(1-ratio) + float64(y)*ratio))
	}
	return RGB{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B)}
}

// FadeColor desaturates c toward neutral gray by amount.
func FadeColor(c RGB, amount float64) RGB {
	return BlendColors(c, neutralGray, amount)
}

// Brighten scales every channel by factor, saturating at 255.
func Brighten(c RGB, factor float64) RGB {
	scale := func(x uint8) uint8 { return uint8(clamp255(float64(x) * factor)) }
	return RGB{scale(c.R), scale(c.G), scale(c.B)}
}

const (
	maxPalette       = 5
	minPalette       = 3
	maxSecondary     = 3
	maxFaded         = 3
	secondaryCutoff  = 0.1
	historyBlend     = 0.6
	priorImageBlend  = 0.4
	newestFadeAmount = 0.3
)

// Palette computes the 3 to 5 color palette for a blob. The first color is
// the evolved primary; then come secondary tones of the current vector and
// faded colors of the most recent history entries. prior is the mean color
// of the previous image, or nil.
func Palette(history []emotion.Vector, current emotion.Vector, prior *RGB) []RGB {
	primary := ColorOf(current.Primary)
	if len(history) > 0 {
		last := ColorOf(history[len(history)-1].Primary)
		primary = BlendColors(last, primary, historyBlend)
	}
	if prior != nil {
		primary = BlendColors(primary, *prior, priorImageBlend)
	}

	colors := make([]RGB, 0, maxPalette+maxFaded)
	colors = append(colors, primary)

	for _, s := range secondaryEmotions(current) {
		colors = append(colors, BlendColors(primary, ColorOf(s.emotion), s.score))
	}

	// older entries fade further toward gray
	recent := history[max(0, len(history)-maxFaded):]
	for i, v := range recent {
		age := len(recent) - 1 - i
		amount := 1 - math.Pow(1-newestFadeAmount, float64(age+1))
		colors = append(colors, FadeColor(ColorOf(v.Primary), amount))
	}

	for len(colors) < minPalette {
		colors = append(colors, primary)
	}
	if len(colors) > maxPalette {
		colors = colors[:maxPalette]
	}
	return colors
}

type scoredEmotion struct {
	emotion emotion.Emotion
	score   float64
}

// secondaryEmotions returns up to three non-primary emotions above the
// cutoff, strongest first.
func secondaryEmotions(v emotion.Vector) []scoredEmotion {
	var out []scoredEmotion
	for i, e := range emotion.Emotions {
		if e == v.Primary || v.Scores[i] <= secondaryCutoff {
			continue
		}
		out = append(out, scoredEmotion{emotion: e, score: v.Scores[i]})
	}
	slices.SortStableFunc(out, func(a, b scoredEmotion) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})
	if len(out) > maxSecondary {
		out = out[:maxSecondary]
	}
	return out
}

func clamp255(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return v
	}
}
