package blob

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/easeaico/echoverse/internal/emotion"
)

const (
	// DefaultSize is the edge length of evolution blobs.
	DefaultSize = 1200
	// referenceSize is the canvas the radius, variation and blur constants
	// are tuned for.
	referenceSize = 1200

	priorFade     = 0.15
	morphAlpha    = 0.35
	phasePeriod   = 60 * time.Second
	maxHistoryLen = 30
)

// Options configures an Evolution. Zero values select production defaults.
type Options struct {
	// Size is the canvas edge length in pixels.
	Size int
	// Now drives the liveliness phase and the glow pulse.
	Now func() time.Time
	// Rand is the entropy source for drift and grain.
	Rand *rand.Rand
}

// Evolution generates the per-identity mood blob, morphing from the previous
// image toward the shape and colors of the current emotion vector.
type Evolution struct {
	size  int
	scale float64
	now   func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEvolution returns an Evolution.
func NewEvolution(opts Options) *Evolution {
	e := &Evolution{size: opts.Size, now: opts.Now, rng: opts.Rand}
	if e.size <= 0 {
		e.size = DefaultSize
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.rng == nil {
		seed := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	e.scale = float64(e.size) / referenceSize
	return e
}

// Size returns the canvas edge length.
func (e *Evolution) Size() int {
	return e.size
}

// Generate renders the next blob as PNG. history is chronological (oldest
// first); prior is the previous PNG, or nil. An unreadable prior image is
// logged and ignored.
func (e *Evolution) Generate(history []emotion.Vector, current emotion.Vector, prior []byte) ([]byte, error) {
	img := e.Render(history, current, e.decodePrior(prior))
	return encodePNG(img)
}

// Snapshot renders a standalone blob for a single vector, without history or
// prior state.
func (e *Evolution) Snapshot(current emotion.Vector) ([]byte, error) {
	return e.Generate(nil, current, nil)
}

// Render runs the full pipeline and returns the raster. prior may be nil.
func (e *Evolution) Render(history []emotion.Vector, current emotion.Vector, prior image.Image) *image.NRGBA {
	if len(history) > maxHistoryLen {
		history = history[len(history)-maxHistoryLen:]
	}
	rng := e.newRand()
	now := e.now()

	canvas := imaging.New(e.size, e.size, Background.NRGBA(255))
	var prevContour []Point
	var priorColor *RGB
	if prior != nil {
		if b := prior.Bounds(); b.Dx() != e.size || b.Dy() != e.size {
			prior = imaging.Resize(prior, e.size, e.size, imaging.Lanczos)
		}
		flat := imaging.Overlay(canvas, prior, image.Point{}, 1)
		prevContour = RecoverContour(flat, ContourPoints)
		avg := MeanColor(flat)
		priorColor = &avg
		canvas = imaging.Overlay(flat, canvas, image.Point{}, priorFade)
	}

	palette := Palette(history, current, priorColor)
	params := ComputeParams(current, history).Perturb(phase(now))

	center := Point{X: float64(e.size / 2), Y: float64(e.size / 2)}
	radius := float64(params.Radius) * e.scale
	variation := float64(params.Variation) * e.scale
	base := BaseContour(current.Primary, center, radius, ContourPoints)
	contour := Deform(base, center, radius, variation, params.Seed)
	morphed := len(prevContour) == len(contour)
	if morphed {
		contour = Interpolate(prevContour, contour, morphAlpha)
	}

	slog.Debug("rendering mood blob",
		"primary", current.Primary,
		"radius", params.Radius,
		"variation", params.Variation,
		"seed", params.Seed,
		"complexity", params.Complexity,
		"morphed", morphed,
	)

	img := Composite(canvas, contour, palette, e.scale)
	img = Glow(img, palette[0], current.Primary, Pulse(seconds(now)), e.scale)
	img = Drift(img, rng, e.scale)
	return Grain(img, rng)
}

func (e *Evolution) decodePrior(data []byte) image.Image {
	if len(data) == 0 {
		return nil
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Warn("failed to load previous blob state, starting fresh", "error", err.Error())
		return nil
	}
	return img
}

// newRand derives an independent generator so concurrent renders never share
// one.
func (e *Evolution) newRand() *rand.Rand {
	e.mu.Lock()
	defer e.mu.Unlock()
	return rand.New(rand.NewPCG(e.rng.Uint64(), e.rng.Uint64()))
}

// phase is the position of now within the one minute liveliness cycle.
func phase(now time.Time) float64 {
	return float64(now.UnixNano()%int64(phasePeriod)) / float64(phasePeriod)
}

func seconds(now time.Time) float64 {
	return float64(now.UnixNano()) / float64(time.Second)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
