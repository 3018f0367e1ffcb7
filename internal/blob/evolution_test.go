package blob

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/easeaico/echoverse/internal/emotion"
)

const testSize = 200

func newTestEvolution() *Evolution {
	now := time.Date(2024, 3, 1, 12, 0, 15, 0, time.UTC)
	return NewEvolution(Options{
		Size: testSize,
		Now:  func() time.Time { return now },
		Rand: rand.New(rand.NewPCG(1, 2)),
	})
}

func decode(t *testing.T, data []byte) *image.NRGBA {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return imaging.Clone(img)
}

func near(c color.NRGBA, want RGB, tolerance int) bool {
	d := func(a, b uint8) bool { return math.Abs(float64(a)-float64(b)) <= float64(tolerance) }
	return d(c.R, want.R) && d(c.G, want.G) && d(c.B, want.B)
}

func TestGenerateProducesCanvas(t *testing.T) {
	joy := vectorOf(0.7, map[emotion.Emotion]float64{emotion.Joy: 0.9, emotion.Love: 0.1})
	data, err := newTestEvolution().Generate(nil, joy, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	img := decode(t, data)
	if b := img.Bounds(); b.Dx() != testSize || b.Dy() != testSize {
		t.Fatalf("unexpected bounds %v", b)
	}

	if corner := img.NRGBAAt(0, 0); !near(corner, Background, 10) {
		t.Fatalf("corner should stay close to the background, got %+v", corner)
	}
	if center := img.NRGBAAt(testSize/2, testSize/2); center.R < 100 || center.A != 255 {
		t.Fatalf("center should carry the joy color, got %+v", center)
	}
}

func TestGenerateIsReproducibleWithInjectedClockAndEntropy(t *testing.T) {
	fear := vectorOf(-0.4, map[emotion.Emotion]float64{emotion.Fear: 0.7, emotion.Anxiety: 0.3})
	history := []emotion.Vector{emotion.Default(), fear}

	a, err := newTestEvolution().Generate(history, fear, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	b, err := newTestEvolution().Generate(history, fear, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("identical inputs produced different images")
	}
}

func TestGenerateMorphsFromPrior(t *testing.T) {
	evo := newTestEvolution()
	joy := vectorOf(0.7, map[emotion.Emotion]float64{emotion.Joy: 1})
	sad := vectorOf(-0.7, map[emotion.Emotion]float64{emotion.Sadness: 1})

	first, err := evo.Generate(nil, joy, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	second, err := evo.Generate([]emotion.Vector{joy}, sad, first)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatal("expected the blob to change")
	}
	if b := decode(t, second).Bounds(); b.Dx() != testSize {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestGenerateIgnoresCorruptPrior(t *testing.T) {
	data, err := newTestEvolution().Generate(nil, emotion.Default(), []byte("definitely not a png"))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	decode(t, data)
}

func TestGenerateResizesPrior(t *testing.T) {
	prior, err := encodePNG(imaging.New(64, 32, color.NRGBA{R: 200, G: 200, B: 200, A: 255}))
	if err != nil {
		t.Fatalf("encode prior: %v", err)
	}
	data, err := newTestEvolution().Generate(nil, emotion.Default(), prior)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if b := decode(t, data).Bounds(); b.Dx() != testSize || b.Dy() != testSize {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestSnapshot(t *testing.T) {
	data, err := newTestEvolution().Snapshot(emotion.Default())
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	decode(t, data)
}

func TestNewEvolutionDefaults(t *testing.T) {
	evo := NewEvolution(Options{})
	if evo.Size() != DefaultSize || evo.scale != 1 {
		t.Fatalf("unexpected defaults size=%d scale=%f", evo.Size(), evo.scale)
	}
}

func TestPhase(t *testing.T) {
	if got := phase(time.Unix(120, 0)); got != 0 {
		t.Fatalf("expected phase 0 at a minute boundary, got %f", got)
	}
	if got := phase(time.Unix(75, 0)); got != 0.25 {
		t.Fatalf("expected phase 0.25, got %f", got)
	}
}

func TestRecoverContour(t *testing.T) {
	img := imaging.New(100, 100, color.NRGBA{A: 255})
	disk := BaseContour(emotion.Neutral, Point{X: 50, Y: 50}, 20, 90)
	fillPolygon(img, disk, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	points := RecoverContour(img, 60)
	if len(points) == 0 || len(points) > 60 {
		t.Fatalf("unexpected point count %d", len(points))
	}
	c := Centroid(points)
	prev := -1.0
	for i, p := range points {
		if math.Hypot(p.X-50, p.Y-50) > 22 {
			t.Fatalf("point %d at %+v lies outside the disk", i, p)
		}
		a := math.Atan2(p.Y-c.Y, p.X-c.X)
		if a < 0 {
			a += 2 * math.Pi
		}
		if a < prev-1e-9 {
			t.Fatalf("points are not ordered by angle at %d", i)
		}
		prev = a
	}
}

func TestRecoverContourUniformImage(t *testing.T) {
	img := imaging.New(10, 10, color.NRGBA{R: 9, G: 9, B: 9, A: 255})
	if got := RecoverContour(img, ContourPoints); got != nil {
		t.Fatalf("expected no contour for a flat image, got %d points", len(got))
	}
}

func TestPercentile(t *testing.T) {
	values := []uint8{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if got := percentile(values, 60); got != 60 {
		t.Fatalf("expected 60, got %f", got)
	}
	if got := percentile([]uint8{0, 100}, 60); math.Abs(got-60) > eps {
		t.Fatalf("expected interpolated 60, got %f", got)
	}
}

func TestMeanColor(t *testing.T) {
	img := imaging.New(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 30, G: 40, B: 50, A: 255})
	if got := MeanColor(img); got != (RGB{20, 30, 40}) {
		t.Fatalf("unexpected mean %+v", got)
	}
}

func TestPulseRange(t *testing.T) {
	for s := 0.0; s < 12; s += 0.1 {
		if p := Pulse(s); p < 0.1-eps || p > 0.5+eps {
			t.Fatalf("pulse %f at %f out of range", p, s)
		}
	}
	if p := Pulse(1); math.Abs(p-0.5) > eps {
		t.Fatalf("expected peak at one second, got %f", p)
	}
	if p := Pulse(3); math.Abs(p-0.1) > eps {
		t.Fatalf("expected trough at three seconds, got %f", p)
	}
}

func TestGrainBounds(t *testing.T) {
	img := imaging.New(20, 20, color.NRGBA{R: 100, G: 2, B: 253, A: 200})
	out := Grain(img, rand.New(rand.NewPCG(3, 4)))
	for i := 0; i < len(out.Pix); i += 4 {
		r, g, b, a := int(out.Pix[i]), int(out.Pix[i+1]), int(out.Pix[i+2]), out.Pix[i+3]
		if r < 95 || r > 104 || g < 0 || g > 6 || b < 248 || b > 255 || a != 200 {
			t.Fatalf("pixel %d out of bounds: %d %d %d %d", i/4, r, g, b, a)
		}
	}
	if img.Pix[0] != 100 {
		t.Fatal("Grain modified its input")
	}
}

func TestCompositeStaysInsideHalo(t *testing.T) {
	canvas := imaging.New(testSize, testSize, Background.NRGBA(255))
	center := Point{X: testSize / 2, Y: testSize / 2}
	const radius, blurScale = 30, 0.1
	contour := BaseContour(emotion.Joy, center, radius, ContourPoints)
	out := Composite(canvas, contour, []RGB{ColorOf(emotion.Joy), ColorOf(emotion.Love), ColorOf(emotion.Joy)}, blurScale)

	// halo reach: 1.2R plus the widest blur margin
	reach := 1.2*radius + 3*40*blurScale + 2
	for y := 0; y < testSize; y++ {
		for x := 0; x < testSize; x++ {
			if math.Hypot(float64(x)-center.X, float64(y)-center.Y) <= reach+1 {
				continue
			}
			if c := out.NRGBAAt(x, y); !near(c, Background, 2) {
				t.Fatalf("pixel (%d,%d) = %+v outside the halo", x, y, c)
			}
		}
	}
	if c := out.NRGBAAt(int(center.X), int(center.Y)); near(c, Background, 40) {
		t.Fatalf("core pixel %+v should differ from the background", c)
	}
	if canvas.NRGBAAt(int(center.X), int(center.Y)) != Background.NRGBA(255) {
		t.Fatal("Composite modified the canvas")
	}
}

func TestStatic(t *testing.T) {
	joy := vectorOf(0.8, map[emotion.Emotion]float64{emotion.Joy: 1})
	img := Static(joy, rand.New(rand.NewPCG(5, 6)))
	if b := img.Bounds(); b.Dx() != staticSize || b.Dy() != staticSize {
		t.Fatalf("unexpected bounds %v", b)
	}
	if c := img.NRGBAAt(staticSize/2, staticSize/2); c.R < 200 || c.B > 60 {
		t.Fatalf("center should be yellow, got %+v", c)
	}
	if c := img.NRGBAAt(2, 2); !near(c, Background, 3) {
		t.Fatalf("corner should be background, got %+v", c)
	}
	if _, err := StaticPNG(joy, nil); err != nil {
		t.Fatalf("StaticPNG returned error: %v", err)
	}
}

func TestStaticSecondaries(t *testing.T) {
	v := vectorOf(0, map[emotion.Emotion]float64{
		emotion.Joy: 0.5, emotion.Sadness: 0.3, emotion.Love: 0.25, emotion.Fear: 0.19, emotion.Anger: 0.15,
	})
	got := staticSecondaries(v)
	if len(got) != 2 || got[0].emotion != emotion.Sadness || got[1].emotion != emotion.Love {
		t.Fatalf("unexpected secondaries %+v", got)
	}
}
