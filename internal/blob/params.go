package blob

import (
	"hash/fnv"
	"math"

	"github.com/easeaico/echoverse/internal/emotion"
)

const (
	baseRadius       = 200
	radiusPerScore   = 150
	defaultVariation = 60
	volatilityWindow = 5
	complexityCutoff = 0.15
	minComplexity    = 8
	maxComplexity    = 16
)

// Params are the per-generation shape parameters, in reference-canvas
// pixels (1200x1200).
type Params struct {
	Radius     int
	Variation  int
	Seed       int
	Complexity int
	Sentiment  float64
}

// ComputeParams derives shape parameters from the current vector and the
// chronologically ordered history.
func ComputeParams(current emotion.Vector, history []emotion.Vector) Params {
	return Params{
		Radius:     baseRadius + int(current.PrimaryScore*radiusPerScore),
		Variation:  variationFor(history),
		Seed:       SeedFor(current.Primary),
		Complexity: complexityFor(current),
		Sentiment:  current.Sentiment,
	}
}

// Volatility is the mean absolute sentiment change over the last five
// transitions of history. It reports false when there is no transition.
func Volatility(history []emotion.Vector) (float64, bool) {
	transitions := min(volatilityWindow, len(history)-1)
	if transitions <= 0 {
		return 0, false
	}
	total := 0.0
	for i := range transitions {
		a := history[len(history)-1-i].Sentiment
		b := history[len(history)-2-i].Sentiment
		total += math.Abs(a - b)
	}
	return total / float64(transitions), true
}

func variationFor(history []emotion.Vector) int {
	v, ok := Volatility(history)
	if !ok {
		return defaultVariation
	}
	return 40 + int(v*80)
}

// SeedFor is a stable hash of the emotion name in [0,1000).
func SeedFor(e emotion.Emotion) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(e))
	return int(h.Sum32() % 1000)
}

func complexityFor(v emotion.Vector) int {
	count := 0
	for _, s := range v.Scores {
		if s > complexityCutoff {
			count++
		}
	}
	return min(max(count+minComplexity, minComplexity), maxComplexity)
}

// Perturb shifts seed and variation by a phase in [0,1) so that repeated
// generations within a minute differ slightly.
func (p Params) Perturb(phase float64) Params {
	p.Seed += int(phase * 100)
	p.Variation = int(float64(p.Variation) * (0.9 + 0.2*math.Sin(phase*2*math.Pi)))
	return p
}
