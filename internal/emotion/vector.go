// Package emotion turns free-form journal text into a scored emotion vector.
package emotion

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Emotion is one of the ten canonical emotion names.
type Emotion string

const (
	Joy        Emotion = "joy"
	Sadness    Emotion = "sadness"
	Anger      Emotion = "anger"
	Fear       Emotion = "fear"
	Surprise   Emotion = "surprise"
	Disgust    Emotion = "disgust"
	Neutral    Emotion = "neutral"
	Love       Emotion = "love"
	Anxiety    Emotion = "anxiety"
	Excitement Emotion = "excitement"
)

// NumEmotions is the size of the closed emotion set.
const NumEmotions = 10

// Emotions lists the emotions in canonical order. Ties are broken by this order.
var Emotions = [NumEmotions]Emotion{
	Joy, Sadness, Anger, Fear, Surprise, Disgust, Neutral, Love, Anxiety, Excitement,
}

var emotionIndex = func() map[Emotion]int {
	m := make(map[Emotion]int, NumEmotions)
	for i, e := range Emotions {
		m[e] = i
	}
	return m
}()

// ParseEmotion returns the canonical emotion for name, ignoring case and spaces.
func ParseEmotion(name string) (Emotion, bool) {
	e := Emotion(strings.ToLower(strings.TrimSpace(name)))
	_, ok := emotionIndex[e]
	return e, ok
}

// Index returns the position of e in Emotions, or -1.
func (e Emotion) Index() int {
	if i, ok := emotionIndex[e]; ok {
		return i
	}
	return -1
}

// Scores holds one value per emotion, indexed in canonical order.
type Scores [NumEmotions]float64

// Get returns the score for e, or 0 for an unknown emotion.
func (s Scores) Get(e Emotion) float64 {
	if i := e.Index(); i >= 0 {
		return s[i]
	}
	return 0
}

// Set assigns the score for e. Unknown emotions are ignored.
func (s *Scores) Set(e Emotion, v float64) {
	if i := e.Index(); i >= 0 {
		s[i] = v
	}
}

// Add increments the score for e.
func (s *Scores) Add(e Emotion, v float64) {
	if i := e.Index(); i >= 0 {
		s[i] += v
	}
}

// Sum returns the L1 total.
func (s Scores) Sum() float64 {
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total
}

// Argmax returns the emotion with the largest score; the first in canonical
// order wins ties.
func (s Scores) Argmax() (Emotion, float64) {
	best := 0
	for i := 1; i < NumEmotions; i++ {
		if s[i] > s[best] {
			best = i
		}
	}
	return Emotions[best], s[best]
}

// Normalized returns s divided by its total. A zero vector becomes neutral=1.
func (s Scores) Normalized() Scores {
	total := s.Sum()
	if total <= 0 {
		var out Scores
		out.Set(Neutral, 1)
		return out
	}
	for i := range s {
		s[i] /= total
	}
	return s
}

// Vector is a scored emotion breakdown plus its derived fields.
type Vector struct {
	Scores       Scores
	Primary      Emotion
	PrimaryScore float64
	// Sentiment is computed independently of Scores, in [-1,1].
	Sentiment float64
}

// Default returns the neutral vector used for empty input.
func Default() Vector {
	var s Scores
	s.Set(Neutral, 1)
	return Vector{Scores: s, Primary: Neutral, PrimaryScore: 1}
}

// NewVector builds a vector from scores and recomputes the primary emotion.
func NewVector(scores Scores, sentiment float64) Vector {
	v := Vector{Scores: scores, Sentiment: sentiment}
	v.Refresh()
	return v
}

// Refresh recomputes Primary and PrimaryScore from Scores.
func (v *Vector) Refresh() {
	v.Primary, v.PrimaryScore = v.Scores.Argmax()
}

// Get returns the score for e.
func (v Vector) Get(e Emotion) float64 {
	return v.Scores.Get(e)
}

// Clamped returns a copy with every score in [0,1] and sentiment in [-1,1].
func (v Vector) Clamped() Vector {
	for i, s := range v.Scores {
		v.Scores[i] = clamp(s, 0, 1)
	}
	v.Sentiment = clamp(v.Sentiment, -1, 1)
	v.PrimaryScore = clamp(v.PrimaryScore, 0, 1)
	return v
}

// Percent renders the score for e as a whole percentage.
func (v Vector) Percent(e Emotion) int {
	return int(v.Get(e) * 100)
}

// SentimentPosition maps a polarity in [-1,1] onto a 0..100 gauge position.
func SentimentPosition(polarity float64) int {
	if math.IsNaN(polarity) {
		return 50
	}
	return int((clamp(polarity, -1, 1) + 1) / 2 * 100)
}

// Map returns the flat 13-key representation.
func (v Vector) Map() map[string]any {
	m := make(map[string]any, NumEmotions+3)
	for i, e := range Emotions {
		m[string(e)] = v.Scores[i]
	}
	m["primary_emotion"] = string(v.Primary)
	m["primary_emotion_score"] = v.PrimaryScore
	m["sentiment_polarity"] = v.Sentiment
	return m
}

// RequiredKeys are the keys of the flat wire representation.
var RequiredKeys = func() []string {
	keys := make([]string, 0, NumEmotions+3)
	for _, e := range Emotions {
		keys = append(keys, string(e))
	}
	return append(keys, "primary_emotion", "primary_emotion_score", "sentiment_polarity")
}()

// MarshalJSON writes the flat representation with keys in canonical order.
func (v Vector) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range Emotions {
		fmt.Fprintf(&sb, "%q:%s,", e, formatFloat(v.Scores[i]))
	}
	fmt.Fprintf(&sb, "%q:%q,", "primary_emotion", v.Primary)
	fmt.Fprintf(&sb, "%q:%s,", "primary_emotion_score", formatFloat(v.PrimaryScore))
	fmt.Fprintf(&sb, "%q:%s", "sentiment_polarity", formatFloat(v.Sentiment))
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}

// UnmarshalJSON reads the flat representation. Numeric strings are accepted.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromMap(raw)
	return nil
}

// FromMap coerces a loosely typed mapping into a Vector. Missing or
// non-numeric values read as zero; an unknown primary emotion is recomputed.
func FromMap(m map[string]any) Vector {
	var v Vector
	for i, e := range Emotions {
		v.Scores[i] = ToFloat(m[string(e)])
	}
	v.Sentiment = ToFloat(m["sentiment_polarity"])
	v.PrimaryScore = ToFloat(m["primary_emotion_score"])
	name, _ := m["primary_emotion"].(string)
	if e, ok := ParseEmotion(name); ok {
		v.Primary = e
	} else {
		v.Refresh()
	}
	return v
}

var numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ToFloat converts numbers and numeric strings to float64. Anything else is 0.
func ToFloat(value any) float64 {
	switch n := value.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case string:
		s := strings.TrimSpace(n)
		if !numericPattern.MatchString(s) {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(finite(f), 'f', -1, 64)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
