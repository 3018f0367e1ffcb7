package emotion

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Source names the analysis tier that produced a result.
type Source string

const (
	SourceRemote     Source = "remote"
	SourceClassifier Source = "classifier"
	SourceLexicon    Source = "lexicon"
	SourceDefault    Source = "default"
)

// Strategy is one tier of the analysis fallback chain. A strategy that cannot
// produce a result returns ok=false and the engine moves on.
type Strategy interface {
	Source() Source
	Analyze(ctx context.Context, text string) (v Vector, ok bool)
}

// LexiconStrategy scores text with the lexicon alone.
type LexiconStrategy struct {
	lexicon *Lexicon
}

// NewLexiconStrategy returns a lexicon-only strategy.
func NewLexiconStrategy(lex *Lexicon) *LexiconStrategy {
	return &LexiconStrategy{lexicon: lex}
}

func (s *LexiconStrategy) Source() Source { return SourceLexicon }

// Analyze never fails.
func (s *LexiconStrategy) Analyze(_ context.Context, text string) (Vector, bool) {
	scores := s.lexicon.AnalyzeWithContext(text)
	return NewVector(scores, SentimentFromScores(scores)), true
}

// LabelScore is a single classifier label probability.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier is a pretrained text classifier for emotion and sentiment labels.
type Classifier interface {
	ClassifyEmotion(ctx context.Context, text string) ([]LabelScore, error)
	ClassifySentiment(ctx context.Context, text string) ([]LabelScore, error)
}

// MaxClassifierInput is the number of characters sent to the classifier.
const MaxClassifierInput = 512

var classifierLabels = map[string]Emotion{
	"joy":       Joy,
	"happiness": Joy,
	"sadness":   Sadness,
	"sad":       Sadness,
	"anger":     Anger,
	"angry":     Anger,
	"fear":      Fear,
	"scared":    Fear,
	"surprise":  Surprise,
	"disgust":   Disgust,
	"neutral":   Neutral,
	"love":      Love,
}

// ClassifierStrategy maps classifier labels onto the emotion set and derives
// anxiety and excitement from them.
type ClassifierStrategy struct {
	classifier Classifier
}

// NewClassifierStrategy returns a strategy backed by c.
func NewClassifierStrategy(c Classifier) *ClassifierStrategy {
	return &ClassifierStrategy{classifier: c}
}

func (s *ClassifierStrategy) Source() Source { return SourceClassifier }

// Analyze fails when the emotion classification fails. A sentiment failure
// only zeroes the polarity.
func (s *ClassifierStrategy) Analyze(ctx context.Context, text string) (Vector, bool) {
	if s == nil || s.classifier == nil {
		return Vector{}, false
	}
	input := truncateRunes(text, MaxClassifierInput)

	labels, err := s.classifier.ClassifyEmotion(ctx, input)
	if err != nil {
		slog.Warn("emotion classifier failed, falling back", "error", err.Error())
		return Vector{}, false
	}
	scores := ScoresFromLabels(labels)

	polarity := 0.0
	sentiment, err := s.classifier.ClassifySentiment(ctx, input)
	if err != nil {
		slog.Warn("sentiment classifier failed", "error", err.Error())
	} else {
		polarity = PolarityFromLabels(sentiment)
	}
	return NewVector(scores, polarity), true
}

// ScoresFromLabels normalizes classifier output over the directly supported
// labels and derives the composite emotions.
func ScoresFromLabels(labels []LabelScore) Scores {
	var scores Scores
	total := 0.0
	for _, item := range labels {
		label := strings.ToLower(strings.TrimSpace(item.Label))
		e, ok := classifierLabels[label]
		if !ok || item.Score <= 0 {
			continue
		}
		scores.Add(e, item.Score)
		total += item.Score
	}
	if total > 0 {
		for i := range scores {
			scores[i] /= total
		}
	}
	scores.Set(Anxiety, min(scores.Get(Fear)*0.7+scores.Get(Sadness)*0.3, 1.0))
	scores.Set(Excitement, min(scores.Get(Joy)*0.5+scores.Get(Surprise)*0.5, 1.0))
	return scores
}

// PolarityFromLabels turns the top sentiment label into a signed polarity.
func PolarityFromLabels(labels []LabelScore) float64 {
	if len(labels) == 0 {
		return 0
	}
	top := labels[0]
	for _, l := range labels[1:] {
		if l.Score > top.Score {
			top = l
		}
	}
	label := strings.ToLower(top.Label)
	switch {
	case strings.Contains(label, "neg"):
		return -clamp(top.Score, 0, 1)
	case strings.Contains(label, "pos"):
		return clamp(top.Score, 0, 1)
	default:
		return 0
	}
}

func truncateRunes(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}
