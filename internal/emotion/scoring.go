package emotion

import (
	"slices"
	"strings"
)

type lexiconHit struct {
	entry int
	start int
}

// Score returns the raw per-emotion accumulation for text, before
// normalization. Every matched word list contributes its tier weight, scaled
// by the intensifiers in the preceding window, or by the negation factor when
// a negation marker is present. Each contribution is capped at 1.
func (l *Lexicon) Score(text string) Scores {
	var scores Scores
	tokens := Tokenize(text)
	hits := make([]lexiconHit, 0, 8)

	for i, tok := range tokens {
		refs := l.byLastToken[tok]
		if len(refs) == 0 {
			continue
		}

		hits = hits[:0]
		for _, ref := range refs {
			start := i - len(ref.tokens) + 1
			if start < 0 || !slices.Equal(tokens[start:i+1], ref.tokens) {
				continue
			}
			found := false
			for k := range hits {
				if hits[k].entry == ref.entry {
					found = true
					// the longest form decides where the context window ends
					if start < hits[k].start {
						hits[k].start = start
					}
					break
				}
			}
			if !found {
				hits = append(hits, lexiconHit{entry: ref.entry, start: start})
			}
		}
		slices.SortFunc(hits, func(a, b lexiconHit) int { return a.entry - b.entry })

		for _, hit := range hits {
			entry := l.entries[hit.entry]
			window := tokens[max(0, hit.start-contextWindow):hit.start]

			score := entry.Tier.Weight()
			if l.negated(window) {
				score *= negationFactor
			} else {
				score *= l.intensity(window)
			}
			scores.Add(entry.Emotion, min(score, 1.0))
		}
	}
	return scores
}

// AnalyzeWithContext scores text and L1-normalizes the result. When nothing
// matched, the result is neutral=1.
func (l *Lexicon) AnalyzeWithContext(text string) Scores {
	return l.Score(text).Normalized()
}

// intensity multiplies every intensifier found in the window.
func (l *Lexicon) intensity(window []string) float64 {
	factor := 1.0
	for _, m := range l.intensifiers {
		n := len(m.tokens)
		for j := 0; j+n <= len(window); j++ {
			if slices.Equal(window[j:j+n], m.tokens) {
				factor *= m.factor
			}
		}
	}
	return factor
}

func (l *Lexicon) negated(window []string) bool {
	for _, tok := range window {
		if _, ok := l.negations[tok]; ok {
			return true
		}
		if strings.HasSuffix(tok, "n't") {
			return true
		}
	}
	return false
}

var (
	positiveGroup = []Emotion{Joy, Love, Excitement}
	negativeGroup = []Emotion{Sadness, Anger, Fear, Anxiety, Disgust}
)

// SentimentFromScores estimates polarity from the positive and negative
// emotion groups: (pos-neg)/(pos+neg), or 0 when both are empty.
func SentimentFromScores(s Scores) float64 {
	pos, neg := 0.0, 0.0
	for _, e := range positiveGroup {
		pos += s.Get(e)
	}
	for _, e := range negativeGroup {
		neg += s.Get(e)
	}
	if pos+neg <= 0 {
		return 0
	}
	return (pos - neg) / (pos + neg)
}
