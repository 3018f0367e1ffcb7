package emotion

import "strings"

const (
	modelWeight   = 0.6
	lexiconWeight = 0.4
)

// Blend mixes a model-produced vector with lexicon scores using fixed
// weights. Sentiment is carried over from the model vector.
func Blend(model Vector, lexicon Scores) Vector {
	var blended Scores
	for i := range blended {
		blended[i] = model.Scores[i]*modelWeight + lexicon[i]*lexiconWeight
	}
	return NewVector(blended, model.Sentiment)
}

var contrastWords = []string{"but", "however", "yet", "although", "despite"}

type boostRule struct {
	phrases []string
	boosts  []emotionBoost
}

type emotionBoost struct {
	emotion Emotion
	amount  float64
}

var mixedPatterns = []boostRule{
	{ // bittersweet
		phrases: []string{"bittersweet", "sweet sorrow", "happy sad", "joy and pain"},
		boosts:  []emotionBoost{{Love, 0.2}, {Sadness, 0.2}, {Joy, 0.15}},
	},
	{ // melancholic peace
		phrases: []string{"peaceful sadness", "calm melancholy", "quiet sadness"},
		boosts:  []emotionBoost{{Sadness, 0.2}, {Neutral, 0.15}},
	},
	{ // anxious excitement
		phrases: []string{"nervous excitement", "anxiously excited", "worried but excited"},
		boosts:  []emotionBoost{{Anxiety, 0.2}, {Excitement, 0.2}},
	},
	{ // loving fear
		phrases: []string{"scared to love", "fear of losing", "terrified of love"},
		boosts:  []emotionBoost{{Love, 0.2}, {Fear, 0.15}},
	},
	{ // angry sadness
		phrases: []string{"angry and hurt", "furious and sad", "mad and disappointed"},
		boosts:  []emotionBoost{{Anger, 0.2}, {Sadness, 0.2}},
	},
}

// Boost raises the scores of mixed-emotion idioms when the text contains a
// contrast connective, then recomputes the primary emotion.
func Boost(text string, v Vector) Vector {
	tokens := Tokenize(text)
	joined := " " + strings.Join(tokens, " ") + " "

	if hasContrast(tokens) {
		for _, rule := range mixedPatterns {
			if !containsAny(joined, rule.phrases) {
				continue
			}
			for _, b := range rule.boosts {
				v.Scores.Set(b.emotion, min(1.0, v.Scores.Get(b.emotion)+b.amount))
			}
		}
	}
	v.Refresh()
	return v
}

func hasContrast(tokens []string) bool {
	for _, tok := range tokens {
		for _, w := range contrastWords {
			if tok == w {
				return true
			}
		}
	}
	return false
}

// containsAny reports whether any phrase occurs on token boundaries in the
// space-padded token string.
func containsAny(joined string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(joined, " "+p+" ") {
			return true
		}
	}
	return false
}
