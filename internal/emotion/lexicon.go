package emotion

import (
	_ "embed"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Tier is a coarse intensity bucket for lexicon words.
type Tier string

const (
	TierHigh       Tier = "high"
	TierMediumHigh Tier = "medium_high"
	TierMedium     Tier = "medium"
	TierLow        Tier = "low"
)

// Tiers lists the tiers from strongest to weakest.
var Tiers = []Tier{TierHigh, TierMediumHigh, TierMedium, TierLow}

// Weight returns the base score for a tier.
func (t Tier) Weight() float64 {
	switch t {
	case TierHigh:
		return 1.0
	case TierMediumHigh:
		return 0.8
	case TierMedium:
		return 0.6
	case TierLow:
		return 0.4
	default:
		return 0.5
	}
}

const (
	contextWindow  = 3
	negationFactor = 0.3
)

//go:embed lexicon.yaml
var builtinLexicon []byte

// lexiconFile is the on-disk YAML layout.
type lexiconFile struct {
	Emotions     map[string]map[string][]string `yaml:"emotions"`
	Intensifiers map[string]float64             `yaml:"intensifiers"`
	Negations    []string                       `yaml:"negations"`
}

// Entry is one (emotion, tier) word list.
type Entry struct {
	Emotion Emotion
	Tier    Tier
	// Forms are tokenized surface forms; multi-word phrases have several tokens.
	Forms [][]string
}

type formRef struct {
	entry  int
	tokens []string
}

type modifier struct {
	tokens []string
	factor float64
}

// Lexicon is an immutable emotion word table with its context modifiers.
type Lexicon struct {
	entries      []Entry
	byLastToken  map[string][]formRef
	intensifiers []modifier
	negations    map[string]struct{}
}

var defaultLexicon = sync.OnceValues(func() (*Lexicon, error) {
	return ParseLexicon(builtinLexicon)
})

// DefaultLexicon returns the embedded lexicon, parsed once per process.
func DefaultLexicon() *Lexicon {
	lex, err := defaultLexicon()
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon is invalid: %v", err))
	}
	return lex
}

// LoadLexicon reads a lexicon YAML file. An empty path returns the default.
func LoadLexicon(path string) (*Lexicon, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLexicon(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return ParseLexicon(data)
}

// ParseLexicon builds a Lexicon from YAML.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	for name := range file.Emotions {
		if _, ok := ParseEmotion(name); !ok {
			return nil, fmt.Errorf("unknown emotion in lexicon: %s", name)
		}
	}

	lex := &Lexicon{
		byLastToken: make(map[string][]formRef),
		negations:   make(map[string]struct{}, len(file.Negations)),
	}
	for _, e := range Emotions {
		tiers := file.Emotions[string(e)]
		for tierName := range tiers {
			switch Tier(tierName) {
			case TierHigh, TierMediumHigh, TierMedium, TierLow:
			default:
				return nil, fmt.Errorf("unknown tier %q for %s", tierName, e)
			}
		}
		for _, tier := range Tiers {
			words := tiers[string(tier)]
			if len(words) == 0 {
				continue
			}
			entry := Entry{Emotion: e, Tier: tier}
			seen := make(map[string]bool, len(words))
			for _, w := range words {
				tokens := Tokenize(w)
				key := strings.Join(tokens, " ")
				if len(tokens) == 0 || seen[key] {
					continue
				}
				seen[key] = true
				entry.Forms = append(entry.Forms, tokens)
			}
			idx := len(lex.entries)
			lex.entries = append(lex.entries, entry)
			for _, form := range entry.Forms {
				last := form[len(form)-1]
				lex.byLastToken[last] = append(lex.byLastToken[last], formRef{entry: idx, tokens: form})
			}
		}
	}
	for _, word := range slices.Sorted(maps.Keys(file.Intensifiers)) {
		factor := file.Intensifiers[word]
		tokens := Tokenize(word)
		if len(tokens) == 0 {
			continue
		}
		if factor <= 0 {
			return nil, fmt.Errorf("intensifier %q must be positive", word)
		}
		lex.intensifiers = append(lex.intensifiers, modifier{tokens: tokens, factor: factor})
	}
	for _, n := range file.Negations {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			lex.negations[n] = struct{}{}
		}
	}
	return lex, nil
}

// Entries returns the word lists in canonical emotion and tier order.
func (l *Lexicon) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Tokenize lowercases text and splits it into word tokens. Apostrophes and
// hyphens inside a word are kept, so "don't" and "heart-broken" stay whole.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	text = strings.NewReplacer("’", "'", "‘", "'").Replace(text)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-')
	})
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
