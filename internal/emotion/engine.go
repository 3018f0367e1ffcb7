package emotion

import (
	"context"
	"log/slog"
	"strings"
)

// Result is an analysis outcome and the tier that produced it.
type Result struct {
	Vector Vector
	Source Source
}

// Engine runs the analysis fallback chain: each strategy is tried in order
// and the first success wins. Model-produced results are blended with the
// lexicon; every result then goes through the contextual booster.
type Engine struct {
	lexicon    *Lexicon
	strategies []Strategy
	blend      bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRemote prepends a remote generation strategy. It is skipped when s is nil.
func WithRemote(s *RemoteStrategy) Option {
	return func(e *Engine) {
		if s != nil && s.model != nil {
			e.strategies = append(e.strategies, s)
		}
	}
}

// WithClassifier adds a statistical classifier strategy.
func WithClassifier(c Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.strategies = append(e.strategies, NewClassifierStrategy(c))
		}
	}
}

// WithStrategy adds an arbitrary strategy ahead of the lexicon fallback.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) {
		if s != nil {
			e.strategies = append(e.strategies, s)
		}
	}
}

// WithoutLexiconBlend disables blending model results with the lexicon.
func WithoutLexiconBlend() Option {
	return func(e *Engine) { e.blend = false }
}

// NewEngine returns an Engine. Options are applied in order, so the remote
// strategy should come before the classifier. The lexicon strategy always
// runs last.
func NewEngine(lex *Lexicon, opts ...Option) *Engine {
	if lex == nil {
		lex = DefaultLexicon()
	}
	e := &Engine{lexicon: lex, blend: true}
	for _, opt := range opts {
		opt(e)
	}
	e.strategies = append(e.strategies, NewLexiconStrategy(lex))
	return e
}

// Lexicon returns the engine's lexicon.
func (e *Engine) Lexicon() *Lexicon {
	return e.lexicon
}

// Analyze converts text to an emotion vector. It never fails; empty input and
// an exhausted chain both produce the neutral default.
func (e *Engine) Analyze(ctx context.Context, text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Vector: Default(), Source: SourceDefault}
	}

	for _, s := range e.strategies {
		v, ok := s.Analyze(ctx, text)
		if !ok {
			continue
		}
		src := s.Source()
		// lexicon results are never blended with themselves
		if e.blend && src != SourceLexicon {
			v = Blend(v, e.lexicon.AnalyzeWithContext(text))
		}
		v = Boost(text, v)
		slog.Debug("emotion analysis complete", "source", src, "primary", v.Primary, "score", v.PrimaryScore)
		return Result{Vector: v.Clamped(), Source: src}
	}

	slog.Warn("all emotion analysis strategies failed, using neutral default")
	return Result{Vector: Default(), Source: SourceDefault}
}
