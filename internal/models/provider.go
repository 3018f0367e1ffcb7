package models

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// Provider names a hosted generative model provider.
type Provider string

const (
	ProviderNone        Provider = "none"
	ProviderOpenAI      Provider = "openai"
	ProviderHuggingFace Provider = "huggingface"
	ProviderOpenRouter  Provider = "openrouter"
	ProviderGemini      Provider = "gemini"
)

var defaultModels = map[Provider]string{
	ProviderOpenAI:      "gpt-4o-mini",
	ProviderHuggingFace: "meta-llama/Llama-3.1-8B-Instruct",
	ProviderOpenRouter:  "google/gemini-2.0-flash-001",
	ProviderGemini:      "gemini-2.5-flash",
}

// ParseProvider normalizes a provider name. An empty name is ProviderNone.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case "":
		return ProviderNone, nil
	case ProviderNone, ProviderOpenAI, ProviderHuggingFace, ProviderOpenRouter, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("unknown llm provider: %q", name)
	}
}

// DefaultModel returns the model used when none is configured.
func (p Provider) DefaultModel() string {
	return defaultModels[p]
}

// NewLLM builds the model.LLM for p. It returns nil and no error for
// ProviderNone.
func NewLLM(ctx context.Context, p Provider, modelName, apiKey string) (model.LLM, error) {
	if p == ProviderNone || p == "" {
		return nil, nil
	}
	if modelName == "" {
		modelName = p.DefaultModel()
	}

	cfg := &genai.ClientConfig{APIKey: apiKey}
	switch p {
	case ProviderOpenAI:
		return NewOpenAIModel(ctx, modelName, cfg)
	case ProviderHuggingFace:
		return NewHuggingFaceModel(ctx, modelName, cfg)
	case ProviderOpenRouter:
		return NewOpenRouterModel(ctx, modelName, cfg)
	case ProviderGemini:
		return NewGeminiModel(ctx, modelName, apiKey)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", p)
	}
}
