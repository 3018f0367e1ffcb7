package models

import (
	"context"
	"fmt"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// OpenRouterURL is the OpenRouter chat completions endpoint.
const OpenRouterURL = "https://openrouter.ai/api/v1"

// NewOpenRouterModel returns a model.LLM routed through OpenRouter. The model
// name is the OpenRouter slug, e.g. "google/gemini-2.0-flash-001".
func NewOpenRouterModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	m, err := newOpenAICompatibleModel(modelName, cfg, OpenRouterURL, "openrouter")
	if err != nil {
		return nil, fmt.Errorf("failed to create openrouter model: %w", err)
	}
	return m, nil
}
