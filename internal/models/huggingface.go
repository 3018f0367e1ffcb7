package models

import (
	"context"
	"fmt"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// HuggingFaceRouterURL is the OpenAI-compatible endpoint of the Hugging Face
// inference router.
const HuggingFaceRouterURL = "https://router.huggingface.co/v1"

// NewHuggingFaceModel returns a model.LLM served through the Hugging Face
// inference router, e.g. "meta-llama/Llama-3.1-8B-Instruct".
func NewHuggingFaceModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	m, err := newOpenAICompatibleModel(modelName, cfg, HuggingFaceRouterURL, "huggingface")
	if err != nil {
		return nil, fmt.Errorf("failed to create hugging face model: %w", err)
	}
	return m, nil
}
