// Package models adapts hosted model providers to the adk model.LLM interface
// and talks to the hosted statistical classifiers.
package models

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// openaiModel wraps an OpenAI-compatible chat completions client.
type openaiModel struct {
	client    *openai.Client
	name      string
	userAgent string
}

// NewOpenAIModel returns a model.LLM backed by the OpenAI chat completions API.
func NewOpenAIModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	return newOpenAICompatibleModel(modelName, cfg, "", "openai")
}

func newOpenAICompatibleModel(modelName string, cfg *genai.ClientConfig, baseURL, agent string) (*openaiModel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	// an explicit base URL in the client config wins over the provider default
	if cfg.HTTPOptions.BaseURL != "" {
		baseURL = cfg.HTTPOptions.BaseURL
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	client := openai.NewClient(opts...)

	return &openaiModel{
		name:      modelName,
		client:    &client,
		userAgent: fmt.Sprintf("echoverse-%s/1.0.0 go/%s", agent, strings.TrimPrefix(runtime.Version(), "go")),
	}, nil
}

func (m *openaiModel) Name() string {
	return m.name
}

// GenerateContent issues a single chat completion. Streaming is not
// supported; stream requests receive one final response.
func (m *openaiModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		if req == nil {
			yield(nil, fmt.Errorf("request cannot be nil"))
			return
		}
		m.maybeAppendUserContent(req)
		resp, err := m.generate(ctx, req)
		yield(resp, err)
	}
}

func (m *openaiModel) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	params := buildOpenAIParams(req, m.name)

	resp, err := m.client.Chat.Completions.New(ctx, *params, option.WithHeader("User-Agent", m.userAgent))
	if err != nil {
		slog.Error("failed to call llm API", "model", m.name, "error", err.Error())
		return nil, fmt.Errorf("failed to call %s: %w", m.name, err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return &model.LLMResponse{TurnComplete: true}, nil
	}

	choice := resp.Choices[0]
	content := &genai.Content{Role: "model"}
	if choice.Message.Content != "" {
		content.Parts = append(content.Parts, genai.NewPartFromText(choice.Message.Content))
	}

	return &model.LLMResponse{
		Content:      content,
		TurnComplete: true,
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     int32(resp.Usage.PromptTokens),
			CandidatesTokenCount: int32(resp.Usage.CompletionTokens),
			TotalTokenCount:      int32(resp.Usage.TotalTokens),
		},
	}, nil
}

func (m *openaiModel) maybeAppendUserContent(req *model.LLMRequest) {
	if len(req.Contents) == 0 {
		req.Contents = append(req.Contents, genai.NewContentFromText("Handle the requests as specified in the System Instruction.", genai.RoleUser))
	}

	if last := req.Contents[len(req.Contents)-1]; last != nil && last.Role != "user" {
		req.Contents = append(req.Contents, genai.NewContentFromText("Continue processing previous requests as instructed.", genai.RoleUser))
	}
}
