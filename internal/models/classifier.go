package models

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/easeaico/echoverse/internal/emotion"
)

// ErrClassifierUnavailable is returned when the classifier is not configured
// or the hosted model cannot serve requests yet.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

const (
	// DefaultInferenceURL serves hosted text-classification pipelines.
	DefaultInferenceURL      = "https://router.huggingface.co/hf-inference"
	DefaultEmotionModel      = "j-hartmann/emotion-english-distilroberta-base"
	DefaultSentimentModel    = "distilbert-base-uncased-finetuned-sst-2-english"
	DefaultClassifierTimeout = 30 * time.Second
)

// ClassifierConfig configures an HFClassifier.
type ClassifierConfig struct {
	BaseURL        string
	APIKey         string
	EmotionModel   string
	SentimentModel string
	Timeout        time.Duration
	// RequestsPerSecond throttles outgoing calls; zero disables throttling.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// HFClassifier calls hosted text-classification models over the inference API.
type HFClassifier struct {
	baseURL        string
	apiKey         string
	emotionModel   string
	sentimentModel string
	client         *http.Client
	limiter        *rate.Limiter
}

// NewHFClassifier returns a classifier. It fails with ErrClassifierUnavailable
// when no API key is configured.
func NewHFClassifier(cfg ClassifierConfig) (*HFClassifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing API key: %w", ErrClassifierUnavailable)
	}
	c := &HFClassifier{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		emotionModel:   cfg.EmotionModel,
		sentimentModel: cfg.SentimentModel,
		client:         cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultInferenceURL
	}
	if c.emotionModel == "" {
		c.emotionModel = DefaultEmotionModel
	}
	if c.sentimentModel == "" {
		c.sentimentModel = DefaultSentimentModel
	}
	if c.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultClassifierTimeout
		}
		c.client = &http.Client{Timeout: timeout}
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// ClassifyEmotion returns per-label emotion probabilities.
func (c *HFClassifier) ClassifyEmotion(ctx context.Context, text string) ([]emotion.LabelScore, error) {
	return c.classify(ctx, c.emotionModel, text)
}

// ClassifySentiment returns POSITIVE/NEGATIVE label probabilities.
func (c *HFClassifier) ClassifySentiment(ctx context.Context, text string) ([]emotion.LabelScore, error) {
	return c.classify(ctx, c.sentimentModel, text)
}

type classifyRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

func (c *HFClassifier) classify(ctx context.Context, modelName, text string) ([]emotion.LabelScore, error) {
	if c == nil {
		return nil, ErrClassifierUnavailable
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("classifier rate limit: %w", err)
		}
	}

	data, err := json.Marshal(classifyRequest{
		Inputs:     text,
		Parameters: map[string]any{"top_k": emotion.NumEmotions},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode classifier request: %w", err)
	}

	url := c.baseURL + "/models/" + modelName
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call classifier %s: %w", modelName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("classifier %s loading: %w", modelName, ErrClassifierUnavailable)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("classifier %s http %d: %s", modelName, resp.StatusCode, truncate(body, 200))
	}
	return parseLabelScores(body)
}

// parseLabelScores accepts both the batched [[...]] and the flat [...] shape.
func parseLabelScores(body []byte) ([]emotion.LabelScore, error) {
	var nested [][]emotion.LabelScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, fmt.Errorf("empty classifier response")
		}
		return nested[0], nil
	}

	var flat []emotion.LabelScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("empty classifier response")
	}
	return flat, nil
}

func truncate(body []byte, n int) string {
	s := strings.TrimSpace(string(body))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
