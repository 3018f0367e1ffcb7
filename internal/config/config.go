// Package config loads configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/easeaico/echoverse/internal/models"
)

// Config holds runtime settings.
type Config struct {
	DatabaseURL string
	LogLevel    slog.Level

	LLMProvider      models.Provider
	LLMModel         string
	OpenAIAPIKey     string
	HFAPIKey         string
	OpenRouterAPIKey string
	GoogleAPIKey     string
	PreferRemote     bool
	RemoteTimeout    time.Duration

	HFInferenceURL    string
	HFEmotionModel    string
	HFSentimentModel  string
	ClassifierTimeout time.Duration
	ClassifierRPS     float64

	LexiconPath  string
	HistoryLimit int
	BlobSize     int
}

// Load reads an optional .env file and the environment, then applies
// defaults. Missing API keys are not an error: the matching analysis tier is
// simply disabled.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err.Error())
	}

	cfg := Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		HFAPIKey:         os.Getenv("HF_API_KEY"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		HFInferenceURL:   os.Getenv("HF_INFERENCE_URL"),
		HFEmotionModel:   os.Getenv("HF_EMOTION_MODEL"),
		HFSentimentModel: os.Getenv("HF_SENTIMENT_MODEL"),
		LexiconPath:      os.Getenv("LEXICON_PATH"),
	}

	cfg.LogLevel = parseLevel(os.Getenv("LOG_LEVEL"))
	cfg.PreferRemote = getEnvBool("PREFER_REMOTE", false)
	cfg.RemoteTimeout = getEnvDuration("REMOTE_TIMEOUT", 60*time.Second)
	cfg.ClassifierTimeout = getEnvDuration("CLASSIFIER_TIMEOUT", models.DefaultClassifierTimeout)
	cfg.ClassifierRPS = getEnvFloat("CLASSIFIER_RPS", 2)
	cfg.HistoryLimit = getEnvInt("HISTORY_LIMIT", 30)
	cfg.BlobSize = getEnvInt("BLOB_SIZE", 1200)

	provider, err := models.ParseProvider(os.Getenv("LLM_PROVIDER"))
	if err != nil {
		slog.Warn("unknown LLM_PROVIDER, remote analysis disabled", "error", err.Error())
		provider = models.ProviderNone
	}
	cfg.LLMProvider = provider
	if cfg.LLMModel == "" {
		cfg.LLMModel = provider.DefaultModel()
	}

	if cfg.HFInferenceURL == "" {
		cfg.HFInferenceURL = models.DefaultInferenceURL
	}
	if cfg.HFEmotionModel == "" {
		cfg.HFEmotionModel = models.DefaultEmotionModel
	}
	if cfg.HFSentimentModel == "" {
		cfg.HFSentimentModel = models.DefaultSentimentModel
	}

	return cfg
}

// LLMAPIKey returns the key of the configured remote provider.
func (c Config) LLMAPIKey() string {
	switch c.LLMProvider {
	case models.ProviderOpenAI:
		return c.OpenAIAPIKey
	case models.ProviderHuggingFace:
		return c.HFAPIKey
	case models.ProviderOpenRouter:
		return c.OpenRouterAPIKey
	case models.ProviderGemini:
		return c.GoogleAPIKey
	default:
		return ""
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvDuration accepts Go durations ("45s") or a plain number of seconds.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if parsed, err := time.ParseDuration(val); err == nil {
		return parsed
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultVal
}
