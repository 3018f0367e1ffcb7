package emotion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/echoverse/internal/utils"
)

// DefaultRemoteTimeout bounds a single remote generation call.
const DefaultRemoteTimeout = 60 * time.Second

// RemoteStrategy asks a generative model for the full emotion breakdown as JSON.
type RemoteStrategy struct {
	model   model.LLM
	timeout time.Duration
}

// NewRemoteStrategy returns a RemoteStrategy. A non-positive timeout uses
// DefaultRemoteTimeout.
func NewRemoteStrategy(m model.LLM, timeout time.Duration) *RemoteStrategy {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &RemoteStrategy{model: m, timeout: timeout}
}

func (s *RemoteStrategy) Source() Source { return SourceRemote }

// Analyze returns ok=false on any transport, parse or validation failure.
func (s *RemoteStrategy) Analyze(ctx context.Context, text string) (Vector, bool) {
	if s == nil || s.model == nil {
		return Vector{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generate(ctx, text)
	if err != nil {
		slog.Warn("remote emotion analysis failed, falling back", "model", s.model.Name(), "error", err.Error())
		return Vector{}, false
	}
	v, err := ParseRemoteResponse(raw)
	if err != nil {
		slog.Warn("discarding remote emotion response", "model", s.model.Name(), "error", err.Error())
		return Vector{}, false
	}
	return v, true
}

func (s *RemoteStrategy) generate(ctx context.Context, text string) (string, error) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText(BuildAnalysisPrompt(text), genai.RoleUser),
		},
		Config: &genai.GenerateContentConfig{
			Temperature:        genai.Ptr[float32](0),
			MaxOutputTokens:    512,
			ResponseMIMEType:   "application/json",
			ResponseJsonSchema: ResponseSchema(),
		},
	}

	var sb strings.Builder
	for resp, err := range s.model.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", err
		}
		if resp == nil || resp.Partial {
			continue
		}
		sb.WriteString(utils.ExtractContentText(resp.Content))
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("empty response")
	}
	return out, nil
}

// ParseRemoteResponse parses a model reply permissively and requires all
// thirteen keys of the flat vector.
func ParseRemoteResponse(raw string) (Vector, error) {
	obj, err := utils.ParseJSONObject(raw)
	if err != nil {
		return Vector{}, err
	}
	if err := utils.RequireKeys(obj, RequiredKeys); err != nil {
		return Vector{}, err
	}
	return FromMap(obj).Clamped(), nil
}

// BuildAnalysisPrompt returns the instruction sent to the generative model.
func BuildAnalysisPrompt(text string) string {
	return fmt.Sprintf(`Analyze the emotional content of the following journal entry.
Return ONLY a valid JSON object with no additional text, markdown, or explanation.

Analyze these emotions: %s

For each emotion, provide a score from 0.0 to 1.0 (as decimal, NOT percentage) indicating how strongly that emotion is present.
Also determine:
- primary_emotion: The strongest emotion
- primary_emotion_score: The confidence score for the primary emotion (0.0 to 1.0)
- sentiment_polarity: Overall sentiment from -1.0 (very negative) to 1.0 (very positive)

Journal entry:
%s

Return format:
%s`, emotionList(), text, promptTemplate())
}

func emotionList() string {
	names := make([]string, 0, NumEmotions)
	for _, e := range Emotions {
		names = append(names, string(e))
	}
	return strings.Join(names, ", ")
}

func promptTemplate() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, e := range Emotions {
		fmt.Fprintf(&sb, "    %q: 0.0,\n", e)
	}
	sb.WriteString("    \"primary_emotion\": \"emotion_name\",\n")
	sb.WriteString("    \"primary_emotion_score\": 0.0,\n")
	sb.WriteString("    \"sentiment_polarity\": 0.0\n")
	sb.WriteString("}")
	return sb.String()
}

// ResponseSchema describes the flat thirteen-key reply.
func ResponseSchema() *jsonschema.Schema {
	unit := func(lo, hi float64) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "number", Minimum: &lo, Maximum: &hi}
	}
	names := make([]any, 0, NumEmotions)
	props := make(map[string]*jsonschema.Schema, NumEmotions+3)
	for _, e := range Emotions {
		props[string(e)] = unit(0, 1)
		names = append(names, string(e))
	}
	props["primary_emotion"] = &jsonschema.Schema{Type: "string", Enum: names}
	props["primary_emotion_score"] = unit(0, 1)
	props["sentiment_polarity"] = unit(-1, 1)

	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   append([]string(nil), RequiredKeys...),
	}
}
