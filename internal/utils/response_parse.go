package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSONObject extracts the first JSON object from a model reply. Code
// fences are stripped, the first balanced {...} is taken, and single quotes
// are repaired to double quotes when the strict parse fails.
func ParseJSONObject(raw string) (map[string]any, error) {
	clean := stripCodeFence(raw)
	if clean == "" {
		return nil, fmt.Errorf("empty response")
	}

	candidate, ok := ExtractFirstObject(clean)
	if !ok {
		candidate = clean
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
		return obj, nil
	}
	repaired := strings.ReplaceAll(candidate, "'", `"`)
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse json object: %w", err)
	}
	return obj, nil
}

// ExtractFirstObject returns the first balanced {...} substring of text.
// Braces inside double-quoted strings of the object are ignored.
func ExtractFirstObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString, escaped := false, false
	for i, ch := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					return text[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// RequireKeys returns an error naming the first key missing from obj.
func RequireKeys(obj map[string]any, keys []string) error {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return fmt.Errorf("missing key: %s", k)
		}
	}
	return nil
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") && len(text) >= 6 {
		text = strings.TrimSpace(text[3 : len(text)-3])
	}
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "```json") {
		text = strings.TrimSpace(text[len("```json"):])
	} else if strings.HasPrefix(lower, "json\n") || strings.HasPrefix(lower, "json ") {
		text = strings.TrimSpace(text[len("json"):])
	}
	return text
}
