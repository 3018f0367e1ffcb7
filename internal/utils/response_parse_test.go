package utils

import "testing"

func TestParseJSONObject(t *testing.T) {
	got, err := ParseJSONObject(`{"joy":0.5,"primary_emotion":"joy"}`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["joy"] != 0.5 {
		t.Fatalf("unexpected joy: %v", got["joy"])
	}
	if got["primary_emotion"] != "joy" {
		t.Fatalf("unexpected primary: %v", got["primary_emotion"])
	}
}

func TestParseJSONObjectWithWrapper(t *testing.T) {
	got, err := ParseJSONObject("Here you go: {\"a\": {\"b\": 1}} and {\"c\": 2}")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := got["a"]; !ok {
		t.Fatalf("expected first object, got %#v", got)
	}
	if _, ok := got["c"]; ok {
		t.Fatalf("expected only the first object, got %#v", got)
	}
}

func TestParseJSONObjectCodeFence(t *testing.T) {
	got, err := ParseJSONObject("```json\n{\"sentiment_polarity\": -0.2}\n```")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["sentiment_polarity"] != -0.2 {
		t.Fatalf("unexpected sentiment: %v", got["sentiment_polarity"])
	}
}

func TestParseJSONObjectSingleQuotes(t *testing.T) {
	got, err := ParseJSONObject(`{'joy': 0.25, 'primary_emotion': 'joy'}`)
	if err != nil {
		t.Fatalf("expected quote repair, got %v", err)
	}
	if got["joy"] != 0.25 {
		t.Fatalf("unexpected joy: %v", got["joy"])
	}
}

func TestParseJSONObjectInvalid(t *testing.T) {
	if _, err := ParseJSONObject("no json here"); err == nil {
		t.Fatalf("expected error for text without an object")
	}
	if _, err := ParseJSONObject("   "); err == nil {
		t.Fatalf("expected error for empty text")
	}
}

func TestRequireKeys(t *testing.T) {
	obj := map[string]any{"a": 1, "b": 2}
	if err := RequireKeys(obj, []string{"a", "b"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := RequireKeys(obj, []string{"a", "c"}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestExtractFirstObjectSkipsBracesInStrings(t *testing.T) {
	text := `Result: {"note":"}{ odd \"quoted}\" text","joy":0.4} trailing }`
	got, ok := ExtractFirstObject(text)
	if !ok {
		t.Fatal("expected an object")
	}
	want := `{"note":"}{ odd \"quoted}\" text","joy":0.4}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	obj, err := ParseJSONObject(text)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if obj["joy"] != 0.4 || obj["note"] != `}{ odd "quoted}" text` {
		t.Fatalf("unexpected object %#v", obj)
	}
}
