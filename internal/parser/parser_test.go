package parser

import (
	"strings"
	"testing"
)

func TestParse_HeaderAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n---\n# Hi\nBody text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Meta["title"] != "Hello" {
		t.Errorf("title = %v, want Hello", r.Meta["title"])
	}
	if r.Body != "# Hi\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoHeader(t *testing.T) {
	r, err := Parse([]byte("# Just a heading\nSome text.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Meta != nil {
		t.Errorf("expected nil meta, got %v", r.Meta)
	}
	if !strings.HasPrefix(r.Body, "# Just a heading") {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_UnterminatedHeaderIsAllBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\nno closing fence\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Meta != nil {
		t.Errorf("expected nil meta, got %v", r.Meta)
	}
}

func TestParse_MalformedYAMLIsError(t *testing.T) {
	input := []byte("---\n: bad: yaml: {{{\n---\nBody\n")
	if _, err := Parse(input); err == nil {
		t.Fatal("expected error for malformed header")
	}
}

func TestMarshal_OrderAndSkip(t *testing.T) {
	meta := map[string]any{"title": "Hello", "slug": "hello", "extra": 1}
	data, err := Marshal([]string{"slug", "title", "missing"}, meta, "Body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "---\nslug: hello\ntitle: Hello\n---\n") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "extra") {
		t.Errorf("keys outside the order list must not be emitted: %q", out)
	}
	if !strings.HasSuffix(out, "\nBody\n") {
		t.Errorf("body not appended with trailing newline: %q", out)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	meta := map[string]any{
		"title": "Hello",
		"tags":  []any{"go", "sync"},
	}
	data, err := Marshal([]string{"title", "tags"}, meta, "# Hi\n")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	r, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Meta["title"] != "Hello" {
		t.Errorf("title = %v", r.Meta["title"])
	}
	tags, ok := r.Meta["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "go" {
		t.Errorf("tags = %v", r.Meta["tags"])
	}
	if strings.TrimSpace(r.Body) != "# Hi" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestMarshal_EmptyMeta(t *testing.T) {
	data, err := Marshal(nil, map[string]any{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "---\n---\n" {
		t.Errorf("output = %q", data)
	}
}
