package llm

import (
	"testing"
)

func TestStripFences_JSONFence(t *testing.T) {
	input := "```json\n{\"description\": \"orders table\"}\n```"
	want := `{"description": "orders table"}`
	if got := StripFences(input); got != want {
		t.Errorf("StripFences = %q, want %q", got, want)
	}
}

func TestStripFences_BareFence(t *testing.T) {
	input := "```\n{\"a\": 1}\n```"
	want := `{"a": 1}`
	if got := StripFences(input); got != want {
		t.Errorf("StripFences = %q, want %q", got, want)
	}
}

func TestStripFences_NoFence(t *testing.T) {
	input := "  {\"a\": 1}  "
	want := `{"a": 1}`
	if got := StripFences(input); got != want {
		t.Errorf("StripFences = %q, want %q", got, want)
	}
}

func TestStripFences_TrailingFenceOnly(t *testing.T) {
	input := "{\"a\": 1}\n```"
	want := `{"a": 1}`
	if got := StripFences(input); got != want {
		t.Errorf("StripFences = %q, want %q", got, want)
	}
}

func TestParseJSONResponse(t *testing.T) {
	type payload struct {
		Description string `json:"description"`
	}

	got, err := ParseJSONResponse[payload]("```json\n{\"description\": \"d\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Description != "d" {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestParseJSONResponse_Malformed(t *testing.T) {
	type payload struct{}
	if _, err := ParseJSONResponse[payload]("not json at all"); err == nil {
		t.Error("expected error for malformed response")
	}
}
