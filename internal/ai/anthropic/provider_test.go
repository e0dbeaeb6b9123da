package anthropic

import (
	"testing"

	"github.com/matt-dz/tidyplan/internal/ai"
)

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		max       int
		wantCount int
		wantErr   bool
	}{
		{
			name:      "plain json",
			text:      `{"suggestions":[{"title":"Sort closet","description":"Start with clothes.","priority":"high"}]}`,
			max:       5,
			wantCount: 1,
		},
		{
			name: "fenced json",
			text: "```json\n{\"suggestions\":[{\"title\":\"Sort closet\",\"priority\":\"low\"}]}\n```",
			max:  5, wantCount: 1,
		},
		{
			name:      "truncated to max",
			text:      `{"suggestions":[{"title":"a"},{"title":"b"},{"title":"c"}]}`,
			max:       2,
			wantCount: 2,
		},
		{
			name:      "empty titles skipped",
			text:      `{"suggestions":[{"title":""},{"title":"Keep me"}]}`,
			max:       5,
			wantCount: 1,
		},
		{
			name:    "not json",
			text:    "Sure! Here are some tasks:",
			max:     5,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := apiResponse{Content: []apiContent{{Type: "text", Text: tt.text}}}
			got, err := parseSuggestions(resp, tt.max)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSuggestions() error = %v", err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("got %d suggestions, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestParseSuggestionsDefaultsPriority(t *testing.T) {
	resp := apiResponse{Content: []apiContent{{
		Type: "text",
		Text: `{"suggestions":[{"title":"Sort closet","priority":"urgent"}]}`,
	}}}
	got, err := parseSuggestions(resp, 5)
	if err != nil {
		t.Fatalf("parseSuggestions() error = %v", err)
	}
	if got[0].Priority != ai.PriorityMedium {
		t.Errorf("priority = %q, want %q", got[0].Priority, ai.PriorityMedium)
	}
}

func TestParseSuggestionsNoTextContent(t *testing.T) {
	resp := apiResponse{Content: []apiContent{{Type: "tool_use"}}}
	if _, err := parseSuggestions(resp, 5); err == nil {
		t.Fatal("expected error for response without text content")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}, nil, nil); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
