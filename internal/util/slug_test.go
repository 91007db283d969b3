package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Basic normalization
		{"lowercase", "ACTION", "action"},
		{"spaces to dashes", "first studio", "first-studio"},
		{"underscores to dashes", "first_studio", "first-studio"},
		{"already normalized", "first-studio", "first-studio"},

		// Whitespace handling
		{"trim whitespace", "  action  ", "action"},
		{"multiple spaces", "first   studio", "first-studio"},
		{"tabs and spaces", "first\t studio", "first-studio"},

		// Special characters
		{"emoji removal", "🎬 Action!", "action"},
		{"slash becomes dash", "action/adventure", "action-adventure"},
		{"apostrophe removal", "director's cut", "directors-cut"},

		// Dash handling
		{"multiple dashes", "first--studio", "first-studio"},
		{"leading dashes", "--action", "action"},
		{"trailing dashes", "action--", "action"},

		// Edge cases
		{"empty string", "", ""},
		{"only spaces", "   ", ""},
		{"only special chars", "!@#$%", ""},
		{"numbers allowed", "top10", "top10"},
		{"mixed case with numbers", "Top 10 Scenes", "top-10-scenes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
