package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"already clean", "Lakeside Camp", "Lakeside Camp"},
		{"leading and trailing", "  Lakeside Camp  ", "Lakeside Camp"},
		{"interior runs", "Lakeside \t  Camp", "Lakeside Camp"},
		{"mixed whitespace kinds", "Lakeside\n\tCamp\r Site", "Lakeside Camp Site"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  CamperJoe ", "camperjoe"},
		{"ALLCAPS", "allcaps"},
		{"mixed Case Name", "mixed case name"},
	}

	for _, tt := range tests {
		if got := NormalizeUsername(tt.input); got != tt.expected {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
