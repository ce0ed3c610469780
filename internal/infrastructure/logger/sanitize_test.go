package logger

import "testing"

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "https://example.com/clip.mp4", "https://example.com/clip.mp4"},
		{"newline", "line1\nline2", `line1\nline2`},
		{"carriage return", "a\rb", `a\rb`},
		{"tab", "a\tb", `a\tb`},
		{"null byte", "a\x00b", `a\x00b`},
		{"ansi escape", "a\x1b[31mred", `a\x1b[31mred`},
		{"unicode preserved", "clip_éñ.mp4", "clip_éñ.mp4"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeForLog(tt.input); got != tt.want {
				t.Errorf("SanitizeForLog(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
