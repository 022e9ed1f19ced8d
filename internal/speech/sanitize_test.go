package speech

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"keeps punctuation", "Wait, really? Yes! (See: /projects)", "Wait, really? Yes! (See: projects)"},
		{"strips emoji", "great 🎉 job", "great job"},
		{"strips markup", "<b>bold</b>", "b bold b"},
		{"collapses whitespace", "a   b\t\tc\n\nd", "a b c d"},
		{"trims", "  hi  ", "hi"},
		{"empty", "", ""},
		{"only disallowed", "🎉🎉", ""},
		{"apostrophes kept", "Peter's projects aren't finished.", "Peter's projects aren't finished."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
