package session

import "testing"

func TestDeriveActions(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantPaths []string
	}{
		{"no keywords", "Hello, how can I help?", nil},
		{"single project", "You can view Peter's IoT and AI projects including ThoraxIQ.", []string{"/projects"}},
		{"case insensitive", "Check the BLOG for details.", []string{"/blog"}},
		{"fixed scan order", "The blog links to projects and the about page.", []string{"/about", "/projects", "/blog"}},
		{"deduplicated", "Projects, more projects, so many projects.", []string{"/projects"}},
		{"all topics", "About Peter, his projects, contact info and blog.", []string{"/about", "/projects", "/contact", "/blog"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveActions(tt.reply)
			if len(got) != len(tt.wantPaths) {
				t.Fatalf("deriveActions(%q) = %d actions, want %d", tt.reply, len(got), len(tt.wantPaths))
			}
			for i, a := range got {
				if a.Type != ActionNavigate {
					t.Errorf("action %d type = %q, want navigate", i, a.Type)
				}
				if a.Data != tt.wantPaths[i] {
					t.Errorf("action %d data = %q, want %q", i, a.Data, tt.wantPaths[i])
				}
			}
		})
	}
}
