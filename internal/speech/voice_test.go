package speech

import "testing"

func TestPickVoice(t *testing.T) {
	tests := []struct {
		name   string
		voices []Voice
		want   string
		wantOK bool
	}{
		{
			name:   "empty list",
			voices: nil,
			wantOK: false,
		},
		{
			name: "preferred name beats default",
			voices: []Voice{
				{Name: "Random", Lang: "en-US", Default: true},
				{Name: "Google US English", Lang: "en-US"},
			},
			want:   "Google US English",
			wantOK: true,
		},
		{
			name: "preference order within the preferred list",
			voices: []Voice{
				{Name: "Daniel", Lang: "en-GB"},
				{Name: "Samantha", Lang: "en-US"},
			},
			want:   "Samantha",
			wantOK: true,
		},
		{
			name: "default voice next",
			voices: []Voice{
				{Name: "Anna", Lang: "de-DE"},
				{Name: "Moira", Lang: "de-DE", Default: true},
			},
			want:   "Moira",
			wantOK: true,
		},
		{
			name: "first english voice next",
			voices: []Voice{
				{Name: "Anna", Lang: "de-DE"},
				{Name: "Moira", Lang: "en-AU"},
				{Name: "Karen", Lang: "en-US"},
			},
			want:   "Moira",
			wantOK: true,
		},
		{
			name: "first voice as last resort",
			voices: []Voice{
				{Name: "Anna", Lang: "de-DE"},
				{Name: "Moira", Lang: "fr-FR"},
			},
			want:   "Anna",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickVoice(tt.voices)
			if ok != tt.wantOK {
				t.Fatalf("PickVoice ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Name != tt.want {
				t.Errorf("PickVoice = %q, want %q", got.Name, tt.want)
			}
		})
	}
}
