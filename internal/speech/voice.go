package speech

import "strings"

// Voice describes one synthesis voice offered by a Synthesizer.
type Voice struct {
	Name    string
	Lang    string
	Default bool
}

// preferredVoices are tried first, in order, before falling back to the
// platform default.
var preferredVoices = []string{
	"Google US English",
	"Samantha",
	"Daniel",
	"alloy",
}

// PickVoice selects a playback voice: a known-good named voice, then the
// default voice, then the first English voice, then whatever is first.
// ok is false only when the list is empty.
func PickVoice(voices []Voice) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}

	for _, want := range preferredVoices {
		for _, v := range voices {
			if v.Name == want {
				return v, true
			}
		}
	}

	for _, v := range voices {
		if v.Default {
			return v, true
		}
	}

	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Lang), "en") {
			return v, true
		}
	}

	return voices[0], true
}
