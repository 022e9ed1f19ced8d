package speech

import "errors"

// Capture failure classes. Each maps to a distinct user-facing sentence;
// none are fatal to the adapter.
var (
	ErrNoSpeech   = errors.New("no speech detected")
	ErrNoDevice   = errors.New("audio capture device unavailable")
	ErrPermission = errors.New("microphone permission denied")
	ErrNetwork    = errors.New("network failure during recognition")
)

const unavailableMessage = "Speech recognition is not available in this environment."

// captureMessage maps a capture error to the sentence shown and announced
// to the user.
func captureMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoSpeech):
		return "I didn't catch that. Please try again."
	case errors.Is(err, ErrPermission):
		return "Microphone access was denied. Please allow microphone access and try again."
	case errors.Is(err, ErrNoDevice):
		return "No microphone seems to be available right now."
	case errors.Is(err, ErrNetwork):
		return "Speech recognition needs a network connection. Please check yours and try again."
	default:
		return "Something went wrong while listening. Please try again."
	}
}
