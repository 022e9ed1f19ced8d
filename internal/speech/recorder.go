package speech

import (
	"context"
	"fmt"
	"math"

	"github.com/gordonklaus/portaudio"
)

// Recorder captures mono 16 kHz PCM from the default input device.
type Recorder struct{}

// NewRecorder initializes the audio subsystem; Close releases it.
func NewRecorder() (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("init portaudio: %w", err)
	}
	return &Recorder{}, nil
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Record captures one utterance: it waits for speech, then stops after a
// sustained stretch of silence or when the overall limit is hit.
// Cancelling ctx ends capture early and returns whatever was heard.
func (r *Recorder) Record(ctx context.Context) ([]float32, error) {
	const (
		sampleRate = 16000
		frameSize  = 320 // 20ms
		frameMs    = 20

		silenceThreshRMS = 0.015
		silenceLimitMs   = 600
		maxSeconds       = 10
	)

	buf := make([]float32, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	defer stream.Stop()

	var (
		out       = make([]float32, 0, sampleRate*3)
		speaking  bool
		silenceMs int
	)

	maxFrames := maxSeconds * sampleRate / frameSize

	for i := 0; i < maxFrames; i++ {
		select {
		case <-ctx.Done():
			return out, nil
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
		}

		if frameRMS(buf) > silenceThreshRMS {
			speaking = true
			silenceMs = 0
			out = append(out, buf...)
			continue
		}

		if speaking {
			silenceMs += frameMs
			if silenceMs >= silenceLimitMs {
				break
			}
			out = append(out, buf...)
		}
	}

	if len(out) == 0 {
		return nil, ErrNoSpeech
	}

	return out, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
