package speech

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"aria/pkg/stt"
)

const transcribeTimeout = 60 * time.Second

// MicRecognizer pairs the microphone recorder with the local
// speech-to-text engine to form a single-utterance Recognizer.
type MicRecognizer struct {
	rec  *Recorder
	tr   *stt.Transcriber
	lang string
	log  *slog.Logger
}

func NewMicRecognizer(rec *Recorder, tr *stt.Transcriber, lang string, log *slog.Logger) *MicRecognizer {
	if log == nil {
		log = slog.Default()
	}
	return &MicRecognizer{
		rec:  rec,
		tr:   tr,
		lang: lang,
		log:  log,
	}
}

func (m *MicRecognizer) Available() bool {
	return m != nil && m.rec != nil && m.tr != nil
}

// Listen records one utterance and transcribes it. Cancelling ctx stops
// the recording early; whatever was captured up to that point is still
// transcribed, matching push-to-talk expectations.
func (m *MicRecognizer) Listen(ctx context.Context) (string, error) {
	pcm, err := m.rec.Record(ctx)
	if err != nil {
		return "", err
	}
	if len(pcm) == 0 {
		return "", ErrNoSpeech
	}

	m.log.Debug("recorded utterance", "samples", len(pcm))

	// Transcription gets its own deadline so a cancelled capture still
	// yields its partial transcript.
	tctx, cancel := context.WithTimeout(context.Background(), transcribeTimeout)
	defer cancel()

	res, err := m.tr.Transcribe(tctx, pcm, stt.Options{Language: m.lang})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", ErrNoSpeech
	}

	return text, nil
}
