// Package speech presents push-button capture and playback as a small
// event-driven facade over backends that may be entirely absent.
package speech

import (
	"context"
	"log/slog"
	"sync"
)

// Recognizer captures a single utterance and returns its transcript.
// Listen blocks until the utterance ends, the context is cancelled, or a
// capture error occurs.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
	Available() bool
}

// Synthesizer turns text into audible playback. Speak blocks until
// playback finishes or the context is cancelled. OnVoicesReady registers
// a one-shot hook fired when the voice list becomes non-empty.
type Synthesizer interface {
	Speak(ctx context.Context, text string, v Voice) error
	Voices() []Voice
	OnVoicesReady(fn func())
	Available() bool
}

// Callbacks deliver adapter events. Nil fields are skipped.
type Callbacks struct {
	ListeningChanged func(bool)
	SpeakingChanged  func(bool)

	// Transcript receives the recognized text of a completed capture.
	Transcript func(string)

	// Error receives a human-readable failure sentence.
	Error func(string)

	// Announce feeds the assistive-technology live region.
	Announce func(string)
}

// Adapter owns exactly one active capture and one active playback at a
// time. Capture and playback are mutually exclusive: starting one cancels
// the other.
type Adapter struct {
	rec   Recognizer
	synth Synthesizer
	cb    Callbacks
	log   *slog.Logger

	mu           sync.Mutex
	listening    bool
	speaking     bool
	listenCancel context.CancelFunc
	speakCancel  context.CancelFunc
	voice        Voice
	voiceChosen  bool
}

func NewAdapter(rec Recognizer, synth Synthesizer, cb Callbacks, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		rec:   rec,
		synth: synth,
		cb:    cb,
		log:   log,
	}
}

// RecognitionAvailable gates the capture affordance in the UI.
func (a *Adapter) RecognitionAvailable() bool {
	return a.rec != nil && a.rec.Available()
}

// VoiceSupported gates the voice-output affordance in the UI.
func (a *Adapter) VoiceSupported() bool {
	return a.synth != nil && a.synth.Available()
}

// StartListening begins a single-utterance capture. Calling it while a
// capture is active is treated as toggle-off. Any in-progress playback is
// cancelled before capture begins.
func (a *Adapter) StartListening() {
	if !a.RecognitionAvailable() {
		a.fail(unavailableMessage)
		return
	}

	a.mu.Lock()
	if a.listening {
		cancel := a.listenCancel
		a.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return
	}

	speechEnded := a.cancelSpeechLocked()

	ctx, cancel := context.WithCancel(context.Background())
	a.listenCancel = cancel
	a.listening = true
	a.mu.Unlock()

	if speechEnded {
		a.emitSpeaking(false)
	}
	a.emitListening(true)
	a.announce("Listening.")

	go a.capture(ctx)
}

func (a *Adapter) capture(ctx context.Context) {
	text, err := a.rec.Listen(ctx)

	a.mu.Lock()
	a.listening = false
	a.listenCancel = nil
	a.mu.Unlock()

	switch {
	case err == nil && text != "":
		a.log.Info("utterance recognized", "text", text)
		if a.cb.Transcript != nil {
			a.cb.Transcript(text)
		}
	case err != nil && ctx.Err() == nil:
		a.log.Warn("capture failed", "err", err)
		a.fail(captureMessage(err))
	}

	a.emitListening(false)
	a.announce("Stopped listening.")
}

// StopListening requests early termination of an active capture; the
// transcript recognized so far is still delivered. No-op when idle.
func (a *Adapter) StopListening() {
	a.mu.Lock()
	cancel := a.listenCancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Speak voices text through the selected voice. No-op when disabled, when
// synthesis is unsupported, or when nothing remains after sanitization.
// An already-playing utterance is cancelled first.
func (a *Adapter) Speak(text string, enabled bool) {
	if !enabled || !a.VoiceSupported() {
		return
	}

	clean := Sanitize(text)
	if clean == "" {
		return
	}

	a.mu.Lock()
	speechEnded := a.cancelSpeechLocked()

	// Starting playback preempts capture as well.
	if a.listenCancel != nil {
		a.listenCancel()
	}

	if !a.voiceChosen {
		v, ok := PickVoice(a.synth.Voices())
		if !ok {
			// Voice list not populated yet; retry once it is.
			a.mu.Unlock()
			if speechEnded {
				a.emitSpeaking(false)
			}
			a.synth.OnVoicesReady(func() { a.Speak(text, enabled) })
			return
		}
		a.voice = v
		a.voiceChosen = true
		a.log.Debug("voice selected", "voice", v.Name)
	}
	voice := a.voice

	ctx, cancel := context.WithCancel(context.Background())
	a.speakCancel = cancel
	a.speaking = true
	a.mu.Unlock()

	if speechEnded {
		a.emitSpeaking(false)
	}
	a.emitSpeaking(true)
	a.announce("Speaking.")

	go a.playback(ctx, cancel, clean, voice)
}

func (a *Adapter) playback(ctx context.Context, cancel context.CancelFunc, text string, voice Voice) {
	defer cancel()

	err := a.synth.Speak(ctx, text, voice)

	a.mu.Lock()
	if ctx.Err() != nil {
		// Preempted; whoever cancelled already emitted speech-ended.
		a.mu.Unlock()
		return
	}
	a.speaking = false
	a.speakCancel = nil
	a.mu.Unlock()

	if err != nil {
		a.log.Warn("playback failed", "err", err)
		a.fail("Voice playback failed.")
	}

	a.emitSpeaking(false)
	a.announce("Finished speaking.")
}

// CancelSpeech immediately stops playback. No-op when nothing is playing.
func (a *Adapter) CancelSpeech() {
	a.mu.Lock()
	ended := a.cancelSpeechLocked()
	a.mu.Unlock()

	if ended {
		a.emitSpeaking(false)
		a.announce("Finished speaking.")
	}
}

// cancelSpeechLocked stops the active utterance and reports whether a
// speech-ended event still needs to be emitted. Caller holds a.mu.
func (a *Adapter) cancelSpeechLocked() bool {
	if !a.speaking {
		return false
	}
	if a.speakCancel != nil {
		a.speakCancel()
		a.speakCancel = nil
	}
	a.speaking = false
	return true
}

func (a *Adapter) emitListening(v bool) {
	if a.cb.ListeningChanged != nil {
		a.cb.ListeningChanged(v)
	}
}

func (a *Adapter) emitSpeaking(v bool) {
	if a.cb.SpeakingChanged != nil {
		a.cb.SpeakingChanged(v)
	}
}

func (a *Adapter) announce(text string) {
	if a.cb.Announce != nil {
		a.cb.Announce(text)
	}
}

// fail surfaces a failure sentence through both the error callback and
// the announcement sink.
func (a *Adapter) fail(msg string) {
	if a.cb.Error != nil {
		a.cb.Error(msg)
	}
	a.announce(msg)
}
