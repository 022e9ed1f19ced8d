// Package tts synthesizes speech through a remote endpoint and plays the
// result on the local speaker.
package tts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/faiface/beep"
	beepmp3 "github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	openai "github.com/openai/openai-go/v3"

	"aria/internal/speech"
)

// voices is the fixed list offered by the synthesis endpoint. alloy is
// the service default.
var voices = []speech.Voice{
	{Name: "alloy", Lang: "en-US", Default: true},
	{Name: "echo", Lang: "en-US"},
	{Name: "fable", Lang: "en-GB"},
	{Name: "onyx", Lang: "en-US"},
	{Name: "nova", Lang: "en-US"},
	{Name: "shimmer", Lang: "en-US"},
}

// Speaker implements speech.Synthesizer on top of the remote synthesis
// endpoint, optionally ducking other audio streams during playback.
type Speaker struct {
	api       openai.Client
	model     string
	duck      *Ducker
	available bool
	log       *slog.Logger
}

func NewSpeaker(api openai.Client, model string, duck *Ducker, log *slog.Logger) *Speaker {
	if log == nil {
		log = slog.Default()
	}
	return &Speaker{
		api:       api,
		model:     model,
		duck:      duck,
		available: true,
		log:       log,
	}
}

func (s *Speaker) Available() bool {
	return s != nil && s.available
}

func (s *Speaker) Voices() []speech.Voice {
	return voices
}

// OnVoicesReady fires immediately: the voice list is static here, unlike
// browser synthesis where it populates asynchronously.
func (s *Speaker) OnVoicesReady(fn func()) {
	if fn != nil {
		fn()
	}
}

// Speak synthesizes text to mp3 and plays it, blocking until playback
// finishes or ctx is cancelled.
func (s *Speaker) Speak(ctx context.Context, text string, v speech.Voice) error {
	resp, err := s.api.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(v.Name),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Body.Close()

	if s.duck != nil {
		if err := s.duck.Duck(ctx); err != nil {
			s.log.Warn("failed to duck other streams", "err", err)
		}
		defer func() {
			if err := s.duck.Restore(context.Background()); err != nil {
				s.log.Warn("failed to restore other streams", "err", err)
			}
		}()
	}

	return playMP3(ctx, resp.Body)
}

func playMP3(ctx context.Context, r io.ReadCloser) error {
	streamer, format, err := beepmp3.Decode(r)
	if err != nil {
		return fmt.Errorf("decode mp3: %w", err)
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}
