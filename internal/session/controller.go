package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrBusy is returned by Submit while a previous turn is still in flight.
// Overlapping submissions are rejected rather than queued so transcript
// order stays causal.
var ErrBusy = errors.New("a reply is already in flight")

// Interpreter resolves an utterance locally without a network call.
type Interpreter interface {
	Process(text string) (reply string, ok bool)
}

// Completer produces a conversational reply for input the interpreter
// could not resolve.
type Completer interface {
	Send(ctx context.Context, content string, history []Message) (string, error)
}

// Speech is the slice of the speech adapter the controller drives directly.
type Speech interface {
	Speak(text string, enabled bool)
	CancelSpeech()
}

type Config struct {
	Interpreter Interpreter
	Completer   Completer
	Speech      Speech

	// Navigate and Announce abstract client-side routing and the
	// assistive-technology live region.
	Navigate func(path string)
	Announce func(text string)

	// OnChange receives a state snapshot after every mutation.
	OnChange func(State)

	// SpeechOutput is the initial position of the voice-output toggle.
	SpeechOutput bool

	Logger *slog.Logger

	// Test hooks.
	Now   func() time.Time
	NewID func() string
}

// Controller owns the conversation transcript and the session flags. All
// mutations happen through its methods; the presentation layer only ever
// sees snapshots.
type Controller struct {
	cfg Config
	log *slog.Logger

	mu           sync.Mutex
	transcript   []Message
	pendingInput string
	loading      bool
	listening    bool
	speaking     bool
	speechOutput bool
}

func NewController(cfg Config) *Controller {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Controller{
		cfg:          cfg,
		log:          cfg.Logger,
		speechOutput: cfg.SpeechOutput,
	}
}

// Submit runs one conversation turn: the user message is appended
// immediately, the interpreter gets first try, and only unmatched input
// goes to the completion service. Blank input is ignored.
func (c *Controller) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}
	history := append([]Message(nil), c.transcript...)
	c.transcript = append(c.transcript, c.newMessage(RoleUser, text, nil))
	c.pendingInput = ""
	c.loading = true
	c.mu.Unlock()
	c.notify()

	if c.cfg.Interpreter != nil {
		if reply, ok := c.cfg.Interpreter.Process(text); ok {
			c.log.Debug("resolved locally", "text", text)
			c.finishTurn(reply, nil)
			return nil
		}
	}

	if c.cfg.Completer == nil {
		c.finishTurn("Sorry, I can't answer questions right now.", nil)
		return nil
	}

	reply, err := c.cfg.Completer.Send(ctx, text, history)
	if err != nil {
		c.log.Error("completion failed", "err", err)
		c.finishTurn(err.Error(), nil)
		return nil
	}

	c.finishTurn(reply, deriveActions(reply))
	return nil
}

// finishTurn appends the assistant reply and clears the loading flag,
// then voices the reply if the output toggle is on.
func (c *Controller) finishTurn(content string, actions []ChatAction) {
	c.mu.Lock()
	c.transcript = append(c.transcript, c.newMessage(RoleAssistant, content, actions))
	c.loading = false
	speak := c.speechOutput
	c.mu.Unlock()
	c.notify()

	if c.cfg.Speech != nil {
		c.cfg.Speech.Speak(content, speak)
	}
}

// HandleAction runs a suggested follow-up. Only navigate is implemented;
// scroll and info are declared but currently ignored.
func (c *Controller) HandleAction(a ChatAction) {
	switch a.Type {
	case ActionNavigate:
		if c.cfg.Navigate != nil {
			c.cfg.Navigate(a.Data)
		}
		c.announce(fmt.Sprintf("Navigating to %s.", a.Data))
	default:
	}
}

// ToggleSpeech flips the voice-output toggle, cutting off any reply that
// is mid-playback when switching off.
func (c *Controller) ToggleSpeech() {
	c.mu.Lock()
	c.speechOutput = !c.speechOutput
	on := c.speechOutput
	speaking := c.speaking
	c.mu.Unlock()
	c.notify()

	if !on && speaking && c.cfg.Speech != nil {
		c.cfg.Speech.CancelSpeech()
	}

	if on {
		c.announce("Voice responses enabled.")
	} else {
		c.announce("Voice responses disabled.")
	}
}

// SetPendingInput records the text currently being composed or transcribed.
func (c *Controller) SetPendingInput(text string) {
	c.mu.Lock()
	c.pendingInput = text
	c.mu.Unlock()
	c.notify()
}

// SetListening mirrors the capture state reported by the speech adapter.
func (c *Controller) SetListening(v bool) {
	c.mu.Lock()
	changed := c.listening != v
	c.listening = v
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// SetSpeaking mirrors the playback state reported by the speech adapter.
func (c *Controller) SetSpeaking(v bool) {
	c.mu.Lock()
	changed := c.speaking != v
	c.speaking = v
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// Reset clears the transcript and all flags; the Go analog of a page
// reload. Nothing is persisted.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.transcript = nil
	c.pendingInput = ""
	c.loading = false
	c.mu.Unlock()
	c.notify()
}

// State returns a snapshot safe to share with the presentation layer.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Transcript:   append([]Message(nil), c.transcript...),
		PendingInput: c.pendingInput,
		Loading:      c.loading,
		Listening:    c.listening,
		Speaking:     c.speaking,
		SpeechOutput: c.speechOutput,
	}
}

func (c *Controller) newMessage(role Role, content string, actions []ChatAction) Message {
	return Message{
		ID:        c.cfg.NewID(),
		Role:      role,
		Content:   content,
		CreatedAt: c.cfg.Now(),
		Actions:   actions,
	}
}

func (c *Controller) announce(text string) {
	if c.cfg.Announce != nil {
		c.cfg.Announce(text)
	}
}

func (c *Controller) notify() {
	if c.cfg.OnChange != nil {
		c.cfg.OnChange(c.State())
	}
}
