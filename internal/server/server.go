// Package server pushes session state to the site front-end over a
// WebSocket and feeds submissions back into the session controller.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"aria/internal/session"
)

// RecognizeFunc transcribes a recorded audio blob submitted by a client.
type RecognizeFunc func(ctx context.Context, format string, data []byte) (string, error)

// clientFrame is a message from the front-end. Data carries base64 audio
// in the JSON encoding.
type clientFrame struct {
	Kind   string              `json:"kind"`
	Text   string              `json:"text,omitempty"`
	Format string              `json:"format,omitempty"`
	Data   []byte              `json:"data,omitempty"`
	Action *session.ChatAction `json:"action,omitempty"`
}

// serverFrame is a message to the front-end.
type serverFrame struct {
	Kind  string         `json:"kind"`
	State *session.State `json:"state,omitempty"`
	Path  string         `json:"path,omitempty"`
	Text  string         `json:"text,omitempty"`
}

type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

type Server struct {
	ctrl      *session.Controller
	recognize RecognizeFunc
	log       *slog.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*conn]struct{}
}

func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		log:   log,
		conns: make(map[*conn]struct{}),
		upgrader: websocket.Upgrader{
			// The daemon serves the local site front-end only.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Attach wires the controller and the audio recognizer. Called once
// during boot, before the listener starts.
func (s *Server) Attach(ctrl *session.Controller, recognize RecognizeFunc) {
	s.ctrl = ctrl
	s.recognize = recognize
}

// HandleWS upgrades the connection, sends the current state, and then
// relays client frames into the controller.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &conn{ws: ws}
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	s.log.Info("client connected", "remote", ws.RemoteAddr())

	st := s.ctrl.State()
	if err := c.writeJSON(serverFrame{Kind: "state", State: &st}); err != nil {
		s.drop(c)
		return
	}

	for {
		var f clientFrame
		if err := ws.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("client read failed", "err", err)
			}
			s.drop(c)
			return
		}
		s.dispatch(f)
	}
}

func (s *Server) dispatch(f clientFrame) {
	switch f.Kind {
	case "submit":
		// Submission blocks on the completion round trip; keep the
		// read loop responsive.
		go s.submit(f.Text)
	case "audio":
		go s.submitAudio(f.Format, f.Data)
	case "input":
		s.ctrl.SetPendingInput(f.Text)
	case "action":
		if f.Action != nil {
			s.ctrl.HandleAction(*f.Action)
		}
	case "toggle_speech":
		s.ctrl.ToggleSpeech()
	case "reset":
		s.ctrl.Reset()
	default:
		s.log.Warn("unknown client frame", "kind", f.Kind)
	}
}

func (s *Server) submit(text string) {
	if err := s.ctrl.Submit(context.Background(), text); err != nil {
		if errors.Is(err, session.ErrBusy) {
			s.log.Debug("submission rejected while busy")
			return
		}
		s.log.Error("submit failed", "err", err)
	}
}

func (s *Server) submitAudio(format string, data []byte) {
	if s.recognize == nil {
		s.Announce("Sorry, voice input is not available right now.")
		return
	}

	text, err := s.recognize(context.Background(), format, data)
	if err != nil {
		s.log.Warn("audio recognition failed", "err", err)
		s.Announce("Sorry, I couldn't understand that recording.")
		return
	}

	s.submit(text)
}

// BroadcastState is the controller's OnChange hook.
func (s *Server) BroadcastState(st session.State) {
	s.broadcast(serverFrame{Kind: "state", State: &st})
}

// Navigate tells the front-end to route to path.
func (s *Server) Navigate(path string) {
	s.log.Info("navigate", "path", path)
	s.broadcast(serverFrame{Kind: "navigate", Path: path})
}

// Announce feeds the front-end's assistive live region and the log.
func (s *Server) Announce(text string) {
	s.log.Info("announce", "text", text)
	s.broadcast(serverFrame{Kind: "announce", Text: text})
}

func (s *Server) broadcast(f serverFrame) {
	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.writeJSON(f); err != nil {
			s.drop(c)
		}
	}
}

func (s *Server) drop(c *conn) {
	s.mu.Lock()
	_, ok := s.conns[c]
	delete(s.conns, c)
	s.mu.Unlock()

	if ok {
		c.ws.Close()
		s.log.Info("client disconnected", "remote", c.ws.RemoteAddr())
	}
}
