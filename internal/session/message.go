package session

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ActionType string

const (
	ActionNavigate ActionType = "navigate"
	ActionScroll   ActionType = "scroll"
	ActionInfo     ActionType = "info"
)

// ChatAction is a suggested follow-up surfaced as a button next to an
// assistant reply. Data is interpreted according to Type; for navigate it
// is the destination path.
type ChatAction struct {
	Type  ActionType `json:"type"`
	Label string     `json:"label"`
	Data  string     `json:"data"`
}

// Message is one turn in the conversation transcript. Messages are never
// mutated after creation; Actions is populated for assistant turns only.
type Message struct {
	ID        string       `json:"id"`
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
	Actions   []ChatAction `json:"actions,omitempty"`
}

// State is a point-in-time snapshot of the session, safe to hand to the
// presentation layer.
type State struct {
	Transcript   []Message `json:"transcript"`
	PendingInput string    `json:"pending_input"`
	Loading      bool      `json:"loading"`
	Listening    bool      `json:"listening"`
	Speaking     bool      `json:"speaking"`
	SpeechOutput bool      `json:"speech_output"`
}
