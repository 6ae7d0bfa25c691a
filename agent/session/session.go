package session

import (
	"time"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// maxProductSnapshot bounds how many products a single Message retains for
// history purposes; the full result set lives only in the turn that
// produced it.
const maxProductSnapshot = 5

// Message is one entry of a session's log. Created once per turn and never
// mutated afterwards.
type Message struct {
	Role          Role                 `json:"role"`
	Content       string               `json:"content"`
	Timestamp     time.Time            `json:"timestamp"`
	AgentType     contractx.AgentType  `json:"agent_type,omitempty"`
	Products      []contractx.Product  `json:"products,omitempty"`
	WorkflowSteps []string             `json:"workflow_steps,omitempty"`
}

// Session is the unit of conversational memory, keyed by a caller-supplied
// identifier. Messages keep insertion order; UserContext merges
// last-write-wins.
type Session struct {
	ID          string         `json:"session_id"`
	Messages    []Message      `json:"messages"`
	UserContext map[string]any `json:"user_context,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	LastUpdated time.Time      `json:"last_updated"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:          id,
		UserContext: make(map[string]any, 8),
		CreatedAt:   now.UTC(),
		LastUpdated: now.UTC(),
	}
}

func (s *Session) ensureContext() {
	if s.UserContext == nil {
		s.UserContext = make(map[string]any, 8)
	}
}

// append adds a message and evicts the oldest entries beyond window. Not
// safe for concurrent use; the Store serializes per session.
func (s *Session) append(msg Message, window int) {
	if len(msg.Products) > maxProductSnapshot {
		msg.Products = msg.Products[:maxProductSnapshot]
	}
	s.Messages = append(s.Messages, msg)
	if window > 0 && len(s.Messages) > window {
		// Copy so evicted prefixes do not pin the old backing array.
		trimmed := make([]Message, window)
		copy(trimmed, s.Messages[len(s.Messages)-window:])
		s.Messages = trimmed
	}
	s.LastUpdated = msg.Timestamp.UTC()
}

// recent returns up to max messages, oldest first.
func (s *Session) recent(max int) []Message {
	msgs := s.Messages
	if max > 0 && len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Summary is the session metadata exposed over the transport.
type Summary struct {
	SessionID    string         `json:"session_id"`
	MessageCount int            `json:"message_count"`
	CreatedAt    time.Time      `json:"created_at"`
	LastUpdated  time.Time      `json:"last_updated"`
	UserContext  map[string]any `json:"user_context,omitempty"`
}
