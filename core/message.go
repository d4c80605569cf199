package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the conversational role of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// UserAuthor marks messages authored by the external user (task seed and
// human input). SystemAuthor marks feedback appended by the orchestration
// itself, e.g. after a rejected handoff.
const (
	UserAuthor   = "user"
	SystemAuthor = "system"
)

// Transfer is the structured handoff directive an agent may attach to its
// reply. It is validated against the handoff graph by the router.
type Transfer struct {
	Target string `json:"target"`
	Reason string `json:"reason,omitempty"`
}

// Completion signals that the agent considers the task finished. Summary is
// used as the orchestration output.
type Completion struct {
	Summary string `json:"summary"`
}

// Message is a single attributed entry of a conversation. After it has been
// appended to a ConversationLog it must be treated as immutable.
type Message struct {
	ID         string      `json:"id"`
	Author     string      `json:"author"`
	Role       Role        `json:"role"`
	Parts      []Part      `json:"parts"`
	Transfer   *Transfer   `json:"transfer,omitempty"`
	Completion *Completion `json:"completion,omitempty"`
	Sequence   int         `json:"sequence"` // assigned by ConversationLog.Append
	Timestamp  time.Time   `json:"timestamp"`
}

// NewMessage creates a message with a single text part.
func NewMessage(author string, role Role, text string) Message {
	return Message{
		ID:        NewID(),
		Author:    author,
		Role:      role,
		Parts:     []Part{TextPart{Text: text}},
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistantMessage creates an assistant reply authored by agent.
func NewAssistantMessage(agent, text string) Message {
	return NewMessage(agent, RoleAssistant, text)
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return NewMessage(UserAuthor, RoleUser, text)
}

// NewTransferMessage creates an assistant message carrying a handoff directive.
func NewTransferMessage(agent, target, reason string) Message {
	m := NewAssistantMessage(agent, "")
	m.Parts = nil
	m.Transfer = &Transfer{Target: target, Reason: reason}
	return m
}

// NewCompletionMessage creates an assistant message that completes the task.
func NewCompletionMessage(agent, summary string) Message {
	m := NewAssistantMessage(agent, summary)
	m.Completion = &Completion{Summary: summary}
	return m
}

// NewID generates a new unique identifier.
func NewID() string { return uuid.NewString() }

// Text concatenates all text parts.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// Content returns the role-based view used by model adapters.
func (m Message) Content() Content {
	parts := make([]Part, len(m.Parts))
	copy(parts, m.Parts)
	return Content{Role: m.Role, Parts: parts}
}

// FunctionCalls returns any FunctionCall parts preserving their order.
func (m Message) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// IsTransfer reports whether the message carries a handoff directive.
func (m Message) IsTransfer() bool { return m.Transfer != nil && m.Transfer.Target != "" }

// IsCompletion reports whether the message completes the task.
func (m Message) IsCompletion() bool { return m.Completion != nil }

// clone returns a copy whose slices and directive pointers are not shared.
func (m Message) clone() Message {
	c := m
	if m.Parts != nil {
		c.Parts = make([]Part, len(m.Parts))
		copy(c.Parts, m.Parts)
	}
	if m.Transfer != nil {
		t := *m.Transfer
		c.Transfer = &t
	}
	if m.Completion != nil {
		cp := *m.Completion
		c.Completion = &cp
	}
	return c
}
