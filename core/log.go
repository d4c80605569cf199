package core

import (
	"sync"
	"time"
)

// ConversationLog is the append-only, ordered record of a session's messages.
//
// Contract:
//   - Append assigns the next sequence number (starting at 1) and never
//     reorders or removes earlier entries
//   - Snapshot returns a defensive copy representing a point in time
//   - Growth is unbounded; there is no compaction
//
// A session is the single writer. The mutex only guards concurrent readers
// (e.g. a caller inspecting a running session through its result handle).
type ConversationLog struct {
	mu       sync.RWMutex
	messages []Message
	updated  time.Time
}

// NewConversationLog creates an empty log.
func NewConversationLog() *ConversationLog {
	return &ConversationLog{messages: []Message{}, updated: time.Now()}
}

// Append stores a copy of m with its sequence number assigned and returns
// the stored message.
func (l *ConversationLog) Append(m Message) Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored := m.clone()
	if stored.ID == "" {
		stored.ID = NewID()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}
	stored.Sequence = len(l.messages) + 1
	l.messages = append(l.messages, stored)
	l.updated = time.Now()

	return stored.clone()
}

// Snapshot returns a copy of all messages in append order.
func (l *ConversationLog) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Message, len(l.messages))
	for i, m := range l.messages {
		out[i] = m.clone()
	}
	return out
}

// Len returns the number of appended messages.
func (l *ConversationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Last returns the most recently appended message.
func (l *ConversationLog) Last() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1].clone(), true
}

// Updated returns the time of the last append.
func (l *ConversationLog) Updated() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.updated
}
