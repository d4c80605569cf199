package core

import (
	"context"
	"errors"
	"time"
)

// ErrTranscriptNotFound is returned by stores for unknown session ids.
var ErrTranscriptNotFound = errors.New("transcript not found")

// Transcript is the record of a resolved session: the full conversation and
// how it ended.
type Transcript struct {
	SessionID string
	Policy    string
	Members   []string
	Messages  []Message
	Output    Message
	Err       string // empty on success
	Turns     int
	Started   time.Time
	Finished  time.Time
}

// Clone returns a deep copy of the transcript.
func (t Transcript) Clone() Transcript {
	c := t
	c.Members = append([]string(nil), t.Members...)
	c.Messages = make([]Message, len(t.Messages))
	for i, m := range t.Messages {
		c.Messages[i] = m.clone()
	}
	c.Output = t.Output.clone()
	return c
}

// TranscriptStore archives transcripts of resolved sessions. Save is called
// once per session before its result resolves.
type TranscriptStore interface {
	Save(ctx context.Context, t Transcript) error
}
