// Package testutil holds helpers shared by package tests.
package testutil

import (
	"sync"

	"github.com/hupe1980/agentcrew/core"
)

// Recorder is a core.Observer collecting everything it is notified about.
type Recorder struct {
	mu       sync.Mutex
	messages []core.Message
	errors   []error
}

// OnMessage implements core.Observer.
func (r *Recorder) OnMessage(msg core.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// OnError implements core.Observer.
func (r *Recorder) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

// Messages returns the observed messages.
func (r *Recorder) Messages() []core.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Message(nil), r.messages...)
}

// Errors returns the observed errors.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...)
}

// Authors returns the authors of msgs in order.
func Authors(msgs []core.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Author
	}
	return out
}

// Texts returns the text of msgs in order.
func Texts(msgs []core.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text()
	}
	return out
}
