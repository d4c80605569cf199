package core

import "context"

// Observer receives notifications for every appended message and every
// per-turn error of a session. Calls are made from a dedicated dispatcher
// goroutine in append order and must return promptly.
type Observer interface {
	OnMessage(msg Message)
	OnError(err error)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Message func(Message)
	Error   func(error)
}

// OnMessage implements Observer.
func (o ObserverFuncs) OnMessage(msg Message) {
	if o.Message != nil {
		o.Message(msg)
	}
}

// OnError implements Observer.
func (o ObserverFuncs) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

// InputProvider supplies human input when routing suspends for it.
type InputProvider interface {
	ProvideInput(ctx context.Context, history []Message) (Message, error)
}

// InputProviderFunc is a functional adapter for InputProvider.
type InputProviderFunc func(ctx context.Context, history []Message) (Message, error)

// ProvideInput implements InputProvider.
func (f InputProviderFunc) ProvideInput(ctx context.Context, history []Message) (Message, error) {
	return f(ctx, history)
}
