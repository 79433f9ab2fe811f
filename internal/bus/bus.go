// Package bus is an in-process publish/subscribe bus for the dashboard's
// cross-panel events. The set of events is closed: only the types declared
// in this package satisfy Event.
package bus

import (
	"sync"

	"github.com/finassist/fin/internal/api"
)

// Kind identifies an event variant.
type Kind string

const (
	KindActionSelected    Kind = "actionSelected"
	KindToolSelected      Kind = "toolSelected"
	KindBotAction         Kind = "botAction"
	KindChatMessage       Kind = "chatMessage"
	KindCredentialsStored Kind = "credentialsStored"
)

// Event is implemented by the event types of this package only.
type Event interface {
	Kind() Kind
	sealed()
}

// ActionSelected is published when a quick action is chosen.
type ActionSelected struct {
	Action string
}

// ToolSelected is published when the user picks a tool.
type ToolSelected struct {
	Tool string
}

// BotAction is published when a chat response carries an action.
type BotAction struct {
	Action api.Action
}

// ChatMessage asks the chat panel to send Text on the user's behalf.
type ChatMessage struct {
	Text string
}

// CredentialsStored is published after broker credentials were saved.
type CredentialsStored struct {
	Metrics api.Metrics
}

func (ActionSelected) Kind() Kind    { return KindActionSelected }
func (ToolSelected) Kind() Kind      { return KindToolSelected }
func (BotAction) Kind() Kind         { return KindBotAction }
func (ChatMessage) Kind() Kind       { return KindChatMessage }
func (CredentialsStored) Kind() Kind { return KindCredentialsStored }

func (ActionSelected) sealed()    {}
func (ToolSelected) sealed()      {}
func (BotAction) sealed()         {}
func (ChatMessage) sealed()       {}
func (CredentialsStored) sealed() {}

type subscription[R any] struct {
	id int
	fn func(Event) R
}

// Bus dispatches events synchronously, in subscription order. R is what a
// handler hands back to the publisher, e.g. a follow-up command.
type Bus[R any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[Kind][]subscription[R]
}

// New creates an empty bus.
func New[R any]() *Bus[R] {
	return &Bus[R]{subs: make(map[Kind][]subscription[R])}
}

// Subscribe registers fn for events of kind k and returns a function that
// removes the subscription.
func (b *Bus[R]) Subscribe(k Kind, fn func(Event) R) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[k] = append(b.subs[k], subscription[R]{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[k]
		for i, s := range subs {
			if s.id == id {
				b.subs[k] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every subscriber of its kind and collects their results.
func (b *Bus[R]) Publish(e Event) []R {
	b.mu.Lock()
	subs := make([]subscription[R], len(b.subs[e.Kind()]))
	copy(subs, b.subs[e.Kind()])
	b.mu.Unlock()

	results := make([]R, 0, len(subs))
	for _, s := range subs {
		results = append(results, s.fn(e))
	}
	return results
}

// On subscribes a handler typed by its event, so the payload shape is
// checked by the compiler.
func On[E Event, R any](b *Bus[R], fn func(E) R) func() {
	var zero E
	return b.Subscribe(zero.Kind(), func(e Event) R {
		return fn(e.(E))
	})
}
