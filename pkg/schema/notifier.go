package schema

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Notifier is the in-process ChangePublisher: the validation listener feeds
// actor events into it and registry updates fan out through it, so a host
// wires one Notifier to both sides.
type Notifier struct {
	mu        sync.RWMutex
	listeners []func(context.Context, uuid.UUID, map[string]any)
}

// NewNotifier constructs an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

var _ ChangePublisher = (*Notifier)(nil)

// Register adds a listener. Nil listeners are ignored.
func (n *Notifier) Register(listener func(context.Context, uuid.UUID, map[string]any)) {
	if listener == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, listener)
}

// Notify implements ChangePublisher by fanning the event out to every
// registered listener.
func (n *Notifier) Notify(ctx context.Context, actorID uuid.UUID, metadata map[string]any) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, listener := range n.listeners {
		listener(ctx, actorID, metadata)
	}
}
