package testhelpers

import (
	"sync"

	"testadmin/internal/models"
)

// Notification is one call observed by RecordingNotifier.
type Notification struct {
	Kind    models.EventKind
	Payload any
}

// RecordingNotifier captures notifications in call order.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []Notification
}

func (n *RecordingNotifier) Notify(kind models.EventKind, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, Notification{Kind: kind, Payload: payload})
}

func (n *RecordingNotifier) Events() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.events))
	copy(out, n.events)
	return out
}

// Count returns how many notifications of kind were recorded.
func (n *RecordingNotifier) Count(kind models.EventKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.Kind == kind {
			c++
		}
	}
	return c
}

func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}
