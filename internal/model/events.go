package model

import "github.com/google/uuid"

// EventKind classifies a context change.
type EventKind string

const (
	EventShotAdded      EventKind = "shotAdded"
	EventShotRemoved    EventKind = "shotRemoved"
	EventShotSwitched   EventKind = "shotSwitched"
	EventVersionUpdated EventKind = "versionUpdated"
	EventAssetAdded     EventKind = "assetAdded"
	EventAssetRemoved   EventKind = "assetRemoved"
)

// Payload carries event details as flat key/value pairs.
type Payload map[string]string

// Event is delivered to every subscribed listener.
type Event struct {
	Kind    EventKind
	Payload Payload
}

// Listener receives context change events.
type Listener func(Event)

// Subscribe registers a listener and returns its registration handle.
func (m *Model) Subscribe(fn Listener) string {
	id := uuid.NewString()
	m.mu.Lock()
	m.listeners[id] = fn
	m.mu.Unlock()
	return id
}

// Unsubscribe removes a listener by handle.
func (m *Model) Unsubscribe(id string) {
	m.mu.Lock()
	delete(m.listeners, id)
	m.mu.Unlock()
}

// Silent runs fn with notifications suppressed. Cascading internal updates
// use it so a single user action does not fire one listener storm per
// touched binding; the caller emits one summary event afterwards.
func (m *Model) Silent(fn func()) {
	m.mu.Lock()
	m.silent = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.silent = false
		m.mu.Unlock()
	}()
	fn()
}

// Notify emits an event to all listeners unless silent mode is on.
// Exposed so the switch coordinator can emit its single shotSwitched event
// after a full fan-out.
func (m *Model) Notify(kind EventKind, payload Payload) {
	m.notify(kind, payload)
}

func (m *Model) notify(kind EventKind, payload Payload) {
	m.mu.Lock()
	if m.silent {
		m.mu.Unlock()
		return
	}
	fns := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	ev := Event{Kind: kind, Payload: payload}
	for _, fn := range fns {
		fn(ev)
	}
}
