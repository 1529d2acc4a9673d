package manager

// EventKind identifies a manager notification.
type EventKind string

const (
	EventHistoryChanged EventKind = "historyChanged"
	EventToggleHistory  EventKind = "toggleHistoryVisibilityRequested"
)

// Event is delivered to listeners. History is set for EventHistoryChanged
// and is never nil there.
type Event struct {
	Kind    EventKind `json:"kind"`
	History []string  `json:"history,omitempty"`
}

// Listener receives manager events. Notify should not block; it may call
// back into the Manager.
type Listener interface {
	Notify(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// Notify calls f(ev).
func (f ListenerFunc) Notify(ev Event) { f(ev) }

// Subscribe adds l and returns a function that removes it.
func (m *Manager) Subscribe(l Listener) (cancel func()) {
	m.lmu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.lmu.Unlock()

	return func() {
		m.lmu.Lock()
		delete(m.listeners, id)
		m.lmu.Unlock()
	}
}

// enqueue appends ev to the delivery queue. Callers that mutate history hold
// m.mu, so queue order is mutation order.
func (m *Manager) enqueue(ev Event) {
	m.lmu.Lock()
	m.pending = append(m.pending, ev)
	m.lmu.Unlock()
}

// flush delivers queued events in order. Only one goroutine delivers at a
// time; a concurrent caller returns at once and its events are delivered by
// the goroutine already draining.
func (m *Manager) flush() {
	m.lmu.Lock()
	if m.draining {
		m.lmu.Unlock()
		return
	}
	m.draining = true
	for len(m.pending) > 0 {
		ev := m.pending[0]
		m.pending = m.pending[1:]
		ls := make([]Listener, 0, len(m.listeners))
		for _, l := range m.listeners {
			ls = append(ls, l)
		}
		m.lmu.Unlock()

		for _, l := range ls {
			l.Notify(ev)
		}

		m.lmu.Lock()
	}
	m.draining = false
	m.lmu.Unlock()
}
