package game

// EventType identifies a state-change notification emitted by the manager.
type EventType string

const (
	EventInitComplete      EventType = "init-complete"
	EventInitError         EventType = "init-error"
	EventStateReset        EventType = "state-reset"
	EventGameLoaded        EventType = "game-loaded"
	EventGameSaved         EventType = "game-saved"
	EventSceneChanged      EventType = "scene-changed"
	EventItemCollected     EventType = "item-collected"
	EventItemRemoved       EventType = "item-removed"
	EventItemsCombined     EventType = "items-combined"
	EventCombinationFailed EventType = "item-combination-failed"
	EventFlagChanged       EventType = "flag-changed"
)

// Event is a notification delivered to observers after a mutation has been
// fully applied. Data carries event-specific fields (item ids, scene keys,
// old/new flag values).
type Event struct {
	Type EventType      `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

type observer struct {
	id int
	fn func(Event)
}

// Subscribe registers an observer. Observers are invoked synchronously, in
// registration order, after the mutation completes; they must not block.
// The returned function removes the observer.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextObserver
	m.nextObserver++
	m.observers = append(m.observers, observer{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, o := range m.observers {
			if o.id == id {
				m.observers = append(m.observers[:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// emit delivers an event to all observers. Callers must not hold m.mu:
// observers are allowed to call back into the manager.
func (m *Manager) emit(evt Event) {
	m.mu.Lock()
	fns := make([]func(Event), 0, len(m.observers))
	for _, o := range m.observers {
		fns = append(fns, o.fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}
