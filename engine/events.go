package engine

import (
	"slices"

	"go.uber.org/zap"
)

type (
	// EventKind names an engine event.
	EventKind string

	// Event is passed to listeners. State is only set for StateChange events
	// and Time only for TimeUpdate events.
	Event struct {
		Kind  EventKind
		State State
		Time  float64
	}

	// Listener receives engine events. A listener that panics is logged and
	// skipped; the remaining listeners still run.
	Listener func(Event)

	// ListenerID identifies a registered listener, for Off.
	ListenerID uint64

	listenerEntry struct {
		id ListenerID
		fn Listener
	}

	emitter struct {
		listeners map[EventKind][]listenerEntry
		nextID    ListenerID
		epoch     uint64 // bumped by clear
		logger    *zap.Logger
	}
)

const (
	StateChange EventKind = "statechange"
	TimeUpdate  EventKind = "timeupdate"
	PlayEvent   EventKind = "play"
	PauseEvent  EventKind = "pause"
	StopEvent   EventKind = "stop"
)

// On registers fn for events of the given kind and returns an id for Off.
func (e *Engine) On(kind EventKind, fn Listener) ListenerID {
	return e.events.on(kind, fn)
}

// Off unregisters a listener. Unknown ids are ignored.
func (e *Engine) Off(kind EventKind, id ListenerID) {
	e.events.off(kind, id)
}

func (m *emitter) on(kind EventKind, fn Listener) ListenerID {
	if m.listeners == nil {
		m.listeners = make(map[EventKind][]listenerEntry)
	}
	m.nextID++
	m.listeners[kind] = append(m.listeners[kind], listenerEntry{id: m.nextID, fn: fn})
	return m.nextID
}

func (m *emitter) off(kind EventKind, id ListenerID) {
	l := m.listeners[kind]
	i := slices.IndexFunc(l, func(e listenerEntry) bool { return e.id == id })
	if i < 0 {
		return
	}
	// build a new slice: an emission in progress iterates the old one
	m.listeners[kind] = slices.Delete(slices.Clone(l), i, i+1)
}

// emit calls every listener registered for kind with an event built by
// makeEvent; each listener gets its own event. If a listener clears the
// emitter (by disposing the engine) the rest are skipped.
func (m *emitter) emit(kind EventKind, makeEvent func() Event) {
	epoch := m.epoch
	for _, l := range m.listeners[kind] {
		if m.epoch != epoch {
			return
		}
		m.call(l, makeEvent())
	}
}

func (m *emitter) call(l listenerEntry, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("event listener panicked",
				zap.String("event", string(ev.Kind)),
				zap.Uint64("listener", uint64(l.id)),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	l.fn(ev)
}

func (m *emitter) clear() {
	m.listeners = nil
	m.epoch++
}

func (e *Engine) emitStateChange() {
	e.events.emit(StateChange, func() Event { return Event{Kind: StateChange, State: e.State()} })
}

func (e *Engine) emitTimeUpdate() {
	t := e.currentTime
	e.events.emit(TimeUpdate, func() Event { return Event{Kind: TimeUpdate, Time: t} })
}

func (e *Engine) emit(kind EventKind) {
	e.events.emit(kind, func() Event { return Event{Kind: kind} })
}
