package server

import (
	"github.com/waveline/timeline/engine"
)

type (
	// Message is what the server pushes to websocket clients.
	Message struct {
		Type  string        `json:"type"` // state, time, play, pause, stop or error
		State *engine.State `json:"state,omitempty"`
		Time  *float64      `json:"time,omitempty"`
		Error string        `json:"error,omitempty"`
	}

	// broker fans engine events out to the connected clients. It is only
	// touched from the goroutine running the engine.
	broker struct {
		clients map[*client]struct{}
		dropped func(c *client, m Message)
	}
)

// clientBufferSize is how many messages may queue up for a slow client
// before further messages to it are dropped.
const clientBufferSize = 64

func newBroker(dropped func(c *client, m Message)) *broker {
	return &broker{clients: map[*client]struct{}{}, dropped: dropped}
}

// listen registers engine listeners that broadcast every event.
func (b *broker) listen(e *engine.Engine) {
	e.On(engine.StateChange, func(ev engine.Event) {
		b.broadcast(Message{Type: "state", State: &ev.State})
	})
	e.On(engine.TimeUpdate, func(ev engine.Event) {
		t := ev.Time
		b.broadcast(Message{Type: "time", Time: &t})
	})
	for _, k := range []engine.EventKind{engine.PlayEvent, engine.PauseEvent, engine.StopEvent} {
		e.On(k, func(ev engine.Event) {
			b.broadcast(Message{Type: string(ev.Kind)})
		})
	}
}

func (b *broker) add(c *client) {
	b.clients[c] = struct{}{}
}

func (b *broker) remove(c *client) {
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
}

func (b *broker) closeAll() {
	for c := range b.clients {
		b.remove(c)
	}
}

func (b *broker) broadcast(m Message) {
	for c := range b.clients {
		b.send(c, m)
	}
}

func (b *broker) send(c *client, m Message) {
	if !TrySend(c.send, m) && b.dropped != nil {
		b.dropped(c, m)
	}
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent,
// false otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}
