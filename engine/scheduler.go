package engine

import (
	"slices"
	"sync"
	"time"
)

// Scheduler is the host's per-frame callback primitive. RequestFrame arranges
// for fn to be called once on the next frame and returns a function that
// cancels the request.
type Scheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(fn func()) (cancel func())

func (f SchedulerFunc) RequestFrame(fn func()) func() { return f(fn) }

// FrameClock is a Scheduler driven by a ticker. It never calls the requested
// functions itself: on every tick the callbacks that are due are bundled into
// one function and sent on the Frames channel, and the goroutine owning the
// engine runs it:
//
//	for {
//		select {
//		case frame := <-clock.Frames():
//			frame()
//		case <-ctx.Done():
//			return
//		}
//	}
//
// A callback that was already handed out when its request was cancelled will
// still run; the engine ignores such stale frames.
type FrameClock struct {
	frames    chan func()
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	pending map[uint64]func()
	nextID  uint64
}

// DefaultFrameInterval is roughly one display frame at 60 Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// NewFrameClock starts a frame clock ticking every interval. A non-positive
// interval means DefaultFrameInterval. Close it when done.
func NewFrameClock(interval time.Duration) *FrameClock {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	c := &FrameClock{
		frames:  make(chan func()),
		done:    make(chan struct{}),
		pending: make(map[uint64]func()),
	}
	go c.run(interval)
	return c
}

// Frames returns the channel the due frame callbacks arrive on.
func (c *FrameClock) Frames() <-chan func() {
	return c.frames
}

func (c *FrameClock) RequestFrame(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.pending[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}
}

// Close stops the clock. Pending requests are dropped.
func (c *FrameClock) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *FrameClock) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}
		due := c.takeDue()
		if len(due) == 0 {
			continue
		}
		frame := func() {
			for _, fn := range due {
				fn()
			}
		}
		select {
		case c.frames <- frame:
		case <-c.done:
			return
		}
	}
}

func (c *FrameClock) takeDue() []func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	ret := make([]func(), len(ids))
	for i, id := range ids {
		ret[i] = c.pending[id]
		delete(c.pending, id)
	}
	return ret
}
