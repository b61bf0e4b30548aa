package engine

import (
	"slices"

	"github.com/waveline/timeline"
	"go.uber.org/zap"
)

// Default configuration values.
const (
	DefaultSampleRate      = 44100
	DefaultSamplesPerPixel = 1024
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithAdapter sets the audio backend. Without one the engine runs in
// state-only mode.
func WithAdapter(a timeline.Adapter) Option {
	return func(e *Engine) {
		e.adapter = a
	}
}

// WithSampleRate sets the sample rate used to convert between seconds and
// samples.
func WithSampleRate(rate int) Option {
	return func(e *Engine) {
		if rate > 0 {
			e.sampleRate = rate
		}
	}
}

// WithSamplesPerPixel sets the initial zoom. The value is snapped to the
// nearest entry of the zoom table.
func WithSamplesPerPixel(spp int) Option {
	return func(e *Engine) {
		e.initialSamplesPerPixel = spp
	}
}

// WithZoomLevels replaces the zoom table. An empty table makes New fail.
func WithZoomLevels(levels []int) Option {
	return func(e *Engine) {
		e.zoomLevels = slices.Clone(levels)
	}
}

// WithMinClipDuration sets, in seconds, how short trimming and splitting may
// make a clip.
func WithMinClipDuration(seconds float64) Option {
	return func(e *Engine) {
		if seconds >= 0 {
			e.minClipDuration = seconds
		}
	}
}

// WithScheduler sets the per-frame scheduler driving the time-update loop.
// Without one the loop does nothing, which suits headless use.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
