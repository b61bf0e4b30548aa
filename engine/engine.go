package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/waveline/timeline"
	"go.uber.org/zap"
)

// Engine is the authoritative model of a timeline: tracks and clips, playback
// position, selection, loop region and zoom. See the package documentation.
type Engine struct {
	adapter   timeline.Adapter
	scheduler Scheduler
	logger    *zap.Logger
	events    emitter

	sampleRate             int
	zoomLevels             []int
	zoomIndex              int
	initialSamplesPerPixel int
	minClipDuration        float64

	tracks          timeline.Tracks
	tracksVersion   uint64
	selectedTrackID string
	selectionStart  float64
	selectionEnd    float64
	loopStart       float64
	loopEnd         float64
	loopEnabled     bool
	masterVolume    float64

	currentTime float64
	playing     bool
	playEnd     float64 // timeline.NoEnd when playing to the end
	playGen     uint64  // bumped by anything that ends playback
	cancelFrame func()

	disposed bool
}

// New creates an engine. It fails with ErrEmptyZoomLevels if the zoom table
// given with WithZoomLevels is empty.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:                 zap.NewNop(),
		sampleRate:             DefaultSampleRate,
		zoomLevels:             slices.Clone(timeline.DefaultZoomLevels),
		initialSamplesPerPixel: DefaultSamplesPerPixel,
		minClipDuration:        timeline.DefaultMinClipDuration,
		masterVolume:           1,
		playEnd:                timeline.NoEnd,
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.zoomLevels) == 0 {
		return nil, ErrEmptyZoomLevels
	}
	e.zoomIndex = timeline.NearestZoomIndex(e.initialSamplesPerPixel, e.zoomLevels)
	e.events.logger = e.logger
	return e, nil
}

// SampleRate returns the sample rate the engine converts seconds with.
func (e *Engine) SampleRate() int { return e.sampleRate }

// Adapter returns the audio backend, or nil in state-only mode.
func (e *Engine) Adapter() timeline.Adapter { return e.adapter }

// Init primes the audio backend. Without an adapter it does nothing.
func (e *Engine) Init(ctx context.Context) error {
	if e.disposed {
		return ErrDisposed
	}
	if e.adapter == nil {
		return nil
	}
	if err := e.adapter.Init(ctx); err != nil {
		return fmt.Errorf("adapter init: %w", err)
	}
	return nil
}

// Dispose stops the time-update loop, disposes the adapter and removes all
// listeners. The engine keeps working in state-only mode afterwards, but Play
// and Init fail with ErrDisposed. Calling Dispose again does nothing.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.playGen++
	e.stopFrameLoop()
	e.playing = false
	if e.adapter != nil {
		e.adapter.Dispose()
		e.adapter = nil
	}
	e.events.clear()
}

// tracksChanged is called after every mutation of track or clip data.
func (e *Engine) tracksChanged() {
	e.tracksVersion++
	if e.adapter != nil {
		e.adapter.SetTracks(e.tracks.Copy())
	}
	e.emitStateChange()
}

func (e *Engine) findClip(trackID, clipID string) (track *timeline.Track, index int) {
	ti := e.tracks.Index(trackID)
	if ti < 0 {
		return nil, -1
	}
	track = &e.tracks[ti]
	index = track.ClipIndex(clipID)
	if index < 0 {
		return nil, -1
	}
	return track, index
}

func (e *Engine) minDuration(c timeline.Clip) int64 {
	rate := c.SampleRate
	if rate <= 0 {
		rate = e.sampleRate
	}
	return timeline.MinDurationSamples(e.minClipDuration, rate)
}

func (e *Engine) duration() float64 {
	return timeline.Duration(e.tracks)
}
