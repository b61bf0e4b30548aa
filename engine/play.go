package engine

import (
	"context"
	"fmt"

	"github.com/waveline/timeline"
	"go.uber.org/zap"
)

// Play starts playback from the current time. The frame loop that polls the
// adapter clock and emits timeupdate only runs when both an adapter and a
// scheduler are attached; without an adapter playback is state only and the
// time stays where Play put it until Seek, Pause or Stop.
func (e *Engine) Play(ctx context.Context) error {
	return e.play(ctx, e.currentTime, timeline.NoEnd)
}

// PlayFrom starts playback from start seconds, clamped to the timeline.
func (e *Engine) PlayFrom(ctx context.Context, start float64) error {
	return e.play(ctx, start, timeline.NoEnd)
}

// PlayRange plays from start to end seconds; the adapter stops by itself at
// end.
func (e *Engine) PlayRange(ctx context.Context, start, end float64) error {
	return e.play(ctx, start, end)
}

func (e *Engine) play(ctx context.Context, start, end float64) error {
	if e.disposed {
		return ErrDisposed
	}
	start = timeline.ClampSeekPosition(start, e.duration())
	prevTime, wasPlaying := e.currentTime, e.playing
	e.currentTime = start
	e.playGen++
	gen := e.playGen
	if e.adapter != nil {
		if err := e.adapter.Play(ctx, start, end); err != nil {
			e.logger.Warn("adapter play failed", zap.Float64("start", start), zap.Error(err))
			if gen == e.playGen {
				e.stopFrameLoop()
				e.currentTime = prevTime
				e.playing = false
				if wasPlaying {
					e.emitStateChange()
				}
			}
			return fmt.Errorf("adapter play: %w", err)
		}
		if gen != e.playGen {
			// stopped, paused or restarted while the adapter was starting up
			return nil
		}
	}
	e.playing = true
	e.playEnd = end
	e.stopFrameLoop()
	e.startFrameLoop(gen)
	e.emit(PlayEvent)
	e.emitStateChange()
	return nil
}

// Pause stops playback, keeping the position the adapter reached.
func (e *Engine) Pause() {
	e.playGen++
	e.stopFrameLoop()
	if e.adapter != nil {
		e.adapter.Pause()
		e.currentTime = e.adapter.CurrentTime()
	}
	e.playing = false
	e.emit(PauseEvent)
	e.emitStateChange()
}

// Stop stops playback and rewinds to 0.
func (e *Engine) Stop() {
	e.playGen++
	e.stopFrameLoop()
	e.currentTime = 0
	e.playing = false
	if e.adapter != nil {
		e.adapter.Stop()
	}
	e.emit(StopEvent)
	e.emitStateChange()
}

// Seek moves the playback position to t seconds, clamped to the timeline.
func (e *Engine) Seek(t float64) {
	t = timeline.ClampSeekPosition(t, e.duration())
	e.currentTime = t
	if e.adapter != nil {
		e.adapter.Seek(t)
	}
	e.emitStateChange()
}

func (e *Engine) startFrameLoop(gen uint64) {
	if e.scheduler == nil || e.adapter == nil {
		return
	}
	var tick func()
	tick = func() {
		if gen != e.playGen || !e.playing {
			return
		}
		e.cancelFrame = nil
		e.frame()
		if gen == e.playGen && e.playing {
			e.cancelFrame = e.scheduler.RequestFrame(tick)
		}
	}
	e.cancelFrame = e.scheduler.RequestFrame(tick)
}

func (e *Engine) stopFrameLoop() {
	if e.cancelFrame != nil {
		e.cancelFrame()
		e.cancelFrame = nil
	}
}

// frame polls the adapter clock once: it wraps around the loop region, emits
// timeupdate and notices when the adapter has run out of audio.
func (e *Engine) frame() {
	if e.adapter == nil {
		return
	}
	t := e.adapter.CurrentTime()
	if e.loopEnabled && e.loopEnd > e.loopStart && t >= e.loopEnd {
		e.adapter.Seek(e.loopStart)
		t = e.loopStart
	}
	e.currentTime = t
	e.emitTimeUpdate()
	if !e.adapter.IsPlaying() {
		e.playGen++
		e.stopFrameLoop()
		e.playing = false
		e.emit(PauseEvent)
		e.emitStateChange()
	}
}
