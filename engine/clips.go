package engine

import (
	"math"

	"github.com/waveline/timeline"
	"go.uber.org/zap"
)

// MoveClip moves a clip by delta samples, constrained so it stays at or after
// 0 and does not overlap its neighbours. Unknown ids and moves that end up
// not moving anything are ignored and emit nothing. Returns true if the clip
// moved.
func (e *Engine) MoveClip(trackID, clipID string, delta int64) bool {
	track, i := e.findClip(trackID, clipID)
	if track == nil {
		e.logger.Debug("move ignored: no such clip", zap.String("track", trackID), zap.String("clip", clipID))
		return false
	}
	clip := &track.Clips[i]
	sorted, si := sortedWithIndex(track, clipID)
	delta = timeline.ConstrainClipDrag(*clip, delta, sorted, si)
	if delta == 0 {
		return false
	}
	clip.StartSample += delta
	e.tracksChanged()
	return true
}

// TrimClip moves one edge of a clip by delta samples. Trimming the start edge
// moves the clip start and source offset together; trimming the end edge
// changes the duration only. The trim is constrained by the neighbours, the
// source audio and the minimum clip duration. Returns true if the clip
// changed.
func (e *Engine) TrimClip(trackID, clipID string, edge timeline.Edge, delta int64) bool {
	track, i := e.findClip(trackID, clipID)
	if track == nil {
		e.logger.Debug("trim ignored: no such clip", zap.String("track", trackID), zap.String("clip", clipID))
		return false
	}
	clip := &track.Clips[i]
	sorted, si := sortedWithIndex(track, clipID)
	delta = timeline.ConstrainBoundaryTrim(*clip, delta, edge, sorted, si, e.minDuration(*clip))
	if delta == 0 {
		return false
	}
	if edge == timeline.StartEdge {
		clip.StartSample += delta
		clip.OffsetSamples += delta
		clip.DurationSamples -= delta
	} else {
		clip.DurationSamples += delta
	}
	e.tracksChanged()
	return true
}

// SplitClip cuts a clip in two at timeline sample at. The halves take the
// place of the original in the track's clip list. A position that is not
// strictly inside the clip, or that would leave a half shorter than the
// minimum duration, is ignored. Returns true if the clip was split.
func (e *Engine) SplitClip(trackID, clipID string, at int64) bool {
	track, i := e.findClip(trackID, clipID)
	if track == nil {
		e.logger.Debug("split ignored: no such clip", zap.String("track", trackID), zap.String("clip", clipID))
		return false
	}
	clip := track.Clips[i]
	if !timeline.CanSplitAt(clip, at, e.minDuration(clip)) {
		e.logger.Debug("split ignored: invalid position", zap.String("clip", clipID), zap.Int64("at", at))
		return false
	}
	left, right := timeline.SplitClip(clip, at)
	clips := make([]timeline.Clip, 0, len(track.Clips)+1)
	clips = append(clips, track.Clips[:i]...)
	clips = append(clips, left, right)
	clips = append(clips, track.Clips[i+1:]...)
	track.Clips = clips
	e.tracksChanged()
	return true
}

// SplitClipAtTime splits a clip at a time in seconds, snapped down to the
// pixel boundary of the current zoom level so the cut lands where it is
// drawn.
func (e *Engine) SplitClipAtTime(trackID, clipID string, seconds float64) bool {
	track, i := e.findClip(trackID, clipID)
	if track == nil {
		return false
	}
	rate := track.Clips[i].SampleRate
	if rate <= 0 {
		rate = e.sampleRate
	}
	at := int64(math.Round(seconds * float64(rate)))
	at = timeline.SnapSplitPoint(at, e.zoomLevels[e.zoomIndex])
	return e.SplitClip(trackID, clipID, at)
}

func sortedWithIndex(track *timeline.Track, clipID string) ([]timeline.Clip, int) {
	sorted := track.SortedClips()
	for i := range sorted {
		if sorted[i].ID == clipID {
			return sorted, i
		}
	}
	return sorted, -1
}
