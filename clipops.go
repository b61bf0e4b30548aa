package timeline

import "github.com/google/uuid"

// Edge selects which boundary of a clip a trim moves.
type Edge int

const (
	StartEdge Edge = iota
	EndEdge
)

func (e Edge) String() string {
	if e == StartEdge {
		return "start"
	}
	return "end"
}

// ConstrainClipDrag limits a move of clip by delta samples so that it does not
// start before 0, does not move into the previous clip and does not run into
// the next one. sorted holds all clips of the track sorted by StartSample and
// index is the position of clip in it. A side without a neighbour is
// unconstrained.
func ConstrainClipDrag(clip Clip, delta int64, sorted []Clip, index int) int64 {
	if clip.StartSample+delta < 0 {
		delta = -clip.StartSample
	}
	if index > 0 && index-1 < len(sorted) {
		prevEnd := sorted[index-1].EndSample()
		if clip.StartSample+delta < prevEnd {
			delta = prevEnd - clip.StartSample
		}
	}
	if index >= 0 && index+1 < len(sorted) {
		nextStart := sorted[index+1].StartSample
		if clip.EndSample()+delta > nextStart {
			delta = nextStart - clip.EndSample()
		}
	}
	return delta
}

// ConstrainBoundaryTrim limits a trim of one clip edge by delta samples.
//
// Trimming the start edge shifts StartSample and OffsetSamples by delta and
// shrinks DurationSamples by the same amount; the start may not go below 0,
// the offset may not go below 0 and the clip may not cross into the previous
// clip. Trimming the end edge adds delta to DurationSamples; the clip may not
// extend past the end of its source audio or into the next clip. Neither edge
// may shrink the clip below minDuration.
//
// The result never points the other way than delta: a clip that is already
// shorter than minDuration cannot be shrunk further, and a clip that already
// touches a hard bound cannot be extended past it. Both give 0.
func ConstrainBoundaryTrim(clip Clip, delta int64, edge Edge, sorted []Clip, index int, minDuration int64) int64 {
	switch edge {
	case StartEdge:
		if delta < 0 {
			lower := max(-clip.StartSample, -clip.OffsetSamples)
			if index > 0 && index-1 < len(sorted) {
				lower = max(lower, sorted[index-1].EndSample()-clip.StartSample)
			}
			return min(max(delta, lower), 0)
		}
		return max(min(delta, clip.DurationSamples-minDuration), 0)
	default:
		if delta > 0 {
			upper := clip.SourceDurationSamples - clip.OffsetSamples - clip.DurationSamples
			if index >= 0 && index+1 < len(sorted) {
				upper = min(upper, sorted[index+1].StartSample-clip.EndSample())
			}
			return max(min(delta, upper), 0)
		}
		return min(max(delta, minDuration-clip.DurationSamples), 0)
	}
}

// SnapSplitPoint rounds sample down to the nearest whole pixel at the given
// zoom, so that a split always lands on a rendered pixel boundary.
func SnapSplitPoint(sample int64, samplesPerPixel int) int64 {
	if samplesPerPixel <= 0 {
		return sample
	}
	spp := int64(samplesPerPixel)
	q := sample / spp
	if sample%spp != 0 && sample < 0 {
		q--
	}
	return q * spp
}

// CanSplitAt reports whether clip can be split at sample at: the position has
// to be strictly inside the clip and both halves have to be at least
// minDuration long.
func CanSplitAt(clip Clip, at int64, minDuration int64) bool {
	if at <= clip.StartSample || at >= clip.EndSample() {
		return false
	}
	return at-clip.StartSample >= minDuration && clip.EndSample()-at >= minDuration
}

// SplitClip cuts clip in two at timeline sample at. The halves get new ids;
// the left keeps the fade-in, the right keeps the fade-out and both share the
// source audio and waveform data of the original. Check CanSplitAt first.
func SplitClip(clip Clip, at int64) (left, right Clip) {
	leftDuration := at - clip.StartSample
	left = clip.Copy()
	left.ID = uuid.NewString()
	left.DurationSamples = leftDuration
	left.FadeOut = nil

	right = clip.Copy()
	right.ID = uuid.NewString()
	right.StartSample = at
	right.OffsetSamples = clip.OffsetSamples + leftDuration
	right.DurationSamples = clip.DurationSamples - leftDuration
	right.FadeIn = nil

	if clip.Name != "" {
		left.Name = clip.Name + " (1)"
		right.Name = clip.Name + " (2)"
	}
	return left, right
}
