// Package timeline contains the data model of a multitrack timeline (tracks
// holding clips at sample positions), the pure geometry used to edit it and
// the Adapter contract for audio backends. The stateful engine built on top
// of these lives in the engine package.
package timeline

import "math"

// DefaultZoomLevels is the default zoom table, in samples per pixel.
var DefaultZoomLevels = []int{256, 512, 1024, 2048, 4096, 8192}

// ZoomScroll describes a zoom change of a scrolled viewport, for
// ZoomScrollPosition.
type ZoomScroll struct {
	OldSamplesPerPixel int
	NewSamplesPerPixel int
	ScrollLeft         float64 // current scroll offset in pixels
	ViewportWidth      float64 // in pixels, including ControlsWidth
	ControlsWidth      float64 // fixed-width side panel left of the timeline
}

// Duration returns the length of the timeline in seconds: the latest clip end
// over all tracks. An empty timeline lasts 0 seconds.
func Duration(tracks []Track) float64 {
	ret := 0.0
	for _, t := range tracks {
		for _, c := range t.Clips {
			if c.SampleRate <= 0 {
				continue
			}
			ret = max(ret, float64(c.EndSample())/float64(c.SampleRate))
		}
	}
	return ret
}

// NearestZoomIndex returns the index of the zoom level closest to target. On a
// tie the lower index wins. Returns -1 for an empty table.
func NearestZoomIndex(target int, levels []int) int {
	ret := -1
	best := math.MaxInt
	for i, l := range levels {
		d := l - target
		if d < 0 {
			d = -d
		}
		if d < best {
			best = d
			ret = i
		}
	}
	return ret
}

// ZoomScrollPosition returns the scroll offset that keeps the timeline instant
// at the centre of the viewport in place across the zoom change. The result is
// never negative.
func ZoomScrollPosition(z ZoomScroll) float64 {
	if z.OldSamplesPerPixel <= 0 || z.NewSamplesPerPixel <= 0 {
		return max(z.ScrollLeft, 0)
	}
	center := z.ScrollLeft + z.ViewportWidth/2
	// the centre instant, as a sample position
	centerSample := max(center-z.ControlsWidth, 0) * float64(z.OldSamplesPerPixel)
	newCenter := centerSample/float64(z.NewSamplesPerPixel) + z.ControlsWidth
	return max(newCenter-z.ViewportWidth/2, 0)
}

// ClampSeekPosition clamps t to [0, duration].
func ClampSeekPosition(t, duration float64) float64 {
	return max(0, min(t, duration))
}
