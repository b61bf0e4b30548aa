package engine

import "github.com/waveline/timeline"

// ZoomIn steps to the previous, more detailed zoom level. Returns false at
// the most detailed level.
func (e *Engine) ZoomIn() bool {
	return e.setZoomIndex(e.zoomIndex - 1)
}

// ZoomOut steps to the next, less detailed zoom level. Returns false at the
// least detailed level.
func (e *Engine) ZoomOut() bool {
	return e.setZoomIndex(e.zoomIndex + 1)
}

// SetZoomLevel jumps to the zoom level closest to samplesPerPixel.
func (e *Engine) SetZoomLevel(samplesPerPixel int) bool {
	return e.setZoomIndex(timeline.NearestZoomIndex(samplesPerPixel, e.zoomLevels))
}

// SamplesPerPixel returns the current zoom level.
func (e *Engine) SamplesPerPixel() int {
	return e.zoomLevels[e.zoomIndex]
}

func (e *Engine) setZoomIndex(i int) bool {
	if i < 0 || i >= len(e.zoomLevels) || i == e.zoomIndex {
		return false
	}
	e.zoomIndex = i
	e.emitStateChange()
	return true
}

// SetSelection sets the selected time range in seconds. The bounds may be
// given in either order.
func (e *Engine) SetSelection(a, b float64) {
	e.selectionStart, e.selectionEnd = min(a, b), max(a, b)
	e.emitStateChange()
}

// SetLoopRegion sets the loop range in seconds. The bounds may be given in
// either order.
func (e *Engine) SetLoopRegion(a, b float64) {
	e.loopStart, e.loopEnd = min(a, b), max(a, b)
	e.emitStateChange()
}

// SetLoopEnabled turns looping of the loop region on or off.
func (e *Engine) SetLoopEnabled(enabled bool) {
	e.loopEnabled = enabled
	e.emitStateChange()
}
