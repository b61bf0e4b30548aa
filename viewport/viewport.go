// Package viewport has the geometry a renderer needs to virtualise a long
// horizontally scrolled timeline: which region is worth drawing, which
// fixed-width chunks fall inside it and when a scroll moved far enough to
// bother recomputing.
package viewport

import "math"

const (
	// DefaultOverscan is how many viewport widths are rendered beyond each
	// side of the visible area.
	DefaultOverscan = 1.5
	// DefaultScrollThreshold is the scroll distance in pixels below which a
	// renderer can keep its current chunks.
	DefaultScrollThreshold = 100.0
)

// Bounds returns the pixel range to render for a viewport scrolled to
// scrollLeft: the visible area extended by overscan*containerWidth on both
// sides. start is never negative.
func Bounds(scrollLeft, containerWidth, overscan float64) (start, end float64) {
	buffer := containerWidth * max(overscan, 0)
	start = max(scrollLeft-buffer, 0)
	end = scrollLeft + containerWidth + buffer
	return start, end
}

// ChunkIndices returns the indices of the chunkWidth wide chunks of a
// totalWidth wide canvas that intersect [start, end). The last chunk may be
// narrower than chunkWidth.
func ChunkIndices(totalWidth, chunkWidth int, start, end float64) []int {
	if totalWidth <= 0 || chunkWidth <= 0 || end <= start {
		return nil
	}
	count := (totalWidth + chunkWidth - 1) / chunkWidth
	first := max(int(math.Floor(start))/chunkWidth, 0)
	var ret []int
	for i := first; i < count; i++ {
		chunkStart := float64(i * chunkWidth)
		chunkEnd := float64(min((i+1)*chunkWidth, totalWidth))
		if chunkStart >= end {
			break
		}
		if chunkEnd > start {
			ret = append(ret, i)
		}
	}
	return ret
}

// ShouldUpdate reports whether the scroll moved by at least threshold pixels.
func ShouldUpdate(oldScroll, newScroll, threshold float64) bool {
	return math.Abs(newScroll-oldScroll) >= threshold
}
