package engine

import "github.com/waveline/timeline"

// State is a snapshot of the engine. Every State handed out is an independent
// deep copy; changing it has no effect on the engine.
type State struct {
	Tracks timeline.Tracks `json:"tracks"`
	// TracksVersion increments whenever track or clip data changes, and only
	// then. Consumers can compare it to skip work when only cosmetic state
	// (selection, zoom, volume) changed.
	TracksVersion uint64 `json:"tracksVersion"`

	Duration    float64 `json:"duration"`
	CurrentTime float64 `json:"currentTime"`
	Playing     bool    `json:"isPlaying"`

	SamplesPerPixel int  `json:"samplesPerPixel"`
	ZoomIndex       int  `json:"zoomIndex"`
	CanZoomIn       bool `json:"canZoomIn"`
	CanZoomOut      bool `json:"canZoomOut"`

	SelectedTrackID string  `json:"selectedTrackId,omitempty"`
	SelectionStart  float64 `json:"selectionStart"`
	SelectionEnd    float64 `json:"selectionEnd"`
	LoopStart       float64 `json:"loopStart"`
	LoopEnd         float64 `json:"loopEnd"`
	LoopEnabled     bool    `json:"isLoopEnabled"`
	MasterVolume    float64 `json:"masterVolume"`
}

// State returns a snapshot of the current state.
func (e *Engine) State() State {
	return State{
		Tracks:          e.tracks.Copy(),
		TracksVersion:   e.tracksVersion,
		Duration:        timeline.Duration(e.tracks),
		CurrentTime:     e.currentTime,
		Playing:         e.playing,
		SamplesPerPixel: e.zoomLevels[e.zoomIndex],
		ZoomIndex:       e.zoomIndex,
		CanZoomIn:       e.zoomIndex > 0,
		CanZoomOut:      e.zoomIndex < len(e.zoomLevels)-1,
		SelectedTrackID: e.selectedTrackID,
		SelectionStart:  e.selectionStart,
		SelectionEnd:    e.selectionEnd,
		LoopStart:       e.loopStart,
		LoopEnd:         e.loopEnd,
		LoopEnabled:     e.loopEnabled,
		MasterVolume:    e.masterVolume,
	}
}
