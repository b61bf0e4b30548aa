package engine

import (
	"github.com/waveline/timeline"
	"go.uber.org/zap"
)

// SetTracks replaces the whole track list with a copy of tracks.
func (e *Engine) SetTracks(tracks []timeline.Track) {
	e.tracks = timeline.Tracks(tracks).Copy()
	if e.tracks.Index(e.selectedTrackID) < 0 {
		e.selectedTrackID = ""
	}
	e.tracksChanged()
}

// AddTrack appends a copy of track.
func (e *Engine) AddTrack(track timeline.Track) {
	e.tracks = append(e.tracks, track.Copy())
	e.tracksChanged()
}

// RemoveTrack removes the track with the given id, clearing the selection if
// it was selected. Returns false, without emitting anything, if there is no
// such track.
func (e *Engine) RemoveTrack(id string) bool {
	i := e.tracks.Index(id)
	if i < 0 {
		e.logger.Debug("remove ignored: no such track", zap.String("track", id))
		return false
	}
	e.tracks = append(e.tracks[:i:i], e.tracks[i+1:]...)
	if e.selectedTrackID == id {
		e.selectedTrackID = ""
	}
	e.tracksChanged()
	return true
}

// SelectTrack sets the selected track id; "" selects nothing. The id is not
// checked against the track list.
func (e *Engine) SelectTrack(id string) {
	e.selectedTrackID = id
	e.emitStateChange()
}

// SetMasterVolume sets the master volume, forwarding it to the adapter.
func (e *Engine) SetMasterVolume(v float64) {
	if v == e.masterVolume {
		return
	}
	e.masterVolume = v
	if e.adapter != nil {
		e.adapter.SetMasterVolume(v)
	}
	e.emitStateChange()
}

// SetTrackVolume forwards a track volume change to the adapter. Track
// volume, mute, solo and pan are runtime audio state owned by the adapter:
// these calls leave the track data untouched and emit nothing.
func (e *Engine) SetTrackVolume(id string, v float64) {
	if e.adapter != nil {
		e.adapter.SetTrackVolume(id, v)
	}
}

// SetTrackMute forwards a mute change to the adapter.
func (e *Engine) SetTrackMute(id string, muted bool) {
	if e.adapter != nil {
		e.adapter.SetTrackMute(id, muted)
	}
}

// SetTrackSolo forwards a solo change to the adapter.
func (e *Engine) SetTrackSolo(id string, soloed bool) {
	if e.adapter != nil {
		e.adapter.SetTrackSolo(id, soloed)
	}
}

// SetTrackPan forwards a pan change to the adapter.
func (e *Engine) SetTrackPan(id string, pan float64) {
	if e.adapter != nil {
		e.adapter.SetTrackPan(id, pan)
	}
}
