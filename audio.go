package timeline

import "context"

// AudioBuffer is a buffer of stereo audio frames, left channel in index 0 and
// right channel in index 1.
type AudioBuffer [][2]float32

// NoEnd can be passed as the end time to Adapter.Play to play until the end of
// the timeline.
const NoEnd = -1.0

// Adapter is the audio backend the engine delegates sound production to. The
// engine never implements it; a backend (buffer based, streaming or a silent
// test double) provides it.
//
// SetTracks is called whenever the engine's track data changes and must be
// treated as "replace everything", not as a patch. Per-track and master
// volume, mute, solo and pan are runtime state owned by the adapter: the
// engine forwards them but never writes them back to its tracks.
type Adapter interface {
	// Init primes the audio output. It must be safe to call multiple times.
	Init(ctx context.Context) error
	SetTracks(tracks []Track)
	// Play starts playback from start (seconds). If end >= 0, playback stops
	// automatically when it is reached.
	Play(ctx context.Context, start, end float64) error
	Pause()
	// Stop halts playback and resets the playback cursor.
	Stop()
	Seek(t float64)
	// CurrentTime returns the position of the audio clock in seconds.
	CurrentTime() float64
	IsPlaying() bool
	SetMasterVolume(volume float64)
	SetTrackVolume(trackID string, volume float64)
	SetTrackMute(trackID string, muted bool)
	SetTrackSolo(trackID string, soloed bool)
	SetTrackPan(trackID string, pan float64)
	Dispose()
}
