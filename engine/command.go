package engine

import (
	"context"
	"fmt"

	"github.com/waveline/timeline"
)

// Command is a serialisable call of one engine method, as sent by a remote
// client or listed in an edit script. Op names the method in lowerCamelCase;
// the other fields carry the arguments that method takes.
type Command struct {
	Op string `json:"op" yaml:"op"`

	TrackID string `json:"trackId,omitempty" yaml:"track,omitempty"`
	ClipID  string `json:"clipId,omitempty" yaml:"clip,omitempty"`

	Delta  int64  `json:"delta,omitempty" yaml:"delta,omitempty"`   // samples, for moveClip and trimClip
	Edge   string `json:"edge,omitempty" yaml:"edge,omitempty"`     // "start" or "end", for trimClip
	Sample int64  `json:"sample,omitempty" yaml:"sample,omitempty"` // for splitClip

	Time  float64  `json:"time,omitempty" yaml:"time,omitempty"` // seconds, for seek and splitClipAtTime
	Start *float64 `json:"start,omitempty" yaml:"start,omitempty"`
	End   *float64 `json:"end,omitempty" yaml:"end,omitempty"`

	Value           float64 `json:"value,omitempty" yaml:"value,omitempty"` // volume or pan
	Enabled         bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	SamplesPerPixel int     `json:"samplesPerPixel,omitempty" yaml:"samplesPerPixel,omitempty"`

	Track  *timeline.Track `json:"track,omitempty" yaml:"newTrack,omitempty"`
	Tracks timeline.Tracks `json:"tracks,omitempty" yaml:"tracks,omitempty"`
}

// Do executes a command. Commands that are ignored by the engine, e.g. a move
// of an unknown clip, are not errors; only unknown ops and malformed
// arguments are.
func (e *Engine) Do(ctx context.Context, c Command) error {
	switch c.Op {
	case "setTracks":
		e.SetTracks(c.Tracks)
	case "addTrack":
		if c.Track == nil {
			return fmt.Errorf("%w: addTrack needs a track", ErrInvalidArgument)
		}
		e.AddTrack(*c.Track)
	case "removeTrack":
		e.RemoveTrack(c.TrackID)
	case "selectTrack":
		e.SelectTrack(c.TrackID)
	case "moveClip":
		e.MoveClip(c.TrackID, c.ClipID, c.Delta)
	case "trimClip":
		edge, err := parseEdge(c.Edge)
		if err != nil {
			return err
		}
		e.TrimClip(c.TrackID, c.ClipID, edge, c.Delta)
	case "splitClip":
		e.SplitClip(c.TrackID, c.ClipID, c.Sample)
	case "splitClipAtTime":
		e.SplitClipAtTime(c.TrackID, c.ClipID, c.Time)
	case "play":
		switch {
		case c.Start != nil && c.End != nil:
			return e.PlayRange(ctx, *c.Start, *c.End)
		case c.Start != nil:
			return e.PlayFrom(ctx, *c.Start)
		case c.End != nil:
			return e.PlayRange(ctx, e.currentTime, *c.End)
		default:
			return e.Play(ctx)
		}
	case "pause":
		e.Pause()
	case "stop":
		e.Stop()
	case "seek":
		e.Seek(c.Time)
	case "setSelection", "setLoopRegion":
		if c.Start == nil || c.End == nil {
			return fmt.Errorf("%w: %s needs start and end", ErrInvalidArgument, c.Op)
		}
		if c.Op == "setSelection" {
			e.SetSelection(*c.Start, *c.End)
		} else {
			e.SetLoopRegion(*c.Start, *c.End)
		}
	case "setLoopEnabled":
		e.SetLoopEnabled(c.Enabled)
	case "zoomIn":
		e.ZoomIn()
	case "zoomOut":
		e.ZoomOut()
	case "setZoomLevel":
		e.SetZoomLevel(c.SamplesPerPixel)
	case "setMasterVolume":
		e.SetMasterVolume(c.Value)
	case "setTrackVolume":
		e.SetTrackVolume(c.TrackID, c.Value)
	case "setTrackMute":
		e.SetTrackMute(c.TrackID, c.Enabled)
	case "setTrackSolo":
		e.SetTrackSolo(c.TrackID, c.Enabled)
	case "setTrackPan":
		e.SetTrackPan(c.TrackID, c.Value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Op)
	}
	return nil
}

func parseEdge(s string) (timeline.Edge, error) {
	switch s {
	case "start":
		return timeline.StartEdge, nil
	case "end":
		return timeline.EndEdge, nil
	}
	return 0, fmt.Errorf("%w: edge %q", ErrInvalidArgument, s)
}
