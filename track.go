package timeline

import (
	"cmp"
	"slices"
)

// Track is a named collection of clips plus playback attributes. The order of
// Clips carries no meaning; use SortedClips when ordering matters.
type Track struct {
	ID     string  `yaml:"id" json:"id"`
	Name   string  `yaml:"name,omitempty" json:"name,omitempty"`
	Muted  bool    `yaml:"muted,omitempty" json:"muted"`
	Soloed bool    `yaml:"soloed,omitempty" json:"soloed"`
	Volume float64 `yaml:"volume" json:"volume"` // linear, 0..1
	Pan    float64 `yaml:"pan,omitempty" json:"pan"`
	Clips  []Clip  `yaml:"clips" json:"clips"`
}

// Tracks is a list of tracks, e.g. the contents of a timeline.
type Tracks []Track

// Copy makes a deep copy of a Track.
func (t *Track) Copy() Track {
	ret := *t
	if t.Clips != nil {
		ret.Clips = make([]Clip, len(t.Clips))
		for i := range t.Clips {
			ret.Clips[i] = t.Clips[i].Copy()
		}
	}
	return ret
}

// ClipIndex returns the index of the clip with the given id in t.Clips, or -1.
func (t *Track) ClipIndex(id string) int {
	return slices.IndexFunc(t.Clips, func(c Clip) bool { return c.ID == id })
}

// SortedClips returns a copy of the clips sorted by StartSample. Clips
// starting at the same sample keep their relative order.
func (t *Track) SortedClips() []Clip {
	ret := slices.Clone(t.Clips)
	slices.SortStableFunc(ret, func(a, b Clip) int { return cmp.Compare(a.StartSample, b.StartSample) })
	return ret
}

// Copy makes a deep copy of the tracks.
func (t Tracks) Copy() Tracks {
	if t == nil {
		return nil
	}
	ret := make(Tracks, len(t))
	for i := range t {
		ret[i] = t[i].Copy()
	}
	return ret
}

// Index returns the index of the track with the given id, or -1.
func (t Tracks) Index(id string) int {
	return slices.IndexFunc(t, func(tr Track) bool { return tr.ID == id })
}
