// Package project reads and writes timeline project files: YAML documents
// listing the tracks of a timeline and the clips on them, with clip audio
// kept next to the project as raw float32 stereo files.
//
//	sampleRate: 44100
//	tracks:
//	  - id: drums
//	    volume: 0.8
//	    clips:
//	      - source: drums.raw
//	        start: 0
//	        fadeIn: {duration: 0.05, type: sCurve}
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/waveline/timeline"
	"gopkg.in/yaml.v3"
)

// DefaultSampleRate is used when a project file does not name one.
const DefaultSampleRate = 44100

var (
	// ErrInvalidClip is returned for clips whose positions are out of range.
	ErrInvalidClip = errors.New("invalid clip")
	// ErrOverlap is returned when two clips on one track overlap.
	ErrOverlap = errors.New("overlapping clips")
	// ErrDuplicateID is returned when two tracks, or two clips, share an id.
	ErrDuplicateID = errors.New("duplicate id")
)

type (
	// Project is a loaded project file.
	Project struct {
		Path       string
		SampleRate int
		Tracks     timeline.Tracks
	}

	file struct {
		SampleRate int         `yaml:"sampleRate"`
		Tracks     []trackFile `yaml:"tracks"`
	}

	// trackFile differs from timeline.Track only in that a missing volume
	// means full volume.
	trackFile struct {
		ID     string          `yaml:"id,omitempty"`
		Name   string          `yaml:"name,omitempty"`
		Muted  bool            `yaml:"muted,omitempty"`
		Soloed bool            `yaml:"soloed,omitempty"`
		Volume *float64        `yaml:"volume,omitempty"`
		Pan    float64         `yaml:"pan,omitempty"`
		Clips  []timeline.Clip `yaml:"clips"`
	}
)

// Load reads a project file and the audio of its clips. Sources are resolved
// relative to the directory of the project file. Clips shorter than
// minDuration seconds are rejected; 0 disables that check.
func Load(path string, minDuration float64) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read project: %w", err)
	}
	p, err := Parse(data, filepath.Dir(path), minDuration)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Path = path
	return p, nil
}

// Parse decodes a project document. dir is where clip sources are looked up.
// minDuration is as for Load.
func Parse(data []byte, dir string, minDuration float64) (*Project, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("could not parse project: %w", err)
	}
	if f.SampleRate <= 0 {
		f.SampleRate = DefaultSampleRate
	}
	p := &Project{SampleRate: f.SampleRate, Tracks: make(timeline.Tracks, 0, len(f.Tracks))}
	sources := newSourceCache(dir)
	for _, tf := range f.Tracks {
		t := timeline.Track{ID: tf.ID, Name: tf.Name, Muted: tf.Muted, Soloed: tf.Soloed, Volume: 1, Pan: tf.Pan, Clips: tf.Clips}
		if tf.Volume != nil {
			t.Volume = *tf.Volume
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		for i := range t.Clips {
			if err := fillClip(&t.Clips[i], f.SampleRate, sources); err != nil {
				return nil, fmt.Errorf("track %s: %w", t.ID, err)
			}
		}
		p.Tracks = append(p.Tracks, t)
	}
	if err := Validate(p.Tracks, minDuration); err != nil {
		return nil, err
	}
	return p, nil
}

func fillClip(c *timeline.Clip, rate int, sources *sourceCache) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.SampleRate <= 0 {
		c.SampleRate = rate
	}
	if c.Source != "" {
		audio, err := sources.get(c.Source)
		if err != nil {
			return fmt.Errorf("clip %s: %w", c.ID, err)
		}
		c.Audio = audio
		if c.SourceDurationSamples == 0 {
			c.SourceDurationSamples = int64(len(*audio))
		}
	}
	if c.DurationSamples == 0 {
		c.DurationSamples = c.SourceDurationSamples - c.OffsetSamples
	}
	return nil
}

// Validate checks the clip invariants of tracks: every clip lasts at least
// minDuration seconds at its own sample rate and fits in its source audio, and
// no two clips on a track overlap.
func Validate(tracks []timeline.Track, minDuration float64) error {
	trackIDs := map[string]bool{}
	for _, t := range tracks {
		if trackIDs[t.ID] {
			return fmt.Errorf("%w: track %s", ErrDuplicateID, t.ID)
		}
		trackIDs[t.ID] = true
		clipIDs := map[string]bool{}
		for _, c := range t.Clips {
			if clipIDs[c.ID] {
				return fmt.Errorf("%w: clip %s on track %s", ErrDuplicateID, c.ID, t.ID)
			}
			clipIDs[c.ID] = true
			switch {
			case c.DurationSamples <= 0:
				return fmt.Errorf("%w: clip %s has no duration", ErrInvalidClip, c.ID)
			case c.DurationSamples < timeline.MinDurationSamples(minDuration, c.SampleRate):
				return fmt.Errorf("%w: clip %s is shorter than %gs", ErrInvalidClip, c.ID, minDuration)
			case c.StartSample < 0 || c.OffsetSamples < 0:
				return fmt.Errorf("%w: clip %s starts before 0", ErrInvalidClip, c.ID)
			case c.OffsetSamples+c.DurationSamples > c.SourceDurationSamples:
				return fmt.Errorf("%w: clip %s runs past the end of its source (%d > %d)",
					ErrInvalidClip, c.ID, c.OffsetSamples+c.DurationSamples, c.SourceDurationSamples)
			}
		}
		sorted := t.SortedClips()
		for i := 1; i < len(sorted); i++ {
			if sorted[i-1].EndSample() > sorted[i].StartSample {
				return fmt.Errorf("%w: %s and %s on track %s", ErrOverlap, sorted[i-1].ID, sorted[i].ID, t.ID)
			}
		}
	}
	return nil
}

// Marshal encodes the project as YAML. Clip audio is not written; sources
// keep pointing to their files.
func (p *Project) Marshal() ([]byte, error) {
	f := file{SampleRate: p.SampleRate, Tracks: make([]trackFile, len(p.Tracks))}
	for i, t := range p.Tracks {
		v := t.Volume
		f.Tracks[i] = trackFile{ID: t.ID, Name: t.Name, Muted: t.Muted, Soloed: t.Soloed, Volume: &v, Pan: t.Pan, Clips: t.Clips}
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("could not marshal project: %w", err)
	}
	return data, nil
}

// Save writes the project to path.
func (p *Project) Save(path string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write project: %w", err)
	}
	return nil
}

// sourceCache loads every source file once, so clips cut from the same file
// share one buffer.
type sourceCache struct {
	dir    string
	loaded map[string]*timeline.AudioBuffer
}

func newSourceCache(dir string) *sourceCache {
	return &sourceCache{dir: dir, loaded: map[string]*timeline.AudioBuffer{}}
}

func (s *sourceCache) get(source string) (*timeline.AudioBuffer, error) {
	path := source
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}
	if b, ok := s.loaded[path]; ok {
		return b, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read source: %w", err)
	}
	b, err := timeline.ReadRaw(data)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", source, err)
	}
	s.loaded[path] = &b
	return &b, nil
}
