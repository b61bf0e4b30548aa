package timeline

import "math"

type (
	// Clip is a contiguous region of one source audio placed on a track. All
	// positions are sample counts at the clip's own SampleRate.
	Clip struct {
		ID    string `yaml:"id" json:"id"`
		Name  string `yaml:"name,omitempty" json:"name,omitempty"`
		Color string `yaml:"color,omitempty" json:"color,omitempty"`

		StartSample           int64 `yaml:"start" json:"startSample"`
		DurationSamples       int64 `yaml:"duration" json:"durationSamples"`
		OffsetSamples         int64 `yaml:"offset,omitempty" json:"offsetSamples"`
		SourceDurationSamples int64 `yaml:"sourceDuration,omitempty" json:"sourceDurationSamples"`
		SampleRate            int   `yaml:"sampleRate,omitempty" json:"sampleRate"`

		FadeIn  *Fade    `yaml:"fadeIn,omitempty" json:"fadeIn,omitempty"`
		FadeOut *Fade    `yaml:"fadeOut,omitempty" json:"fadeOut,omitempty"`
		Gain    *float64 `yaml:"gain,omitempty" json:"gain,omitempty"`

		// Source identifies where the audio came from, e.g. a file path. The
		// engine never interprets it.
		Source string `yaml:"source,omitempty" json:"source,omitempty"`
		// Audio and Waveform are shared references: copies of a clip, and
		// both halves of a split, point to the same data.
		Audio    *AudioBuffer `yaml:"-" json:"-"`
		Waveform any          `yaml:"-" json:"-"`
	}

	// Fade describes a fade-in or fade-out at the edge of a clip.
	Fade struct {
		Duration float64  `yaml:"duration" json:"duration"` // in seconds
		Type     FadeType `yaml:"type,omitempty" json:"type,omitempty"`
	}

	FadeType string
)

const (
	LinearFade      FadeType = "linear"
	ExponentialFade FadeType = "exponential"
	LogarithmicFade FadeType = "logarithmic"
	SCurveFade      FadeType = "sCurve"
)

// DefaultMinClipDuration is the shortest a clip may become by trimming or
// splitting, in seconds.
const DefaultMinClipDuration = 0.1

// MinDurationSamples converts a minimum duration in seconds to samples at the
// given rate.
func MinDurationSamples(seconds float64, sampleRate int) int64 {
	return int64(math.Round(seconds * float64(sampleRate)))
}

// EndSample returns the first sample after the clip.
func (c *Clip) EndSample() int64 {
	return c.StartSample + c.DurationSamples
}

// GainOrUnity returns the clip gain, or 1 if the clip has none.
func (c *Clip) GainOrUnity() float64 {
	if c.Gain == nil {
		return 1
	}
	return *c.Gain
}

// Copy makes a copy of the clip. Fades and gain are copied; the Audio and
// Waveform references are shared.
func (c *Clip) Copy() Clip {
	ret := *c
	if c.FadeIn != nil {
		f := *c.FadeIn
		ret.FadeIn = &f
	}
	if c.FadeOut != nil {
		f := *c.FadeOut
		ret.FadeOut = &f
	}
	if c.Gain != nil {
		g := *c.Gain
		ret.Gain = &g
	}
	return ret
}

// Gain evaluates the fade curve at progress, which goes from 0 (silence) to 1
// (full level). Values outside [0,1] are clamped.
func (f Fade) Gain(progress float64) float64 {
	t := max(0, min(progress, 1))
	switch f.Type {
	case ExponentialFade:
		return t * t
	case LogarithmicFade:
		return math.Sqrt(t)
	case SCurveFade:
		return t * t * (3 - 2*t)
	default:
		return t
	}
}
