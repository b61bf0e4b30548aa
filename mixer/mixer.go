// Package mixer renders the tracks of a timeline into stereo float frames. It
// is the sound-producing half of an audio backend: the oto adapter pulls
// frames from a Mixer on the audio goroutine while the engine pushes track
// and control changes from its own.
package mixer

import (
	"math"
	"sync"

	"github.com/viterin/vek/vek32"
	"github.com/waveline/timeline"
)

type (
	// Mixer mixes every sounding clip of a track list into one stereo bus.
	// All positions are frames at the mixer's sample rate; clip positions are
	// taken as is, whatever rate the clip was recorded at. It is safe for
	// concurrent use.
	Mixer struct {
		mu         sync.Mutex
		sampleRate int
		tracks     timeline.Tracks
		controls   map[string]Controls
		master     float32
		pos        int64
		end        int64
		length     int64

		busL, busR []float32
		tmpL, tmpR []float32
		env        []float32
	}

	// Controls are the runtime audio parameters of one track.
	Controls struct {
		Volume float64
		Pan    float64
		Muted  bool
		Soloed bool
	}
)

// New returns an empty mixer running at sampleRate.
func New(sampleRate int) *Mixer {
	return &Mixer{
		sampleRate: sampleRate,
		controls:   map[string]Controls{},
		master:     1,
		end:        -1,
	}
}

// SampleRate returns the rate the mixer was created with.
func (m *Mixer) SampleRate() int { return m.sampleRate }

// SetTracks replaces the track list. Tracks that were already known keep
// their runtime controls; new tracks start from their Volume, Pan, Muted and
// Soloed attributes.
func (m *Mixer) SetTracks(tracks []timeline.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = timeline.Tracks(tracks).Copy()
	controls := make(map[string]Controls, len(tracks))
	m.length = 0
	for _, t := range m.tracks {
		if c, ok := m.controls[t.ID]; ok {
			controls[t.ID] = c
		} else {
			controls[t.ID] = Controls{Volume: t.Volume, Pan: t.Pan, Muted: t.Muted, Soloed: t.Soloed}
		}
		for _, c := range t.Clips {
			m.length = max(m.length, c.EndSample())
		}
	}
	m.controls = controls
}

// Controls returns the runtime controls of a track.
func (m *Mixer) Controls(id string) (Controls, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controls[id]
	return c, ok
}

func (m *Mixer) SetTrackVolume(id string, v float64) {
	m.update(id, func(c *Controls) { c.Volume = v })
}

func (m *Mixer) SetTrackMute(id string, muted bool) {
	m.update(id, func(c *Controls) { c.Muted = muted })
}

func (m *Mixer) SetTrackSolo(id string, soloed bool) {
	m.update(id, func(c *Controls) { c.Soloed = soloed })
}

// SetTrackPan sets the pan of a track, -1 being hard left and 1 hard right.
func (m *Mixer) SetTrackPan(id string, pan float64) {
	m.update(id, func(c *Controls) { c.Pan = max(-1, min(pan, 1)) })
}

func (m *Mixer) SetMasterVolume(v float64) {
	m.mu.Lock()
	m.master = float32(v)
	m.mu.Unlock()
}

func (m *Mixer) update(id string, f func(c *Controls)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controls[id]
	if !ok {
		return
	}
	f(&c)
	m.controls[id] = c
}

// Seek moves the render cursor to frame.
func (m *Mixer) Seek(frame int64) {
	m.mu.Lock()
	m.pos = max(frame, 0)
	m.mu.Unlock()
}

// Position returns the frame the next Render starts at.
func (m *Mixer) Position() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// SetEnd sets the frame rendering stops at; a negative value means the end
// of the last clip.
func (m *Mixer) SetEnd(frame int64) {
	m.mu.Lock()
	m.end = frame
	m.mu.Unlock()
}

// Length returns the end of the last clip, in frames.
func (m *Mixer) Length() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.length
}

// Done reports whether the cursor has reached the end.
func (m *Mixer) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos >= m.stop()
}

func (m *Mixer) stop() int64 {
	if m.end < 0 {
		return m.length
	}
	return m.end
}

// Render mixes len(buf) frames starting at the cursor into buf and advances
// the cursor. It returns how many frames lay before the end; the rest of buf
// is silence.
func (m *Mixer) Render(buf timeline.AudioBuffer) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(buf)
	n := int(max(min(int64(len(buf)), m.stop()-m.pos), 0))
	if n == 0 {
		return 0
	}
	m.busL = vek32.Zeros_Into(growTo(m.busL, n), n)
	m.busR = vek32.Zeros_Into(growTo(m.busR, n), n)
	anySolo := false
	for _, c := range m.controls {
		anySolo = anySolo || c.Soloed
	}
	for i := range m.tracks {
		t := &m.tracks[i]
		ctl := m.controls[t.ID]
		if ctl.Muted || (anySolo && !ctl.Soloed) {
			continue
		}
		left, right := panGains(ctl.Pan)
		gain := float32(ctl.Volume) * m.master
		for j := range t.Clips {
			m.mixClip(&t.Clips[j], n, left*gain, right*gain)
		}
	}
	for i := 0; i < n; i++ {
		buf[i] = [2]float32{m.busL[i], m.busR[i]}
	}
	m.pos += int64(n)
	return n
}

// mixClip adds the part of clip that falls in [pos, pos+n) to the bus.
func (m *Mixer) mixClip(c *timeline.Clip, n int, left, right float32) {
	if c.Audio == nil || left == 0 && right == 0 {
		return
	}
	audio := *c.Audio
	from := max(c.StartSample, m.pos)
	to := min(c.EndSample(), m.pos+int64(n))
	// the source may be shorter than the clip claims
	to = min(to, c.StartSample-c.OffsetSamples+int64(len(audio)))
	if from >= to {
		return
	}
	count := int(to - from)
	m.tmpL = growTo(m.tmpL, count)
	m.tmpR = growTo(m.tmpR, count)
	src := audio[c.OffsetSamples+from-c.StartSample:]
	for i := 0; i < count; i++ {
		m.tmpL[i], m.tmpR[i] = src[i][0], src[i][1]
	}
	if c.FadeIn != nil || c.FadeOut != nil {
		m.env = growTo(m.env, count)
		m.envelope(c, from-c.StartSample, m.env)
		vek32.Mul_Inplace(m.tmpL, m.env)
		vek32.Mul_Inplace(m.tmpR, m.env)
	}
	g := float32(c.GainOrUnity())
	vek32.MulNumber_Inplace(m.tmpL, g*left)
	vek32.MulNumber_Inplace(m.tmpR, g*right)
	at := int(from - m.pos)
	vek32.Add_Inplace(m.busL[at:at+count], m.tmpL)
	vek32.Add_Inplace(m.busR[at:at+count], m.tmpR)
}

// envelope fills env with the fade gain of the clip, starting first frames
// into the clip.
func (m *Mixer) envelope(c *timeline.Clip, first int64, env []float32) {
	var in, out float64
	if c.FadeIn != nil {
		in = c.FadeIn.Duration * float64(m.sampleRate)
	}
	if c.FadeOut != nil {
		out = c.FadeOut.Duration * float64(m.sampleRate)
	}
	for i := range env {
		at := float64(first + int64(i))
		g := 1.0
		if in > 0 && at < in {
			g *= c.FadeIn.Gain(at / in)
		}
		if rem := float64(c.DurationSamples) - at; out > 0 && rem < out {
			g *= c.FadeOut.Gain(rem / out)
		}
		env[i] = float32(g)
	}
}

// panGains returns constant-power gains for pan in [-1, 1].
func panGains(pan float64) (left, right float32) {
	angle := (pan + 1) * math.Pi / 4
	return float32(math.Cos(angle)), float32(math.Sin(angle))
}

func growTo(s []float32, n int) []float32 {
	if cap(s) < n {
		return make([]float32, n)
	}
	return s[:n]
}
