// Package oto implements timeline.Adapter on top of the ebitengine oto
// library: a mixer.Mixer renders the tracks and an oto player pulls the mixed
// frames to the sound card.
package oto

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/waveline/timeline"
	"github.com/waveline/timeline/mixer"
	"go.uber.org/zap"
)

// Adapter plays a timeline through the default audio device. Only one oto
// context can exist per process, so create at most one Adapter.
type Adapter struct {
	mixer      *mixer.Mixer
	bufferSize time.Duration
	logger     *zap.Logger

	context  *oto.Context
	player   *oto.Player
	disposed bool
}

const frameSize = 8 // two float32 channels

// NewAdapter returns an adapter mixing at sampleRate. bufferSize is the
// device buffer length; zero lets oto decide.
func NewAdapter(sampleRate int, bufferSize time.Duration, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		mixer:      mixer.New(sampleRate),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// Mixer returns the mixer the adapter plays from.
func (a *Adapter) Mixer() *mixer.Mixer { return a.mixer }

// Init opens the audio device, waiting until it is ready or ctx is done. On
// later calls it resumes a suspended device.
func (a *Adapter) Init(ctx context.Context) error {
	if a.disposed {
		return fmt.Errorf("oto adapter is disposed")
	}
	if a.context != nil {
		if err := a.context.Resume(); err != nil {
			return fmt.Errorf("cannot resume oto context: %w", err)
		}
		return nil
	}
	c, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   a.mixer.SampleRate(),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   a.bufferSize,
	})
	if err != nil {
		return fmt.Errorf("cannot create oto context: %w", err)
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return fmt.Errorf("waiting for audio device: %w", ctx.Err())
	}
	a.context = c
	a.player = c.NewPlayer(&stream{mixer: a.mixer})
	a.logger.Info("audio device ready", zap.Int("sampleRate", a.mixer.SampleRate()))
	return nil
}

func (a *Adapter) SetTracks(tracks []timeline.Track) {
	a.mixer.SetTracks(tracks)
}

// Play starts playback at start seconds, stopping at end unless end is
// negative. The device is opened on first use.
func (a *Adapter) Play(ctx context.Context, start, end float64) error {
	if a.player == nil {
		if err := a.Init(ctx); err != nil {
			return err
		}
	}
	if end < 0 {
		a.mixer.SetEnd(-1)
	} else {
		a.mixer.SetEnd(a.frame(end))
	}
	if err := a.seekPlayer(a.frame(start)); err != nil {
		return err
	}
	a.player.Play()
	return nil
}

func (a *Adapter) Pause() {
	if a.player != nil {
		pos := a.frame(a.CurrentTime())
		a.player.Pause()
		// drop what was buffered but never heard, so resuming continues here
		a.seek(pos)
	}
}

func (a *Adapter) Stop() {
	if a.player != nil {
		a.player.Pause()
	}
	a.seek(0)
}

func (a *Adapter) Seek(t float64) {
	a.seek(a.frame(t))
}

// CurrentTime returns the position of the audio being heard: the mixer
// cursor minus what is still queued in the player.
func (a *Adapter) CurrentTime() float64 {
	pos := a.mixer.Position()
	if a.player != nil {
		pos -= int64(a.player.BufferedSize() / frameSize)
	}
	return float64(max(pos, 0)) / float64(a.mixer.SampleRate())
}

func (a *Adapter) IsPlaying() bool {
	return a.player != nil && a.player.IsPlaying()
}

func (a *Adapter) SetMasterVolume(v float64) { a.mixer.SetMasterVolume(v) }

func (a *Adapter) SetTrackVolume(id string, v float64) { a.mixer.SetTrackVolume(id, v) }

func (a *Adapter) SetTrackMute(id string, muted bool) { a.mixer.SetTrackMute(id, muted) }

func (a *Adapter) SetTrackSolo(id string, soloed bool) { a.mixer.SetTrackSolo(id, soloed) }

func (a *Adapter) SetTrackPan(id string, pan float64) { a.mixer.SetTrackPan(id, pan) }

// Dispose closes the player and suspends the device.
func (a *Adapter) Dispose() {
	if a.disposed {
		return
	}
	a.disposed = true
	if a.player != nil {
		if err := a.player.Close(); err != nil {
			a.logger.Warn("cannot close oto player", zap.Error(err))
		}
		a.player = nil
	}
	if a.context != nil {
		if err := a.context.Suspend(); err != nil {
			a.logger.Warn("cannot suspend oto context", zap.Error(err))
		}
	}
}

func (a *Adapter) seek(frame int64) {
	if err := a.seekPlayer(frame); err != nil {
		a.logger.Warn("seek failed", zap.Int64("frame", frame), zap.Error(err))
	}
}

// seekPlayer moves the mixer cursor, flushing the player buffer if there is
// a player.
func (a *Adapter) seekPlayer(frame int64) error {
	if a.player == nil {
		a.mixer.Seek(frame)
		return nil
	}
	if _, err := a.player.Seek(frame*frameSize, io.SeekStart); err != nil {
		return fmt.Errorf("cannot seek oto player: %w", err)
	}
	return nil
}

func (a *Adapter) frame(seconds float64) int64 {
	return int64(math.Round(seconds * float64(a.mixer.SampleRate())))
}

var _ timeline.Adapter = (*Adapter)(nil)
