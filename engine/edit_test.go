package engine_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/waveline/timeline"
	"github.com/waveline/timeline/engine"
)

const shortDuration = 1000

func editFixture(t testing.TB) *engine.Engine {
	e, err := engine.New()
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	src := func(id string, start int64) timeline.Clip {
		return timeline.Clip{ID: id, StartSample: start, DurationSamples: rate, OffsetSamples: rate / 2, SourceDurationSamples: 4 * rate, SampleRate: rate}
	}
	// short is below the minimum duration and may only grow
	short := timeline.Clip{ID: "short", StartSample: 5 * rate, DurationSamples: shortDuration, OffsetSamples: 500, SourceDurationSamples: 4 * rate, SampleRate: rate}
	e.SetTracks([]timeline.Track{
		{ID: "a", Clips: []timeline.Clip{src("a1", 0), src("a2", 2*rate), src("a3", 5*rate)}},
		{ID: "b", Clips: []timeline.Clip{src("b1", rate), src("b2", 3*rate), short}},
	})
	return e
}

// applyEdit performs one move, trim or split derived from the given numbers on
// one of the clips of the engine.
func applyEdit(e *engine.Engine, op, track, clip int, amount int64) {
	tracks := e.State().Tracks
	tr := tracks[track%len(tracks)]
	if len(tr.Clips) == 0 {
		return
	}
	c := tr.Clips[clip%len(tr.Clips)]
	switch op % 4 {
	case 0:
		e.MoveClip(tr.ID, c.ID, amount)
	case 1:
		e.TrimClip(tr.ID, c.ID, timeline.StartEdge, amount)
	case 2:
		e.TrimClip(tr.ID, c.ID, timeline.EndEdge, amount)
	case 3:
		e.SplitClip(tr.ID, c.ID, c.StartSample+amount)
	}
}

func checkInvariants(t testing.TB, e *engine.Engine) {
	t.Helper()
	minDuration := timeline.MinDurationSamples(timeline.DefaultMinClipDuration, rate)
	for _, tr := range e.State().Tracks {
		sorted := tr.SortedClips()
		for i, c := range sorted {
			if c.ID == "short" && c.DurationSamples < shortDuration || c.ID != "short" && c.DurationSamples < minDuration {
				t.Fatalf("clip %s on track %s is %d samples, shorter than %d", c.ID, tr.ID, c.DurationSamples, minDuration)
			}
			if c.StartSample < 0 || c.OffsetSamples < 0 || c.OffsetSamples+c.DurationSamples > c.SourceDurationSamples {
				t.Fatalf("clip %s out of bounds: %+v", c.ID, c)
			}
			if i > 0 && sorted[i-1].EndSample() > c.StartSample {
				t.Fatalf("clips %s and %s overlap on track %s", sorted[i-1].ID, c.ID, tr.ID)
			}
		}
	}
}

func TestRandomEditsKeepInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for round := 0; round < 20; round++ {
		e := editFixture(t)
		for i := 0; i < 200; i++ {
			amount := r.Int63n(4*rate) - 2*rate
			if i%4 == 3 {
				amount = r.Int63n(rate)
			}
			applyEdit(e, r.Intn(4), r.Intn(2), r.Intn(8), amount)
			checkInvariants(t, e)
		}
	}
}

func FuzzEdits(f *testing.F) {
	f.Add([]byte{0, 0, 0, 200, 1, 1, 1, 10, 3, 0, 2, 128})
	f.Add([]byte{2, 1, 0, 255, 1, 0, 1, 0, 0, 1, 1, 127})
	f.Fuzz(func(t *testing.T, script []byte) {
		e := editFixture(t)
		for i := 0; i+3 < len(script); i += 4 {
			amount := int64(int8(script[i+3])) * rate / 64
			if script[i]%4 == 3 {
				amount = int64(script[i+3]) * rate / 256
			}
			applyEdit(e, int(script[i]), int(script[i+1]), int(script[i+2]), amount)
			checkInvariants(t, e)
		}
	})
}

func TestDo(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.SetTracks([]timeline.Track{{ID: "t", Clips: []timeline.Clip{clip("A", 0, 5000), clip("B", 10000, 5000)}}})
	start, end := 3.0, 1.0
	script := []engine.Command{
		{Op: "moveClip", TrackID: "t", ClipID: "A", Delta: 8000},
		{Op: "setSelection", Start: &start, End: &end},
		{Op: "zoomOut"},
		{Op: "addTrack", Track: &timeline.Track{ID: "u"}},
		{Op: "selectTrack", TrackID: "u"},
		{Op: "setMasterVolume", Value: 0.5},
	}
	for _, c := range script {
		if err := e.Do(ctx, c); err != nil {
			t.Fatalf("Do(%s): %v", c.Op, err)
		}
	}
	s := e.State()
	if s.Tracks[0].Clips[0].StartSample != 5000 {
		t.Errorf("moveClip not applied")
	}
	if s.SelectionStart != 1 || s.SelectionEnd != 3 {
		t.Errorf("selection = [%v, %v]", s.SelectionStart, s.SelectionEnd)
	}
	if s.SamplesPerPixel != 2048 || len(s.Tracks) != 2 || s.SelectedTrackID != "u" || s.MasterVolume != 0.5 {
		t.Errorf("unexpected state %+v", s)
	}
	if err := e.Do(ctx, engine.Command{Op: "explode"}); !errors.Is(err, engine.ErrUnknownCommand) {
		t.Errorf("unknown op: %v", err)
	}
	if err := e.Do(ctx, engine.Command{Op: "trimClip", TrackID: "t", ClipID: "A", Edge: "middle"}); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Errorf("bad edge: %v", err)
	}
	if err := e.Do(ctx, engine.Command{Op: "setLoopRegion", Start: &start}); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Errorf("missing loop end: %v", err)
	}
}
