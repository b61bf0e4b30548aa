package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/waveline/timeline"
	"github.com/waveline/timeline/engine"
)

const rate = 44100

type fakeAdapter struct {
	playErr  error
	onPlay   func()
	time     float64
	playing  bool
	master   float64
	disposed int
	tracks   []timeline.Track
	setCalls int
	controls []string
}

func (a *fakeAdapter) Init(ctx context.Context) error { return nil }
func (a *fakeAdapter) SetTracks(tracks []timeline.Track) {
	a.tracks = tracks
	a.setCalls++
}
func (a *fakeAdapter) Play(ctx context.Context, start, end float64) error {
	if a.playErr != nil {
		return a.playErr
	}
	a.time = start
	a.playing = true
	if a.onPlay != nil {
		a.onPlay()
	}
	return nil
}
func (a *fakeAdapter) Pause()                    { a.playing = false }
func (a *fakeAdapter) Stop()                     { a.playing = false; a.time = 0 }
func (a *fakeAdapter) Seek(t float64)            { a.time = t }
func (a *fakeAdapter) CurrentTime() float64      { return a.time }
func (a *fakeAdapter) IsPlaying() bool           { return a.playing }
func (a *fakeAdapter) SetMasterVolume(v float64) { a.master = v }
func (a *fakeAdapter) SetTrackVolume(id string, v float64) {
	a.controls = append(a.controls, "volume "+id)
}
func (a *fakeAdapter) SetTrackMute(id string, muted bool) {
	a.controls = append(a.controls, "mute "+id)
}
func (a *fakeAdapter) SetTrackSolo(id string, soloed bool) {
	a.controls = append(a.controls, "solo "+id)
}
func (a *fakeAdapter) SetTrackPan(id string, pan float64) {
	a.controls = append(a.controls, "pan "+id)
}
func (a *fakeAdapter) Dispose() { a.disposed++ }

type frameRequest struct {
	fn        func()
	cancelled bool
}

// manualScheduler runs frames only when the test steps it.
type manualScheduler struct {
	pending []*frameRequest
}

func (s *manualScheduler) RequestFrame(fn func()) func() {
	r := &frameRequest{fn: fn}
	s.pending = append(s.pending, r)
	return func() { r.cancelled = true }
}

func (s *manualScheduler) step() {
	due := s.pending
	s.pending = nil
	for _, r := range due {
		if !r.cancelled {
			r.fn()
		}
	}
}

func (s *manualScheduler) active() int {
	n := 0
	for _, r := range s.pending {
		if !r.cancelled {
			n++
		}
	}
	return n
}

func clip(id string, start, duration int64) timeline.Clip {
	return timeline.Clip{
		ID:                    id,
		StartSample:           start,
		DurationSamples:       duration,
		SourceDurationSamples: duration,
		SampleRate:            rate,
	}
}

func newEngine(t *testing.T, opts ...engine.Option) *engine.Engine {
	t.Helper()
	e, err := engine.New(opts...)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e
}

func countEvents(e *engine.Engine, kind engine.EventKind) *int {
	n := new(int)
	e.On(kind, func(engine.Event) { *n++ })
	return n
}

func TestNewRejectsEmptyZoomTable(t *testing.T) {
	e, err := engine.New(engine.WithZoomLevels([]int{}))
	if !errors.Is(err, engine.ErrEmptyZoomLevels) {
		t.Fatalf("expected ErrEmptyZoomLevels, got %v", err)
	}
	if e != nil {
		t.Errorf("no engine should be returned on error")
	}
}

func TestNewSnapsSamplesPerPixel(t *testing.T) {
	e := newEngine(t, engine.WithSamplesPerPixel(1000))
	s := e.State()
	if s.SamplesPerPixel != 1024 || s.ZoomIndex != 2 {
		t.Errorf("got spp %d at index %d, want 1024 at 2", s.SamplesPerPixel, s.ZoomIndex)
	}
	if !s.CanZoomIn || !s.CanZoomOut {
		t.Errorf("both zoom directions should be possible from the middle")
	}
	if e.SampleRate() != engine.DefaultSampleRate || s.MasterVolume != 1 {
		t.Errorf("unexpected defaults: rate %d, master %v", e.SampleRate(), s.MasterVolume)
	}
}

func TestDragClampedByNeighbor(t *testing.T) {
	e := newEngine(t)
	e.SetTracks([]timeline.Track{{ID: "t", Clips: []timeline.Clip{clip("A", 0, 5000), clip("B", 10000, 5000)}}})
	if !e.MoveClip("t", "A", 8000) {
		t.Fatalf("move should have happened")
	}
	if got := e.State().Tracks[0].Clips[0].StartSample; got != 5000 {
		t.Errorf("A.StartSample = %d, want 5000", got)
	}
}

func TestNoOpMutationsDoNotEmit(t *testing.T) {
	e := newEngine(t, engine.WithSamplesPerPixel(256))
	e.SetTracks([]timeline.Track{{ID: "t", Clips: []timeline.Clip{clip("A", 0, 5000), clip("B", 5000, 5000)}}})
	n := countEvents(e, engine.StateChange)
	version := e.State().TracksVersion
	if e.MoveClip("t", "A", -100) {
		t.Errorf("move clamped to zero reported a change")
	}
	if e.MoveClip("t", "A", 100) {
		t.Errorf("move into a touching neighbour reported a change")
	}
	if e.MoveClip("t", "nope", 100) || e.MoveClip("nope", "A", 100) {
		t.Errorf("move with unknown ids reported a change")
	}
	if e.TrimClip("t", "A", timeline.EndEdge, 100) {
		t.Errorf("trim past the source end reported a change")
	}
	if e.SplitClip("t", "A", 0) || e.SplitClip("t", "A", 100) {
		t.Errorf("invalid split reported a change")
	}
	if e.RemoveTrack("nope") {
		t.Errorf("removing an unknown track reported a change")
	}
	if e.ZoomIn() {
		t.Errorf("zoom in at the first level reported a change")
	}
	if e.SetZoomLevel(250) {
		t.Errorf("setting the current zoom level reported a change")
	}
	if *n != 0 {
		t.Errorf("no-op mutations emitted %d statechange events", *n)
	}
	if e.State().TracksVersion != version {
		t.Errorf("no-op mutations changed the tracks version")
	}
}

func TestZoomSteps(t *testing.T) {
	e := newEngine(t, engine.WithSamplesPerPixel(8192))
	if e.State().CanZoomOut {
		t.Errorf("cannot zoom out at the last level")
	}
	n := countEvents(e, engine.StateChange)
	if e.ZoomOut() || *n != 0 {
		t.Errorf("zoom out at the last level should be a silent no-op")
	}
	if !e.ZoomIn() || e.SamplesPerPixel() != 4096 || *n != 1 {
		t.Errorf("zoom in: spp %d, %d events", e.SamplesPerPixel(), *n)
	}
	if !e.SetZoomLevel(300) || e.SamplesPerPixel() != 256 {
		t.Errorf("SetZoomLevel(300) gave %d", e.SamplesPerPixel())
	}
	if e.State().CanZoomIn {
		t.Errorf("cannot zoom in at the first level")
	}
}

func TestSplitAndRename(t *testing.T) {
	e := newEngine(t)
	vocals := clip("v", 0, 10000)
	vocals.Name = "Vocals"
	e.SetTracks([]timeline.Track{{ID: "t", Clips: []timeline.Clip{clip("first", 20000, 5000), vocals, clip("last", 40000, 5000)}}})
	if !e.SplitClip("t", "v", 5000) {
		t.Fatalf("split should succeed")
	}
	clips := e.State().Tracks[0].Clips
	if len(clips) != 4 || clips[0].ID != "first" || clips[3].ID != "last" {
		t.Fatalf("halves should replace the original in place, got %v", ids(clips))
	}
	left, right := clips[1], clips[2]
	if left.StartSample != 0 || left.DurationSamples != 5000 || left.Name != "Vocals (1)" {
		t.Errorf("left = %+v", left)
	}
	if right.StartSample != 5000 || right.DurationSamples != 5000 || right.Name != "Vocals (2)" {
		t.Errorf("right = %+v", right)
	}
}

func TestSplitClipAtTimeSnapsToPixel(t *testing.T) {
	e := newEngine(t, engine.WithSamplesPerPixel(1024))
	e.SetTracks([]timeline.Track{{ID: "t", Clips: []timeline.Clip{clip("c", 0, rate)}}})
	if !e.SplitClipAtTime("t", "c", 0.5) {
		t.Fatalf("split should succeed")
	}
	// 0.5 s is sample 22050, which snaps down to 21 * 1024
	if got := e.State().Tracks[0].Clips[0].DurationSamples; got != 21504 {
		t.Errorf("left duration = %d, want 21504", got)
	}
}

func TestTrimClip(t *testing.T) {
	e := newEngine(t)
	c := timeline.Clip{ID: "c", StartSample: 10000, DurationSamples: 20000, OffsetSamples: 5000, SourceDurationSamples: 40000, SampleRate: rate}
	e.SetTracks([]timeline.Track{{ID: "t", Clips: []timeline.Clip{c}}})
	if !e.TrimClip("t", "c", timeline.StartEdge, -8000) {
		t.Fatalf("start trim should succeed")
	}
	got := e.State().Tracks[0].Clips[0]
	if got.StartSample != 5000 || got.OffsetSamples != 0 || got.DurationSamples != 25000 {
		t.Errorf("after start trim: %+v", got)
	}
	if !e.TrimClip("t", "c", timeline.EndEdge, -100000) {
		t.Fatalf("end trim should succeed")
	}
	if got := e.State().Tracks[0].Clips[0].DurationSamples; got != 4410 {
		t.Errorf("end trim should stop at the minimum duration, got %d", got)
	}
}

func TestTrimShortClipKeepsBounds(t *testing.T) {
	e := newEngine(t)
	a := clip("a", 0, 1000)
	a.SourceDurationSamples = 10000
	e.SetTracks([]timeline.Track{{ID: "t", Clips: []timeline.Clip{a, clip("b", 1500, 1000)}}})
	n := countEvents(e, engine.StateChange)
	for _, edge := range []timeline.Edge{timeline.StartEdge, timeline.EndEdge} {
		for _, delta := range []int64{-10, 10} {
			if edge == timeline.EndEdge && delta > 0 {
				continue
			}
			if e.TrimClip("t", "a", edge, delta) {
				t.Errorf("trimming the %v edge of a short clip by %d changed it: %+v", edge, delta, e.State().Tracks[0].Clips[0])
			}
		}
	}
	if *n != 0 {
		t.Errorf("ignored trims emitted %d statechanges", *n)
	}
	if !e.TrimClip("t", "a", timeline.EndEdge, 10000) {
		t.Fatalf("growing a short clip should succeed")
	}
	if got := e.State().Tracks[0].Clips[0]; got.StartSample != 0 || got.EndSample() != 1500 {
		t.Errorf("growing should stop at the next clip, got [%d, %d)", got.StartSample, got.EndSample())
	}
}

func TestSelectionAndLoopNormalization(t *testing.T) {
	e := newEngine(t)
	for _, p := range [][2]float64{{1, 2}, {2, 1}, {-3, 3}, {5, 5}, {7.5, 0.25}} {
		e.SetSelection(p[0], p[1])
		e.SetLoopRegion(p[1], p[0])
		s := e.State()
		lo, hi := min(p[0], p[1]), max(p[0], p[1])
		if s.SelectionStart != lo || s.SelectionEnd != hi {
			t.Errorf("SetSelection(%v, %v) stored [%v, %v]", p[0], p[1], s.SelectionStart, s.SelectionEnd)
		}
		if s.LoopStart != lo || s.LoopEnd != hi {
			t.Errorf("SetLoopRegion(%v, %v) stored [%v, %v]", p[1], p[0], s.LoopStart, s.LoopEnd)
		}
	}
	e.SetLoopEnabled(true)
	if !e.State().LoopEnabled {
		t.Errorf("loop should be enabled")
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	a := &fakeAdapter{}
	e := newEngine(t, engine.WithAdapter(a))
	n := countEvents(e, engine.StateChange)
	e.Dispose()
	e.Dispose()
	if a.disposed != 1 {
		t.Errorf("adapter disposed %d times, want 1", a.disposed)
	}
	e.SetLoopEnabled(true)
	if *n != 0 {
		t.Errorf("listeners should be cleared by Dispose")
	}
	if err := e.Play(context.Background()); !errors.Is(err, engine.ErrDisposed) {
		t.Errorf("Play after Dispose = %v, want ErrDisposed", err)
	}
}

func TestStateIsIndependentCopy(t *testing.T) {
	e := newEngine(t)
	in := []timeline.Track{{ID: "t", Clips: []timeline.Clip{clip("c", 0, 5000)}}}
	e.SetTracks(in)
	in[0].Clips[0].StartSample = 999
	s := e.State()
	if s.Tracks[0].Clips[0].StartSample != 0 {
		t.Fatalf("SetTracks should copy its input")
	}
	s.Tracks[0].Clips[0].StartSample = 777
	s.Tracks[0].Name = "changed"
	if got := e.State().Tracks[0]; got.Clips[0].StartSample != 0 || got.Name != "" {
		t.Errorf("modifying a snapshot changed the engine: %+v", got)
	}
}

func TestStateChangeSnapshotsAreIndependent(t *testing.T) {
	e := newEngine(t)
	var first, second engine.State
	e.On(engine.StateChange, func(ev engine.Event) {
		first = ev.State
		ev.State.Tracks[0].ID = "mutated"
	})
	e.On(engine.StateChange, func(ev engine.Event) { second = ev.State })
	e.AddTrack(timeline.Track{ID: "t"})
	if first.Tracks[0].ID != "mutated" || second.Tracks[0].ID != "t" {
		t.Errorf("listeners share a snapshot: %q %q", first.Tracks[0].ID, second.Tracks[0].ID)
	}
}

func TestTracksVersion(t *testing.T) {
	e := newEngine(t)
	v0 := e.State().TracksVersion
	e.AddTrack(timeline.Track{ID: "t", Clips: []timeline.Clip{clip("c", 0, 50000)}})
	v1 := e.State().TracksVersion
	if v1 == v0 {
		t.Fatalf("AddTrack should bump the tracks version")
	}
	e.SetSelection(0, 1)
	e.ZoomOut()
	e.SelectTrack("t")
	e.SetMasterVolume(0.5)
	if e.State().TracksVersion != v1 {
		t.Errorf("cosmetic changes bumped the tracks version")
	}
	e.MoveClip("t", "c", 10)
	if e.State().TracksVersion == v1 {
		t.Errorf("MoveClip should bump the tracks version")
	}
}

func TestRemoveTrackClearsSelection(t *testing.T) {
	a := &fakeAdapter{}
	e := newEngine(t, engine.WithAdapter(a))
	e.SetTracks([]timeline.Track{{ID: "a"}, {ID: "b"}})
	e.SelectTrack("a")
	if !e.RemoveTrack("a") {
		t.Fatalf("remove should succeed")
	}
	s := e.State()
	if s.SelectedTrackID != "" || len(s.Tracks) != 1 || s.Tracks[0].ID != "b" {
		t.Errorf("unexpected state after remove: %+v", s)
	}
	if len(a.tracks) != 1 || a.setCalls != 2 {
		t.Errorf("adapter should have received the new track list, got %d calls", a.setCalls)
	}
}

func TestTrackControlsPassThrough(t *testing.T) {
	a := &fakeAdapter{}
	e := newEngine(t, engine.WithAdapter(a))
	e.SetTracks([]timeline.Track{{ID: "t", Volume: 1}})
	n := countEvents(e, engine.StateChange)
	e.SetTrackVolume("t", 0.5)
	e.SetTrackMute("t", true)
	e.SetTrackSolo("t", true)
	e.SetTrackPan("t", -1)
	if len(a.controls) != 4 || *n != 0 {
		t.Errorf("controls %v, %d events", a.controls, *n)
	}
	if tr := e.State().Tracks[0]; tr.Volume != 1 || tr.Muted || tr.Soloed || tr.Pan != 0 {
		t.Errorf("pass-through controls changed track data: %+v", tr)
	}
	e.SetMasterVolume(0.25)
	if a.master != 0.25 || e.State().MasterVolume != 0.25 || *n != 1 {
		t.Errorf("master volume not forwarded or stored")
	}
}

func TestListenerPanicIsIsolated(t *testing.T) {
	e := newEngine(t)
	called := false
	e.On(engine.StateChange, func(engine.Event) { panic("boom") })
	e.On(engine.StateChange, func(engine.Event) { called = true })
	e.SetSelection(0, 1)
	if !called {
		t.Errorf("a panicking listener stopped the others")
	}
}

func TestOffDuringEmission(t *testing.T) {
	e := newEngine(t)
	var calls []string
	var id engine.ListenerID
	id = e.On(engine.StateChange, func(engine.Event) {
		calls = append(calls, "first")
		e.Off(engine.StateChange, id)
	})
	e.On(engine.StateChange, func(engine.Event) { calls = append(calls, "second") })
	e.SetSelection(0, 1)
	e.SetSelection(0, 2)
	want := []string{"first", "second", "second"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
}

func TestDisposeFromListener(t *testing.T) {
	a := &fakeAdapter{}
	e := newEngine(t, engine.WithAdapter(a))
	var calls []string
	e.On(engine.StateChange, func(engine.Event) {
		calls = append(calls, "dispose")
		e.Dispose()
	})
	e.On(engine.StateChange, func(engine.Event) { calls = append(calls, "after") })
	e.SetSelection(0, 1)
	if len(calls) != 1 || calls[0] != "dispose" {
		t.Errorf("listeners run after Dispose: %v", calls)
	}
	if a.disposed != 1 {
		t.Errorf("adapter disposed %d times, want 1", a.disposed)
	}
}

func ids(clips []timeline.Clip) []string {
	ret := make([]string, len(clips))
	for i, c := range clips {
		ret[i] = c.ID
	}
	return ret
}
