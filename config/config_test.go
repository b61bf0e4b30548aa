package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/waveline/timeline/config"
	"github.com/waveline/timeline/engine"
)

func TestDefaultIsValid(t *testing.T) {
	c := config.Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if _, err := engine.New(c.EngineOptions(nil)...); err != nil {
		t.Errorf("default options rejected by engine.New: %v", err)
	}
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timeline.yml")
	doc := "sampleRate: 48000\nframeInterval: 10ms\nzoomLevels: [100, 200]\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TIMELINE_SAMPLES_PER_PIXEL", "180")
	t.Setenv("TIMELINE_ADDR", ":9999")
	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SampleRate != 48000 || c.FrameInterval != 10*time.Millisecond || len(c.ZoomLevels) != 2 || c.Log.Level != "debug" {
		t.Errorf("file values not applied: %+v", c)
	}
	if c.SamplesPerPixel != 180 || c.Server.Addr != ":9999" {
		t.Errorf("environment not applied: %+v", c)
	}
	e, err := engine.New(c.EngineOptions(nil)...)
	if err != nil {
		t.Fatal(err)
	}
	if e.SampleRate() != 48000 || e.SamplesPerPixel() != 200 {
		t.Errorf("engine got rate %d, spp %d", e.SampleRate(), e.SamplesPerPixel())
	}
}

func TestLoadRejects(t *testing.T) {
	t.Setenv("TIMELINE_ZOOM_LEVELS", "512, 256")
	if _, err := config.Load(""); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("decreasing zoom levels: %v", err)
	}
	t.Setenv("TIMELINE_ZOOM_LEVELS", "256,512")
	t.Setenv("TIMELINE_FRAME_INTERVAL", "soon")
	if _, err := config.Load(""); err == nil {
		t.Errorf("malformed duration accepted")
	}
	if _, err := config.Load(filepath.Join(t.TempDir(), "none.yml")); err == nil {
		t.Errorf("missing config file accepted")
	}
}
