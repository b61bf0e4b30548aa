// Package config loads the settings shared by the timeline commands from a
// YAML file, a .env file and TIMELINE_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/waveline/timeline"
	"github.com/waveline/timeline/engine"
	"github.com/waveline/timeline/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type (
	// Config is the configuration of the engine and of the timeline tool.
	Config struct {
		SampleRate      int           `yaml:"sampleRate"`
		SamplesPerPixel int           `yaml:"samplesPerPixel"`
		ZoomLevels      []int         `yaml:"zoomLevels"`
		MinClipDuration float64       `yaml:"minClipDuration"` // seconds
		FrameInterval   time.Duration `yaml:"frameInterval"`
		AudioBuffer     time.Duration `yaml:"audioBuffer"` // device buffer of the oto backend, 0 = default
		Log             logger.Config `yaml:"log"`
		Server          Server        `yaml:"server"`
	}

	// Server configures the listener of the serve command.
	Server struct {
		Addr string `yaml:"addr"`
	}
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SampleRate:      engine.DefaultSampleRate,
		SamplesPerPixel: engine.DefaultSamplesPerPixel,
		ZoomLevels:      append([]int(nil), timeline.DefaultZoomLevels...),
		MinClipDuration: timeline.DefaultMinClipDuration,
		FrameInterval:   engine.DefaultFrameInterval,
		Log:             logger.Config{Level: "info"},
		Server:          Server{Addr: "localhost:8080"},
	}
}

// Load builds the configuration: the defaults, overlaid by the YAML file at
// path if path is not empty, then by variables from a .env file in the
// working directory, then by the environment.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("could not read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("could not parse config %s: %w", path, err)
		}
	}
	// a missing .env is fine; variables already set win over it
	_ = godotenv.Load()
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	envInt("TIMELINE_SAMPLE_RATE", &c.SampleRate, &errs)
	envInt("TIMELINE_SAMPLES_PER_PIXEL", &c.SamplesPerPixel, &errs)
	envFloat("TIMELINE_MIN_CLIP_DURATION", &c.MinClipDuration, &errs)
	envDuration("TIMELINE_FRAME_INTERVAL", &c.FrameInterval, &errs)
	envDuration("TIMELINE_AUDIO_BUFFER", &c.AudioBuffer, &errs)
	if v, ok := os.LookupEnv("TIMELINE_ZOOM_LEVELS"); ok {
		levels, err := parseInts(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TIMELINE_ZOOM_LEVELS: %w", err))
		} else {
			c.ZoomLevels = levels
		}
	}
	c.Log.Level = getEnv("TIMELINE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("TIMELINE_LOG_FORMAT", c.Log.Format)
	c.Log.File = getEnv("TIMELINE_LOG_FILE", c.Log.File)
	c.Server.Addr = getEnv("TIMELINE_ADDR", c.Server.Addr)
	return errors.Join(errs...)
}

// Validate checks the values for consistency.
func (c *Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalid, c.SampleRate)
	case len(c.ZoomLevels) == 0:
		return fmt.Errorf("%w: no zoom levels", ErrInvalid)
	case c.MinClipDuration < 0:
		return fmt.Errorf("%w: negative minimum clip duration", ErrInvalid)
	case c.FrameInterval <= 0:
		return fmt.Errorf("%w: frame interval %v", ErrInvalid, c.FrameInterval)
	}
	for i, l := range c.ZoomLevels {
		if l <= 0 || i > 0 && l <= c.ZoomLevels[i-1] {
			return fmt.Errorf("%w: zoom levels must be positive and increasing, got %v", ErrInvalid, c.ZoomLevels)
		}
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// EngineOptions returns the engine options matching the configuration.
func (c *Config) EngineOptions(log *zap.Logger) []engine.Option {
	return []engine.Option{
		engine.WithSampleRate(c.SampleRate),
		engine.WithZoomLevels(c.ZoomLevels),
		engine.WithSamplesPerPixel(c.SamplesPerPixel),
		engine.WithMinClipDuration(c.MinClipDuration),
		engine.WithLogger(log),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func envInt(key string, dst *int, errs *[]error) {
	if v, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = i
	}
}

func envFloat(key string, dst *float64, errs *[]error) {
	if v, ok := os.LookupEnv(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = f
	}
}

func envDuration(key string, dst *time.Duration, errs *[]error) {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}
}

func parseInts(s string) ([]int, error) {
	var ret []int
	for _, f := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		ret = append(ret, i)
	}
	return ret, nil
}
