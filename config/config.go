// Package config loads the YAML settings shared by the example programs.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/drgolem/go-soundio/soundio"
)

type Config struct {
	AppName string      `yaml:"app_name"`
	Audio   AudioConfig `yaml:"audio"`
	Log     LogConfig   `yaml:"log"`
}

type AudioConfig struct {
	// Backend is a backend name such as "pulseaudio" or "dummy". Empty
	// tries every available backend.
	Backend string `yaml:"backend"`
	// Device is a device id. Empty selects the default device.
	Device     string  `yaml:"device"`
	SampleRate int     `yaml:"sample_rate"`
	Format     string  `yaml:"format"`
	Channels   int     `yaml:"channels"`
	Latency    float64 `yaml:"latency"`
	Duration   string  `yaml:"duration"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the config file at path. Environment variables in the file are
// expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.AppName == "" {
		c.AppName = "go-soundio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 48000
	}
	if c.Audio.Format == "" {
		c.Audio.Format = "f32"
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = 2
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if _, err := soundio.ParseBackend(c.Audio.Backend); err != nil {
		return fmt.Errorf("audio.backend: %w", err)
	}
	if _, err := soundio.ParseFormat(c.Audio.Format); err != nil {
		return fmt.Errorf("audio.format: %w", err)
	}
	if _, ok := soundio.DefaultLayout(c.Audio.Channels); !ok {
		return fmt.Errorf("audio.channels: no default layout for %d channels", c.Audio.Channels)
	}
	if c.Audio.SampleRate < 0 {
		return fmt.Errorf("audio.sample_rate: must not be negative, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Latency < 0 {
		return fmt.Errorf("audio.latency: must not be negative, got %g", c.Audio.Latency)
	}
	if _, err := c.Audio.duration(); err != nil {
		return fmt.Errorf("audio.duration: %w", err)
	}
	return nil
}

// BackendValue returns the configured backend, BackendNone meaning any.
func (a AudioConfig) BackendValue() soundio.Backend {
	b, _ := soundio.ParseBackend(a.Backend)
	return b
}

func (a AudioConfig) FormatValue() soundio.Format {
	f, _ := soundio.ParseFormat(a.Format)
	return f
}

// Layout is the default layout for the configured channel count.
func (a AudioConfig) Layout() soundio.ChannelLayout {
	l, _ := soundio.DefaultLayout(a.Channels)
	return l
}

// DurationValue is zero when no duration is configured.
func (a AudioConfig) DurationValue() time.Duration {
	d, _ := a.duration()
	return d
}

func (a AudioConfig) duration() (time.Duration, error) {
	if a.Duration == "" {
		return 0, nil
	}
	return time.ParseDuration(a.Duration)
}

// NewLogger builds the slog logger described by the log section.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
