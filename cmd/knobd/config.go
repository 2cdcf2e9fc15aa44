package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration for the knobd daemon.
//
// The config file is the primary configuration surface; flags exist for
// small overrides and for environments where a file is awkward. Defaults
// and validation are centralized here so the rest of the code can assume a
// well-formed config.
type Config struct {
	// GPIO line assignment for the encoder
	Pins PinsConfig `yaml:"pins"`

	// Sampling cadences
	Sampling SamplingConfig `yaml:"sampling"`

	// Fast-spin detection
	Spin SpinConfig `yaml:"spin"`

	// Event websocket server
	Server ServerFileConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

type PinsConfig struct {
	A      int `yaml:"a"`
	B      int `yaml:"b"`
	Button int `yaml:"button"`
}

type SamplingConfig struct {
	SampleHz         int `yaml:"sample_hz"`
	FrameHz          int `yaml:"frame_hz"`
	DecodeIntervalMS int `yaml:"decode_interval_ms"`
}

type SpinConfig struct {
	WindowMS   int     `yaml:"window_ms"`
	Threshold  int     `yaml:"threshold"`
	Multiplier float64 `yaml:"multiplier"`
}

type ServerFileConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	EventsPath string `yaml:"events_path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a fully-populated Config with defaults.
// Keep this aligned with constants.go and the CLI defaults.
func DefaultConfig() Config {
	return Config{
		Pins: PinsConfig{
			A:      17,
			B:      27,
			Button: 22,
		},
		Sampling: SamplingConfig{
			SampleHz:         defaultSampleHz,
			FrameHz:          defaultFrameHz,
			DecodeIntervalMS: defaultDecodeIntervalMS,
		},
		Spin: SpinConfig{
			WindowMS:   defaultSpinWindowMS,
			Threshold:  defaultSpinThreshold,
			Multiplier: defaultSpinMultiplier,
		},
		Server: ServerFileConfig{
			ListenAddr: defaultListenAddr,
			EventsPath: defaultEventsPath,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads and parses a YAML config file.
//
// Unknown fields are rejected (helps catch typos) via KnownFields(true),
// and trailing YAML documents are treated as an error.
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}

	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides applies flag values on top of a loaded config. Each field
// is a pointer; nil means "flag not set, keep the config value".
type FlagOverrides struct {
	PinA      *int
	PinB      *int
	PinButton *int

	SampleHz *int
	FrameHz  *int

	ListenAddr *string

	LogLevel *string
}

// Apply merges the overrides into cfg. Nil pointers are ignored.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.PinA != nil {
		cfg.Pins.A = *o.PinA
	}
	if o.PinB != nil {
		cfg.Pins.B = *o.PinB
	}
	if o.PinButton != nil {
		cfg.Pins.Button = *o.PinButton
	}

	if o.SampleHz != nil {
		cfg.Sampling.SampleHz = *o.SampleHz
	}
	if o.FrameHz != nil {
		cfg.Sampling.FrameHz = *o.FrameHz
	}

	if o.ListenAddr != nil {
		cfg.Server.ListenAddr = *o.ListenAddr
	}

	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants and returns a user-friendly error.
// Call after defaults + file + overrides are applied.
func (c *Config) Validate() error {
	// Pins
	if c.Pins.A < 0 || c.Pins.B < 0 || c.Pins.Button < 0 {
		return errors.New("pins.a, pins.b and pins.button must be >= 0")
	}
	if c.Pins.A == c.Pins.B || c.Pins.A == c.Pins.Button || c.Pins.B == c.Pins.Button {
		return errors.New("pins.a, pins.b and pins.button must be distinct")
	}

	// Sampling
	if c.Sampling.SampleHz <= 0 || c.Sampling.SampleHz > 10000 {
		return errors.New("sampling.sample_hz must be between 1 and 10000")
	}
	if c.Sampling.FrameHz <= 0 || c.Sampling.FrameHz > 1000 {
		return errors.New("sampling.frame_hz must be between 1 and 1000")
	}
	if c.Sampling.FrameHz > c.Sampling.SampleHz {
		return errors.New("sampling.frame_hz must be <= sampling.sample_hz")
	}
	if c.Sampling.DecodeIntervalMS <= 0 {
		return errors.New("sampling.decode_interval_ms must be > 0")
	}

	// Spin
	if c.Spin.WindowMS < 0 {
		return errors.New("spin.window_ms must be >= 0")
	}
	if c.Spin.Threshold < 1 {
		return errors.New("spin.threshold must be >= 1")
	}
	if c.Spin.Multiplier < 1 {
		return errors.New("spin.multiplier must be >= 1")
	}

	// Server
	if c.Server.ListenAddr == "" {
		return errors.New("server.listen_addr must not be empty")
	}
	if c.Server.EventsPath == "" || c.Server.EventsPath[0] != '/' {
		return errors.New("server.events_path must start with '/'")
	}

	// Logging
	if c.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}

	return nil
}
