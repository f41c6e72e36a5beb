// Package config provides configuration structures and defaults for the AM simulator
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"hz.tools/rf"

	"am-simulator/internal/demodulation"
	"am-simulator/internal/modulation"
	"am-simulator/internal/noise"
	"am-simulator/internal/pipeline"
	"am-simulator/internal/waveform"
)

// Config represents the complete application configuration
type Config struct {
	Signal   SignalConfig   `yaml:"signal" mapstructure:"signal"`     // Signal to simulate
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"` // Metric settings
	Sweep    SweepConfig    `yaml:"sweep" mapstructure:"sweep"`       // Modulation index sweep
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`   // Logging configuration
}

// SignalConfig describes one simulation using the textual names accepted on
// the command line and in config files
type SignalConfig struct {
	Variant          string    `yaml:"variant" mapstructure:"variant"`                     // DSB-AM, DSB-SC, SSB, VSB or QAM
	CarrierFrequency float64   `yaml:"carrier_frequency" mapstructure:"carrier_frequency"` // Carrier frequency in Hz (50-5000)
	ToneFrequencies  []float64 `yaml:"tone_frequencies" mapstructure:"tone_frequencies"`   // Message tone frequencies in Hz
	ToneAmplitudes   []float64 `yaml:"tone_amplitudes" mapstructure:"tone_amplitudes"`     // Message tone amplitudes
	ModulationIndex  float64   `yaml:"modulation_index" mapstructure:"modulation_index"`   // Modulation index (0-2)
	PhaseShift       float64   `yaml:"phase_shift" mapstructure:"phase_shift"`             // Degrees, QAM only (0-360)
	Waveform         string    `yaml:"waveform" mapstructure:"waveform"`                   // Sine, Square, Triangle, Sawtooth or Pulse
	DutyCycle        float64   `yaml:"duty_cycle" mapstructure:"duty_cycle"`               // Pulse duty cycle in percent
	Noise            string    `yaml:"noise" mapstructure:"noise"`                         // None, White, Gaussian or Pink
	NoiseAmplitude   float64   `yaml:"noise_amplitude" mapstructure:"noise_amplitude"`     // Noise amplitude (0-1)
	Demodulation     string    `yaml:"demodulation" mapstructure:"demodulation"`           // None, Coherent or Non-Coherent
	Samples          int       `yaml:"samples" mapstructure:"samples"`                     // Sample count (1024-16384)
	Duration         float64   `yaml:"duration" mapstructure:"duration"`                   // Signal duration in seconds (0.01-1)
	FilterAlpha      float64   `yaml:"filter_alpha" mapstructure:"filter_alpha"`           // Low-pass smoothing factor (0.01-1)
	Seed             int64     `yaml:"seed" mapstructure:"seed"`                           // Noise seed, 0 seeds from the clock
}

// AnalysisConfig controls which metrics are computed after a build
type AnalysisConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"` // Compute SNR and THD
	Sliding bool `yaml:"sliding" mapstructure:"sliding"` // Also report the peak of every sliding window
}

// SweepConfig contains modulation index sweep parameters
type SweepConfig struct {
	From    float64 `yaml:"from" mapstructure:"from"`       // First modulation index
	To      float64 `yaml:"to" mapstructure:"to"`           // Last modulation index (inclusive)
	Step    float64 `yaml:"step" mapstructure:"step"`       // Increment between indices
	Workers int     `yaml:"workers" mapstructure:"workers"` // Concurrent builds
}

// LoggingConfig contains logging configuration parameters
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // Log level (debug, info, warn, error)
	File  string `yaml:"file" mapstructure:"file"`   // Log file path, empty logs to stderr only
}

// DefaultConfig returns a DSB-AM signal with a 1 kHz carrier carrying a
// single 100 Hz tone, coherently demodulated
func DefaultConfig() *Config {
	return &Config{
		Signal: SignalConfig{
			Variant:          "DSB-AM",
			CarrierFrequency: 1000,
			ToneFrequencies:  []float64{100},
			ToneAmplitudes:   []float64{1.0},
			ModulationIndex:  0.5,
			PhaseShift:       0,
			Waveform:         "Sine",
			DutyCycle:        50,
			Noise:            "None",
			NoiseAmplitude:   0,
			Demodulation:     "Coherent",
			Samples:          4096,
			Duration:         0.05,
			FilterAlpha:      0.1,
		},
		Analysis: AnalysisConfig{
			Enabled: true,
		},
		Sweep: SweepConfig{
			From:    0,
			To:      2,
			Step:    0.25,
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return cfg, nil
}

// Write stores cfg as YAML
func Write(filename string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Spec parses the textual settings into a validated pipeline.SignalSpec
func (c SignalConfig) Spec() (pipeline.SignalSpec, error) {
	variant, err := modulation.ParseVariant(c.Variant)
	if err != nil {
		return pipeline.SignalSpec{}, fmt.Errorf("%w: %w", pipeline.ErrInvalidSpec, err)
	}

	shape, err := waveform.ParseShape(c.Waveform)
	if err != nil {
		return pipeline.SignalSpec{}, fmt.Errorf("%w: %w", pipeline.ErrInvalidSpec, err)
	}

	noiseKind, err := noise.ParseKind(c.Noise)
	if err != nil {
		return pipeline.SignalSpec{}, fmt.Errorf("%w: %w", pipeline.ErrInvalidSpec, err)
	}

	demodKind, err := demodulation.ParseKind(c.Demodulation)
	if err != nil {
		return pipeline.SignalSpec{}, fmt.Errorf("%w: %w", pipeline.ErrInvalidSpec, err)
	}

	tones, err := pipeline.Tones(c.ToneFrequencies, c.ToneAmplitudes)
	if err != nil {
		return pipeline.SignalSpec{}, err
	}

	spec := pipeline.SignalSpec{
		Variant:          variant,
		CarrierFrequency: rf.Hz(c.CarrierFrequency),
		Tones:            tones,
		ModulationIndex:  c.ModulationIndex,
		PhaseShift:       c.PhaseShift,
		Shape:            shape,
		DutyCycle:        c.DutyCycle,
		Noise:            noiseKind,
		NoiseAmplitude:   c.NoiseAmplitude,
		Demodulation:     demodKind,
		Samples:          c.Samples,
		Duration:         c.Duration,
		FilterAlpha:      c.FilterAlpha,
	}

	if err := spec.Validate(); err != nil {
		return pipeline.SignalSpec{}, err
	}
	return spec, nil
}

// Options returns the pipeline options implied by the config
func (c SignalConfig) Options() []pipeline.Option {
	if c.Seed == 0 {
		return nil
	}
	return []pipeline.Option{pipeline.WithSeed(c.Seed)}
}
