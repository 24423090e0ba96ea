// Package config loads the YAML configuration shared by every command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExpectedChannels is the only supported channel count.
const ExpectedChannels = 32

// InfluxConfig is the configuration for the optional Influx/VictoriaMetrics
// export of the consolidated dataset.
type InfluxConfig struct {
	Host         string
	AuthToken    string `yaml:"auth_token"`
	Org          string
	Bucket       string
	SampleRateHz float64 `yaml:"sample_rate_hz"`
}

// Enabled reports whether a host was configured.
func (c InfluxConfig) Enabled() bool {
	return c.Host != ""
}

// Config is the whole configuration file.
type Config struct {
	SourceDirectory      string       `yaml:"source_directory"`
	Extension            string       `yaml:"extension"`
	SignalVariableName   string       `yaml:"signal_variable_name"`
	ExpectedChannelCount int          `yaml:"expected_channel_count"`
	OutputFile           string       `yaml:"output_file"`
	UsersFile            string       `yaml:"users_file"`
	ModelFile            string       `yaml:"model_file"`
	HistoryFile          string       `yaml:"history_file"`
	Influx               InfluxConfig `yaml:"influx"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		SourceDirectory:      "raw_data_folder",
		Extension:            ".mat",
		ExpectedChannelCount: ExpectedChannels,
		OutputFile:           "eeg_emotion_dataset.csv",
		UsersFile:            "users.json",
		ModelFile:            "models/model.json",
		HistoryFile:          "history.yaml",
		Influx: InfluxConfig{
			SampleRateHz: 128,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if c.ExpectedChannelCount != ExpectedChannels {
		return fmt.Errorf("expected_channel_count must be %d, got %d", ExpectedChannels, c.ExpectedChannelCount)
	}
	if c.SourceDirectory == "" {
		return errors.New("source_directory is empty")
	}
	if !strings.HasPrefix(c.Extension, ".") {
		return fmt.Errorf("extension %q must start with a dot", c.Extension)
	}
	if c.OutputFile == "" {
		return errors.New("output_file is empty")
	}
	if c.Influx.Enabled() && c.Influx.SampleRateHz <= 0 {
		return fmt.Errorf("influx.sample_rate_hz must be positive, got %g", c.Influx.SampleRateHz)
	}
	return nil
}
