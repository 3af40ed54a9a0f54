// Package config implements the CLI/config collaborator of spec.md §6: a
// configuration struct with the enumerated options spec.md names, loaded
// from YAML (grounded on
// pithecene-io-quarry/quarry/cli/config.Load/Config) with hot-reload over
// an fsnotify watcher (grounded on ManuGH-xg2g/internal/config.ConfigHolder,
// adapted from that package's zerolog logging to this module's log/slog
// convention).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// InputKind selects which source kind a bot run reads frames from.
type InputKind string

const (
	InputFile   InputKind = "file"
	InputURL    InputKind = "url"
	InputCamera InputKind = "camera"
	InputPubSub InputKind = "pubsub"
)

// Config is the configuration spec.md §6 hands the core after CLI parsing
// and mutual-exclusion validation: `{input, channel, loop, batch,
// analysis_file?, debug_file?, bot_id, bot_config, pixel_format,
// bounding_dims}`.
type Config struct {
	Input   InputKind `yaml:"input"`
	Source  string    `yaml:"source"` // file path, URL, or camera URI, depending on Input
	Channel string    `yaml:"channel"`

	Loop  bool `yaml:"loop"`
	Batch bool `yaml:"batch"`

	AnalysisFile string `yaml:"analysis_file,omitempty"`
	DebugFile    string `yaml:"debug_file,omitempty"`

	BotID     string         `yaml:"bot_id"`
	BotConfig map[string]any `yaml:"bot_config"`

	PixelFormat   string       `yaml:"pixel_format"`
	BoundingDims  BoundingDims `yaml:"bounding_dims"`
	NATSURL       string       `yaml:"nats_url"`
	ReplayLogPath string       `yaml:"replay_log_path,omitempty"`
}

// BoundingDims is the width/height of decoded frames. cmd/botrun passes it
// to the camera capture pipeline and to its raw RGBA decode; nothing in this
// module resizes a frame on a bot's request.
type BoundingDims struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Validate checks the mutual-exclusion and required-field constraints
// spec.md §6 says must hold "before the core is entered".
func (c *Config) Validate() error {
	switch c.Input {
	case InputFile, InputURL, InputCamera, InputPubSub:
	default:
		return fmt.Errorf("config: input must be one of file|url|camera|pubsub, got %q", c.Input)
	}
	if c.Input != InputPubSub && c.Source == "" {
		return fmt.Errorf("config: source is required for input kind %q", c.Input)
	}
	if c.Channel == "" {
		return fmt.Errorf("config: channel is required")
	}
	if c.BotID == "" {
		return fmt.Errorf("config: bot_id is required")
	}
	if c.AnalysisFile != "" && c.AnalysisFile == c.DebugFile {
		return fmt.Errorf("config: analysis_file and debug_file must not be the same path")
	}
	return nil
}

// Load reads a YAML config file and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
