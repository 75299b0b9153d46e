package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFramesDir     = "frames"
	DefaultAudio         = "bad_apple.mp3"
	DefaultPlayer        = "vlc"
	DefaultFrameInterval = 33 * time.Millisecond
	DefaultMinSleep      = time.Millisecond
	DefaultDataDir       = ".asciivid"
)

type Config struct {
	FramesDir     string        `yaml:"frames_dir"`
	Audio         string        `yaml:"audio"`
	Player        string        `yaml:"player"`
	PlayerBinary  string        `yaml:"player_binary,omitempty"`
	PlayerArgs    []string      `yaml:"player_args,omitempty"`
	PlayerLog     string        `yaml:"player_log,omitempty"`
	FrameInterval time.Duration `yaml:"frame_interval"`
	MinSleep      time.Duration `yaml:"min_sleep"`
	DataDir       string        `yaml:"data_dir"`
	Record        bool          `yaml:"record"`
	Log           LogConfig     `yaml:"log"`
}

type LogConfig struct {
	Path   string `yaml:"path,omitempty"`
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		FramesDir:     DefaultFramesDir,
		Audio:         DefaultAudio,
		Player:        DefaultPlayer,
		FrameInterval: DefaultFrameInterval,
		MinSleep:      DefaultMinSleep,
		DataDir:       DefaultDataDir,
		Log:           LogConfig{Level: "info", Format: "text"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.FramesDir == "" {
		errs = append(errs, errors.New("frames_dir is required"))
	}
	if c.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("frame_interval must be positive, got %v", c.FrameInterval))
	}
	if c.MinSleep <= 0 {
		errs = append(errs, fmt.Errorf("min_sleep must be positive, got %v", c.MinSleep))
	}
	if c.PlayerBinary == "" {
		if _, ok := Players[c.Player]; !ok {
			errs = append(errs, fmt.Errorf("unknown player %q (available: %v)", c.Player, ListPresets()))
		}
	}
	if c.AudioEnabled() && c.Audio == "" {
		errs = append(errs, errors.New("audio is required unless player is none"))
	}
	return errors.Join(errs...)
}

// AudioEnabled is false only for the "none" preset without a binary override.
func (c *Config) AudioEnabled() bool {
	return c.PlayerBinary != "" || c.Player != NoPlayer
}

// PlayerCommand resolves the binary and leading arguments for the audio
// player. An explicit binary wins over the preset.
func (c *Config) PlayerCommand() (string, []string) {
	if c.PlayerBinary != "" {
		return c.PlayerBinary, append([]string(nil), c.PlayerArgs...)
	}
	p := GetPreset(c.Player)
	if p == nil {
		return "", nil
	}
	args := append(append([]string(nil), p.Args...), c.PlayerArgs...)
	return p.Binary, args
}
