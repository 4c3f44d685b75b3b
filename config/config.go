package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"go-eartrain/engine"
	"go-eartrain/synth"
)

// Audio backends
const (
	BackendOto    = "oto"
	BackendMIDI   = "midi"
	BackendSilent = "silent"
)

// GameConfig holds the round settings
type GameConfig struct {
	NoteCount    int    `yaml:"noteCount"`
	Mode         string `yaml:"mode"`
	Presentation string `yaml:"presentation"`
	ReplayMax    int    `yaml:"replayMax"`
	AutoAdvance  bool   `yaml:"autoAdvance"`
}

// ToneConfig holds timbre and timing
type ToneConfig struct {
	Profile string `yaml:"profile"`
	NoteMs  int    `yaml:"noteMs"`
	KeyMs   int    `yaml:"keyMs"`
	GapMs   int    `yaml:"gapMs"`
}

// AudioConfig selects where tones are played
type AudioConfig struct {
	Backend     string  `yaml:"backend"`
	SampleRate  int     `yaml:"sampleRate"`
	Volume      float64 `yaml:"volume"`
	MIDIPort    string  `yaml:"midiPort,omitempty"`
	MIDIChannel int     `yaml:"midiChannel,omitempty"`
}

// KeyboardConfig is a saved MIDI keyboard
type KeyboardConfig struct {
	PortName    string `yaml:"portName"`
	AutoConnect bool   `yaml:"autoConnect"`
}

// InputConfig lists the MIDI controllers to pick up
type InputConfig struct {
	Keyboards []KeyboardConfig `yaml:"keyboards,omitempty"`
	Launchpad bool             `yaml:"launchpad"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `yaml:"palette,omitempty"` // path to a GIMP .gpl file
	Labels  bool   `yaml:"labels"`
}

// Config is the main configuration structure
type Config struct {
	Game     GameConfig  `yaml:"game"`
	Tone     ToneConfig  `yaml:"tone"`
	Audio    AudioConfig `yaml:"audio"`
	Input    InputConfig `yaml:"input,omitempty"`
	UI       UIConfig    `yaml:"ui"`
	LogLevel string      `yaml:"logLevel,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Game: GameConfig{
			NoteCount:    1,
			Mode:         "ordered",
			Presentation: "auto",
			ReplayMax:    3,
			AutoAdvance:  true,
		},
		Tone: ToneConfig{
			Profile: "bright",
			NoteMs:  500,
			KeyMs:   500,
			GapMs:   300,
		},
		Audio: AudioConfig{
			Backend:    BackendOto,
			SampleRate: synth.DefaultSampleRate,
			Volume:     0.3,
		},
		Input: InputConfig{
			Launchpad: true,
		},
		UI: UIConfig{
			Labels: true,
		},
		LogLevel: "info",
	}
}

// ConfigDir returns the config directory path. EARTRAIN_CONFIG_DIR overrides it.
func ConfigDir() (string, error) {
	if dir := os.Getenv("EARTRAIN_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-eartrain"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Environment overrides are applied either way.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file; missing keys keep their defaults
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets the environment (or .env) override logging and audio
func (c *Config) applyEnv() {
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	if os.Getenv("DEBUG") == "1" {
		c.LogLevel = "debug"
	}
	c.Audio.Backend = getEnvOrDefault("EARTRAIN_AUDIO", c.Audio.Backend)
	c.Audio.MIDIPort = getEnvOrDefault("EARTRAIN_MIDI_PORT", c.Audio.MIDIPort)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EngineSettings converts the game and tone sections
func (c *Config) EngineSettings() (engine.Settings, error) {
	mode, err := engine.ParseMode(c.Game.Mode)
	if err != nil {
		return engine.Settings{}, err
	}
	pres, err := engine.ParsePresentation(c.Game.Presentation)
	if err != nil {
		return engine.Settings{}, err
	}
	s := engine.Settings{
		NoteCount:    c.Game.NoteCount,
		Mode:         mode,
		Presentation: pres,
		ReplayMax:    c.Game.ReplayMax,
		AutoAdvance:  c.Game.AutoAdvance,
		NoteDuration: time.Duration(c.Tone.NoteMs) * time.Millisecond,
		KeyDuration:  time.Duration(c.Tone.KeyMs) * time.Millisecond,
		Gap:          time.Duration(c.Tone.GapMs) * time.Millisecond,
	}
	if err := s.Validate(); err != nil {
		return engine.Settings{}, err
	}
	return s, nil
}

// Profile returns the configured harmonic profile
func (c *Config) Profile() (synth.Profile, error) {
	return synth.ProfileByName(c.Tone.Profile)
}

// SetGame records the last used note count and mode
func (c *Config) SetGame(noteCount int, mode engine.Mode) {
	c.Game.NoteCount = noteCount
	c.Game.Mode = mode.String()
}

// FindKeyboard finds a keyboard config by port name
func (c *Config) FindKeyboard(portName string) *KeyboardConfig {
	for i := range c.Input.Keyboards {
		if c.Input.Keyboards[i].PortName == portName {
			return &c.Input.Keyboards[i]
		}
	}
	return nil
}

// AddKeyboard adds or updates a keyboard config
func (c *Config) AddKeyboard(kb KeyboardConfig) {
	for i := range c.Input.Keyboards {
		if c.Input.Keyboards[i].PortName == kb.PortName {
			c.Input.Keyboards[i] = kb
			return
		}
	}
	c.Input.Keyboards = append(c.Input.Keyboards, kb)
}

// AutoConnectKeyboards returns the port names with autoConnect enabled
func (c *Config) AutoConnectKeyboards() []string {
	var result []string
	for _, kb := range c.Input.Keyboards {
		if kb.AutoConnect {
			result = append(result, kb.PortName)
		}
	}
	return result
}
