package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-eartrain/engine"
)

func TestDefaultsConvert(t *testing.T) {
	cfg := DefaultConfig()
	s, err := cfg.EngineSettings()
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultSettings(), s)

	p, err := cfg.Profile()
	require.NoError(t, err)
	assert.Equal(t, "bright", p.Name)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "")
	t.Setenv("EARTRAIN_AUDIO", "")
	t.Setenv("EARTRAIN_MIDI_PORT", "")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadPartialFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "")
	t.Setenv("EARTRAIN_AUDIO", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
game:
  noteCount: 4
  mode: multi
tone:
  profile: soft
  gapMs: 100
input:
  keyboards:
    - portName: KeyStep 32
      autoConnect: true
`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	s, err := cfg.EngineSettings()
	require.NoError(t, err)
	assert.Equal(t, 4, s.NoteCount)
	assert.Equal(t, engine.ModeUnordered, s.Mode)
	assert.Equal(t, 100*time.Millisecond, s.Gap)
	assert.Equal(t, 500*time.Millisecond, s.NoteDuration, "unset keys keep defaults")
	assert.Equal(t, 3, s.ReplayMax)

	p, err := cfg.Profile()
	require.NoError(t, err)
	assert.Equal(t, "soft", p.Name)
	assert.Equal(t, []string{"KeyStep 32"}, cfg.AutoConnectKeyboards())
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game: [oops"), 0644))
	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestInvalidGameSettings(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"note count", func(c *Config) { c.Game.NoteCount = 12 }},
		{"mode", func(c *Config) { c.Game.Mode = "shuffle" }},
		{"presentation", func(c *Config) { c.Game.Presentation = "arp" }},
		{"duration", func(c *Config) { c.Tone.NoteMs = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			_, err := cfg.EngineSettings()
			assert.ErrorIs(t, err, engine.ErrInvalidConfiguration)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		level   string
		backend string
	}{
		{"defaults", map[string]string{}, "info", BackendOto},
		{"log level", map[string]string{"LOG_LEVEL": "warn"}, "warn", BackendOto},
		{"debug flag wins", map[string]string{"LOG_LEVEL": "warn", "DEBUG": "1"}, "debug", BackendOto},
		{"audio backend", map[string]string{"EARTRAIN_AUDIO": "silent"}, "info", BackendSilent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"LOG_LEVEL", "DEBUG", "EARTRAIN_AUDIO"} {
				t.Setenv(k, tt.env[k])
			}
			cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
			require.NoError(t, err)
			assert.Equal(t, tt.level, cfg.LogLevel)
			assert.Equal(t, tt.backend, cfg.Audio.Backend)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("EARTRAIN_CONFIG_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "")
	t.Setenv("EARTRAIN_AUDIO", "")

	cfg := DefaultConfig()
	cfg.SetGame(6, engine.ModeUnordered)
	cfg.AddKeyboard(KeyboardConfig{PortName: "Digital Piano", AutoConnect: false})
	require.NoError(t, cfg.Save())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, got.Game.NoteCount)
	assert.Equal(t, "unordered", got.Game.Mode)
	require.NotNil(t, got.FindKeyboard("Digital Piano"))
	assert.Empty(t, got.AutoConnectKeyboards())
}

func TestAddKeyboardUpdatesExisting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AddKeyboard(KeyboardConfig{PortName: "A"})
	cfg.AddKeyboard(KeyboardConfig{PortName: "B", AutoConnect: true})
	cfg.AddKeyboard(KeyboardConfig{PortName: "A", AutoConnect: true})

	assert.Len(t, cfg.Input.Keyboards, 2)
	assert.Equal(t, []string{"A", "B"}, cfg.AutoConnectKeyboards())
	assert.Nil(t, cfg.FindKeyboard("C"))
}
