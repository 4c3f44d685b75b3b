package debug

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, DefaultLevel, ParseLevel(""))
	assert.Equal(t, DefaultLevel, ParseLevel("loud"))
}

func TestEnableWritesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Enable(dir, "debug"))
	t.Cleanup(Disable)

	Log("engine", "round %s started", "abc")

	data, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Debug logging started")
	assert.Contains(t, string(data), "round abc started")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf, "info")
	t.Cleanup(Disable)

	Log("synth", "hidden")
	l := With("engine")
	l.Info().Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "engine", rec["category"])
	assert.Equal(t, "shown", rec["message"])
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf, "debug")
	t.Cleanup(Disable)

	for i := 0; i < 9; i++ {
		LogEvery(3, "midi", "poll")
	}
	assert.Equal(t, 3, strings.Count(buf.String(), "poll (every 3"))
}

func TestDisabledIsSilent(t *testing.T) {
	Disable()
	assert.NotPanics(t, func() { Log("x", "nothing %d", 1) })
}
