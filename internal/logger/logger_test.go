package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.WarnLevel)

	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewJSON_VaultField(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(&buf, zerolog.DebugLevel).WithVault("/tmp/v")

	l.Debug().Str("path", "a.txt").Msg("encrypted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/tmp/v", entry["vault"])
	assert.Equal(t, "a.txt", entry["path"])
	assert.Contains(t, entry, "time")
}

func TestNewFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewFormat(&buf, zerolog.InfoLevel, " JSON ")
	require.NoError(t, err)
	l.Info().Msg("hello")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())), buf.String())

	buf.Reset()
	l, err = NewFormat(&buf, zerolog.InfoLevel, "")
	require.NoError(t, err)
	l.Info().Msg("hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), buf.String())
	assert.Contains(t, buf.String(), "hello")

	_, err = NewFormat(&buf, zerolog.InfoLevel, "xml")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	l := Nop()
	require.NotNil(t, l)
	assert.Equal(t, zerolog.Disabled, l.GetLevel())

	assert.Same(t, l, OrNop(l))
	assert.NotNil(t, OrNop(nil))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, lvl)

	lvl, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
