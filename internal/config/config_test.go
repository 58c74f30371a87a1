package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Empty(t, cfg.Secret)
	assert.Equal(t, 8, cfg.MaxDepth)
	assert.Empty(t, cfg.Ignore)
	assert.False(t, cfg.NoKeyring)
	assert.Equal(t, "console", cfg.LogFormat)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, lvl)
	assert.Equal(t, 8, cfg.DiscoverOptions().MaxDepth)
}

func TestLoadFrom_AllFields(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DATAVAULT_SECRET":     "c2VjcmV0",
		"DATAVAULT_MAX_DEPTH":  "3",
		"DATAVAULT_IGNORE":     "*.swp,**/.DS_Store",
		"DATAVAULT_NO_KEYRING": "true",
		"DATAVAULT_LOG_LEVEL":  "debug",
		"DATAVAULT_LOG_FORMAT": "json",
	})
	require.NoError(t, err)

	assert.Equal(t, "c2VjcmV0", cfg.Secret)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, []string{"*.swp", "**/.DS_Store"}, cfg.Ignore)
	assert.True(t, cfg.NoKeyring)
	assert.Equal(t, "json", cfg.LogFormat)

	m, err := cfg.Mapper()
	require.NoError(t, err)
	_, err = m.ToEncrypted("notes/a.swp")
	assert.Error(t, err)
	_, err = m.ToEncrypted("notes/a.txt")
	assert.NoError(t, err)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"non-numeric depth", map[string]string{"DATAVAULT_MAX_DEPTH": "deep"}},
		{"zero depth", map[string]string{"DATAVAULT_MAX_DEPTH": "0"}},
		{"bad pattern", map[string]string{"DATAVAULT_IGNORE": "[a-"}},
		{"bad level", map[string]string{"DATAVAULT_LOG_LEVEL": "chatty"}},
		{"bad format", map[string]string{"DATAVAULT_LOG_FORMAT": "xml"}},
		{"bad bool", map[string]string{"DATAVAULT_NO_KEYRING": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			assert.Error(t, err)
		})
	}
}
