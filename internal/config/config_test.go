package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadFile(filepath.Join(home, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "conversations", cfg.InputDir)
	assert.Equal(t, "whatsapp_messages.csv", cfg.MessagesCSV)
	assert.Equal(t, "daily_interactions.csv", cfg.DailyCSV)
	assert.Equal(t, 30, cfg.Days)
	assert.Empty(t, cfg.Exclude)
	assert.Equal(t, []string{"utf-8-sig", "utf-8", "latin1", "cp1252"}, cfg.Encodings)
	assert.Equal(t, filepath.Join(home, ".config", "wac", "wac.db"), cfg.DBPath)
}

func TestLoadFile_OverridesAndExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
input_dir = "~/exports"
days = 7
exclude = "Guilherme"
encodings = ["utf-8", "cp1252"]
db_path = ""
log_level = "debug"
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "exports"), cfg.InputDir)
	assert.Equal(t, 7, cfg.Days)
	assert.Equal(t, "Guilherme", cfg.Exclude)
	assert.Equal(t, []string{"utf-8", "cp1252"}, cfg.Encodings)
	assert.Empty(t, cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "daily_interactions.csv", cfg.DailyCSV)
}

func TestLoadFile_Errors(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	bad := filepath.Join(home, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("days = ["), 0o644))
	_, err := LoadFile(bad)
	assert.ErrorContains(t, err, "parse config")

	neg := filepath.Join(home, "neg.toml")
	require.NoError(t, os.WriteFile(neg, []byte("days = -1"), 0o644))
	_, err = LoadFile(neg)
	assert.ErrorContains(t, err, "days must not be negative")
}
