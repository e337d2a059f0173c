package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9117", cfg.Jackett.URL)
	assert.Equal(t, "http://localhost:9091", cfg.Transmission.URL)
	assert.Empty(t, cfg.Telegram.AllowedChats)
}

func TestLoadFromParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[telegram]
token = "123:abc"
allowed_chats = [-100123, 456]

[transmission]
url = "http://nas:9091"
tv_path = "/downloads/tv"
movie_path = "/downloads/movies"

[library]
tv_path = "/media/tv"
`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, []int64{-100123, 456}, cfg.Telegram.AllowedChats)
	assert.Equal(t, "http://nas:9091", cfg.Transmission.URL)
}

func TestLoadFromBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestEnvOverridesToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
}

func TestLibraryRootsFallBackToTransmissionPaths(t *testing.T) {
	cfg := Default()
	cfg.Transmission.TVPath = "/downloads/tv"
	cfg.Transmission.MoviePath = "/downloads/movies"

	assert.Equal(t, "/downloads/tv", cfg.TVRoot())
	assert.Equal(t, "/downloads/movies", cfg.MovieRoot())

	cfg.Library.TVPath = "/media/tv"
	assert.Equal(t, "/media/tv", cfg.TVRoot())
	assert.Equal(t, "/downloads/movies", cfg.MovieRoot())
}
