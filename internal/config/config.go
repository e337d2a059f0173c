// Package config handles application configuration via TOML files.
// Configuration is stored at ~/.config/couchpilot/config.toml and
// includes settings for Telegram, Jackett, Transmission, and the media
// library paths used by the restructure workflow.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds application configuration
type Config struct {
	Telegram     TelegramConfig     `toml:"telegram"`
	Jackett      JackettConfig      `toml:"jackett"`
	Transmission TransmissionConfig `toml:"transmission"`
	Library      LibraryConfig      `toml:"library"`
}

// TelegramConfig holds bot credentials and access control
type TelegramConfig struct {
	// Token is the bot token from @BotFather. The TELEGRAM_BOT_TOKEN
	// environment variable takes precedence when set.
	Token string `toml:"token"`

	// AllowedChats restricts which chat IDs may issue commands.
	// Empty means every chat is accepted.
	AllowedChats []int64 `toml:"allowed_chats"`
}

// JackettConfig holds indexer search API settings
type JackettConfig struct {
	URL string `toml:"url"`

	// APIKey authenticates against the Jackett API. When empty and
	// DataDir is set, the key is read from ServerConfig.json there.
	APIKey  string `toml:"api_key"`
	DataDir string `toml:"data_dir"`
}

// TransmissionConfig holds download-client RPC settings
type TransmissionConfig struct {
	URL string `toml:"url"`

	// Credentials is "user:password" for basic auth, empty to disable.
	Credentials string `toml:"credentials"`

	// TVPath and MoviePath are the download directories passed to
	// torrent-add per media kind.
	TVPath    string `toml:"tv_path"`
	MoviePath string `toml:"movie_path"`
}

// LibraryConfig holds the library roots the restructure workflow
// scans and reorganizes. Empty values fall back to the corresponding
// Transmission download paths.
type LibraryConfig struct {
	TVPath    string `toml:"tv_path"`
	MoviePath string `toml:"movie_path"`
}

// TVRoot returns the restructure root for TV shows.
func (c Config) TVRoot() string {
	if c.Library.TVPath != "" {
		return c.Library.TVPath
	}
	return c.Transmission.TVPath
}

// MovieRoot returns the restructure root for movies.
func (c Config) MovieRoot() string {
	if c.Library.MoviePath != "" {
		return c.Library.MoviePath
	}
	return c.Transmission.MoviePath
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Jackett: JackettConfig{
			URL: "http://localhost:9117",
		},
		Transmission: TransmissionConfig{
			URL: "http://localhost:9091",
		},
	}
}

// Path returns the path to the config file
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "couchpilot", "config.toml")
}

// Load reads config from disk or returns defaults
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads config from an explicit path, applying environment
// overrides afterwards.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		// No config file, run on defaults and environment
		applyEnv(&cfg)
		return cfg, nil
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes config to disk
func Save(cfg Config) error {
	path := Path()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// applyEnv lets credentials come from the environment instead of
// living in a file on disk.
func applyEnv(cfg *Config) {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if key := os.Getenv("JACKETT_TOKEN"); key != "" {
		cfg.Jackett.APIKey = key
	}
	if creds := os.Getenv("TRANSMISSION_CREDENTIALS"); creds != "" {
		cfg.Transmission.Credentials = creds
	}
}
