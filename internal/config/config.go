package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/Zuo-Peng/wa-contacts/internal/decode"
)

type Config struct {
	InputDir    string   `toml:"input_dir"`
	MessagesCSV string   `toml:"messages_csv"`
	DailyCSV    string   `toml:"daily_csv"`
	Days        int      `toml:"days"`
	Exclude     string   `toml:"exclude"`
	Encodings   []string `toml:"encodings"`
	DBPath      string   `toml:"db_path"` // "" disables the run ledger
	LogLevel    string   `toml:"log_level"`
	LogFormat   string   `toml:"log_format"`
}

// DefaultPath is where Load looks for the config file.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wac", "config.toml"), nil
}

func defaults(home string) *Config {
	return &Config{
		InputDir:    "conversations",
		MessagesCSV: "whatsapp_messages.csv",
		DailyCSV:    "daily_interactions.csv",
		Days:        30,
		Encodings:   append([]string(nil), decode.DefaultEncodings...),
		DBPath:      filepath.Join(home, ".config", "wac", "wac.db"),
		LogLevel:    "info",
		LogFormat:   "console",
	}
}

// Load reads the config file at its default location, if present.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := defaults(home)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if cfg.Days < 0 {
		return nil, fmt.Errorf("config %s: days must not be negative", path)
	}
	if len(cfg.Encodings) == 0 {
		cfg.Encodings = append([]string(nil), decode.DefaultEncodings...)
	}

	// expand ~ in paths
	cfg.InputDir = expandHome(cfg.InputDir, home)
	cfg.MessagesCSV = expandHome(cfg.MessagesCSV, home)
	cfg.DailyCSV = expandHome(cfg.DailyCSV, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
