package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ClaudeRoot   string `toml:"claude_root"`
	DBPath       string `toml:"db_path"`
	Truncate     int    `toml:"truncate"`
	LargeSession int    `toml:"large_session"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ClaudeRoot:   filepath.Join(home, ".claude", "projects"),
		DBPath:       filepath.Join(home, ".config", "ccview", "ccview.db"),
		Truncate:     2000,
		LargeSession: 500,
	}

	cfgPath := filepath.Join(home, ".config", "ccview", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	cfg.ClaudeRoot = expandHome(cfg.ClaudeRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
