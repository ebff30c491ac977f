// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game    GameConfig    `toml:"game"`
	Content ContentConfig `toml:"content"`
}

// GameConfig maps scoring and timing settings.
type GameConfig struct {
	TimeLimit       *int `toml:"time-limit"`
	BonusPerSecond  *int `toml:"bonus-per-second"`
	CorrectPoints   *int `toml:"correct-points"`
	IncorrectPoints *int `toml:"incorrect-points"`
	PasswordPoints  *int `toml:"password-points"`
	LeaderboardSize *int `toml:"leaderboard-size"`
	NicknameMax     *int `toml:"nickname-max"`
}

// ContentConfig maps scenario content settings.
type ContentConfig struct {
	Model     *string `toml:"model"`
	APIKeyEnv *string `toml:"api-key-env"`
	Timeout   *int    `toml:"timeout"`
	Offline   *bool   `toml:"offline"`
	Pack      *string `toml:"pack"`
	Retries   *int    `toml:"retries"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
