// Package config loads application settings from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is everything the terminal build needs to wire a session.
type Config struct {
	// Content is the path to the game catalog.
	Content string `yaml:"content" env:"SOVIET_CONTENT" env-default:"content/game.yaml"`
	// Save is the sqlite snapshot path; empty plays without persistence.
	Save string `yaml:"save" env:"SOVIET_SAVE" env-default:"soviet.db"`
	// Player is the display name used in transcripts.
	Player string `yaml:"player" env:"SOVIET_PLAYER" env-default:"Comrade President"`
	Log    Log    `yaml:"log"`
}

// Log configures zerolog output.
type Log struct {
	Level  string `yaml:"level" env:"SOVIET_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"SOVIET_LOG_FORMAT" env-default:"console"`
}

// Load reads the config file at path when it exists, then applies env
// overrides. A missing file is fine; env and defaults carry it.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
			return cfg, nil
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env config: %w", err)
	}
	return cfg, nil
}
