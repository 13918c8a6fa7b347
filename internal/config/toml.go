// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	View   ViewConfig    `toml:"view"`
	Tracks []TrackConfig `toml:"tracks"`
}

// ViewConfig maps viewer-related settings.
type ViewConfig struct {
	MapSize    *float64 `toml:"map-size"`
	Channels   *string  `toml:"channels"`
	PlotHeight *int     `toml:"plot-height"`
}

// TrackConfig overrides built-in track metadata.
type TrackConfig struct {
	ID       string   `toml:"id"`
	Name     string   `toml:"name"`
	Rotation *float64 `toml:"rotation"`
	Image    string   `toml:"image"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	for i, tr := range cfg.Tracks {
		if tr.ID == "" {
			return FileConfig{}, fmt.Errorf("tracks[%d]: missing id", i)
		}
	}
	return cfg, nil
}

// DefaultFileContent is written when the config command creates a new file.
const DefaultFileContent = `# lapview configuration

[view]
# map-size = 800
# channels = "speed,throttle,brake"
# plot-height = 8

# [[tracks]]
# id = "monza"
# rotation = -95.0
# image = "monza-n.svg"
`
