// Package config centralizes concertus's runtime configuration, read from
// built-in defaults, a config file, and environment variables via spf13/viper, matching
// the layered-configuration convention the rest of the example pack uses
// for viper-backed CLIs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration for the player.
type Config struct {
	DeviceIndex    int      `mapstructure:"device_index"`
	OutputRate     int      `mapstructure:"output_rate"`
	OutputChannels int      `mapstructure:"output_channels"`
	LogLevel       string   `mapstructure:"log_level"`
	LibraryRoots   []string `mapstructure:"library_roots"`
	CatalogPath    string   `mapstructure:"catalog_path"`
}

func defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DeviceIndex:    1,
		OutputRate:     44100,
		OutputChannels: 2,
		LogLevel:       "info",
		LibraryRoots:   nil,
		CatalogPath:    filepath.Join(home, ".config", "concertus", "library.db"),
	}
}

// Load reads configuration from (in increasing precedence) built-in
// defaults, a config file named concertus.{yaml,toml,json} on the standard
// search path, and CONCERTUS_-prefixed environment variables.
func Load(explicitPath string) (Config, error) {
	cfg := defaults()

	v := viper.New()
	v.SetConfigName("concertus")
	v.SetEnvPrefix("CONCERTUS")
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "concertus"))
		}
		v.AddConfigPath(".")
	}

	v.SetDefault("device_index", cfg.DeviceIndex)
	v.SetDefault("output_rate", cfg.OutputRate)
	v.SetDefault("output_channels", cfg.OutputChannels)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("catalog_path", cfg.CatalogPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
