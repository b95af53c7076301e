package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load builds the effective configuration. Precedence (highest to lowest):
//  1. Environment variables (PARLEY_SERVER_LISTEN, PARLEY_OLLAMA_HOST, ...)
//  2. config.toml values (from configDir, or ~/.parley then the working dir)
//  3. Defaults from NewDefaultConfig()
//
// OLLAMA_HOST is honored without the PARLEY_ prefix for parity with the
// Ollama tooling.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	if configDir != "" {
		v.AddConfigPath(configDir)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".parley"))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("PARLEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("ollama.host", "PARLEY_OLLAMA_HOST", "OLLAMA_HOST"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults from NewDefaultConfig() using dotted-key
// notation, keeping config.go the single source of truth.
func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("backend.kind", d.Backend.Kind)
	v.SetDefault("huggingface.url", d.HuggingFace.URL)
	v.SetDefault("ollama.host", d.Ollama.Host)
	v.SetDefault("ollama.model", d.Ollama.Model)
}
