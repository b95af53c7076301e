// Package config loads parley configuration from defaults, an optional
// config.toml, and PARLEY_-prefixed environment variables.
package config

import (
	"github.com/hallwaylabs/parley/pkg/backend/huggingface"
	"github.com/hallwaylabs/parley/pkg/backend/ollama"
)

// ServerConfig configures the web chat server.
type ServerConfig struct {
	// Listen is the address the server binds to (e.g. ":8090").
	Listen string `mapstructure:"listen"`
}

// BackendConfig selects which inference backend serves chat requests.
type BackendConfig struct {
	// Kind is "huggingface" or "ollama".
	Kind string `mapstructure:"kind"`
}

// HuggingFaceConfig configures the hosted inference API backend.
type HuggingFaceConfig struct {
	// URL is the full model endpoint URL.
	URL string `mapstructure:"url"`
}

// OllamaConfig configures the local inference server backend.
type OllamaConfig struct {
	// Host is the Ollama host name (no scheme, no port).
	Host string `mapstructure:"host"`

	// Model is the default model identifier.
	Model string `mapstructure:"model"`
}

// Config is the full parley configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Backend     BackendConfig     `mapstructure:"backend"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
	Ollama      OllamaConfig      `mapstructure:"ollama"`
}

// NewDefaultConfig returns the configuration used when nothing else is set.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen: ":8090",
		},
		Backend: BackendConfig{
			Kind: "ollama",
		},
		HuggingFace: HuggingFaceConfig{
			URL: huggingface.DefaultURL,
		},
		Ollama: OllamaConfig{
			Host:  ollama.DefaultHost,
			Model: ollama.DefaultModel,
		},
	}
}
