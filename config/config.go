package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = "codetune.yaml"

// Config matches codetune.yaml.
type Config struct {
	Addr  string      `yaml:"addr"`
	Model ModelConfig `yaml:"model"`
	Limit LimitConfig `yaml:"limit"`
}

// ModelConfig selects and tunes the Ollama backend.
type ModelConfig struct {
	Name           string   `yaml:"name"`
	Endpoint       string   `yaml:"endpoint"`
	Temperature    float64  `yaml:"temperature"`
	MaxTokens      int      `yaml:"max_tokens"`
	TopP           float64  `yaml:"top_p"`
	Stop           []string `yaml:"stop,omitempty"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Debug          bool     `yaml:"debug"`
}

// LimitConfig bounds request throughput. RPS of zero disables limiting.
type LimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Default returns the reference deployment settings.
func Default() *Config {
	return &Config{
		Addr: "127.0.0.1:8000",
		Model: ModelConfig{
			Name:           "qwen2.5-coder:7b",
			Endpoint:       "http://127.0.0.1:11434",
			TimeoutSeconds: 120,
		},
	}
}

// DefaultPath returns codetune.yaml within the given directory.
func DefaultPath(dir string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, configFileName)
}

// Load reads the config or returns defaults when the file is missing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk, creating directories as needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config missing")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
