package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultServerURL = "ws://localhost:8080/ws"

// Logging configures the client's structured log sinks.
type Logging struct {
	Sinks        []string `yaml:"sinks"`
	JSONFilePath string   `yaml:"jsonFilePath"`
	Debug        bool     `yaml:"debug"`
}

// Config captures the client toggles read at startup.
type Config struct {
	ServerURL   string  `yaml:"serverURL"`
	MaxPending  int     `yaml:"maxPending"`
	JournalPath string  `yaml:"journalPath"`
	Logging     Logging `yaml:"logging"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		ServerURL:  defaultServerURL,
		MaxPending: 50,
		Logging: Logging{
			Sinks: []string{"console"},
		},
	}
}

// Load reads and normalizes a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.Normalized(), nil
}

// Normalized returns a config with defaults applied.
func (c Config) Normalized() Config {
	normalized := c
	normalized.ServerURL = strings.TrimSpace(normalized.ServerURL)
	if normalized.ServerURL == "" {
		normalized.ServerURL = defaultServerURL
	}
	if normalized.MaxPending <= 0 {
		normalized.MaxPending = 50
	}
	if len(normalized.Logging.Sinks) == 0 {
		normalized.Logging.Sinks = []string{"console"}
	}
	return normalized
}
