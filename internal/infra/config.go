package infra

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultHistoryCapacity bounds the in-memory transaction history when the
// config does not say otherwise.
const DefaultHistoryCapacity = 10_000

// Config holds all application settings. Loaded from YAML, then overridden
// by environment variables so deployments can tweak without editing files.
type Config struct {
	Engine struct {
		HistoryCapacity int `yaml:"history_capacity"`
		InboxSize       int `yaml:"inbox_size"`
	} `yaml:"engine"`

	Archive struct {
		Path string `yaml:"path"` // empty disables the fallback store
	} `yaml:"archive"`

	Feed struct {
		URL string `yaml:"url"` // empty disables live mode
	} `yaml:"feed"`

	Log struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`

	Metrics struct {
		Addr string `yaml:"addr"` // empty disables the metrics server
	} `yaml:"metrics"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Engine.HistoryCapacity = DefaultHistoryCapacity
	cfg.Engine.InboxSize = 1024
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// LoadConfig reads the YAML file at path and applies env overrides.
// A missing file is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				applyEnvOverrides(cfg)
				return cfg, nil
			}
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Engine.HistoryCapacity < 1 {
		cfg.Engine.HistoryCapacity = DefaultHistoryCapacity
	}
	if cfg.Engine.InboxSize < 1 {
		cfg.Engine.InboxSize = 1024
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PAYENGINE_HISTORY_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.HistoryCapacity = n
		}
	}
	if v := os.Getenv("PAYENGINE_ARCHIVE_PATH"); v != "" {
		cfg.Archive.Path = v
	}
	if v := os.Getenv("PAYENGINE_FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("PAYENGINE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PAYENGINE_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}
