package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model. It captures the target
// instance, the OAuth application descriptor, and local tuning.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	App      AppConfig      `yaml:"app"`
	Timeline TimelineConfig `yaml:"timeline"`
	Storage  StorageConfig  `yaml:"storage"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type InstanceConfig struct {
	// Base URL of the target instance. If empty, read from env TIDEPOOL_INSTANCE.
	BaseURL string `yaml:"baseURL"`
	// Bootstrap token. If empty, read from env TIDEPOOL_TOKEN; the session
	// store takes precedence once a login happened.
	Token string `yaml:"token"`
}

type AppConfig struct {
	ClientName  string `yaml:"clientName"`
	RedirectURI string `yaml:"redirectUri"`
	Scopes      string `yaml:"scopes"`
	Website     string `yaml:"website"`
}

type TimelineConfig struct {
	// Page size for timeline pagination requests.
	PageLimit int `yaml:"pageLimit"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Instance: InstanceConfig{BaseURL: "https://mastodon.social"},
		App: AppConfig{
			ClientName:  "tidepool",
			RedirectURI: "urn:ietf:wg:oauth:2.0:oob",
			Scopes:      "read",
		},
		Timeline: TimelineConfig{PageLimit: 50},
		Storage:  StorageConfig{DBPath: "./tidepool.db"},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Instance.BaseURL == "" {
		c.Instance.BaseURL = os.Getenv("TIDEPOOL_INSTANCE")
	}
	if c.Instance.Token == "" {
		c.Instance.Token = os.Getenv("TIDEPOOL_TOKEN")
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("TIDEPOOL_METRICS_ADDR")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	if cfg.Timeline.PageLimit <= 0 {
		cfg.Timeline.PageLimit = Default().Timeline.PageLimit
	}
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
