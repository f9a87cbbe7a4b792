// Package config loads the newsroom configuration from config.yaml.
// Every setting has a working default so a missing file still yields a
// runnable configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/newsroom/internal/article"
)

// DefaultPath is where the daemon looks for its configuration.
const DefaultPath = "config.yaml"

// Schedules holds the cron expressions driving the daemon loops.
type Schedules struct {
	Discovery string `yaml:"discovery"`
	Research  string `yaml:"research"`
	Review    string `yaml:"review"`
}

// ReporterConfig describes one reporter desk.
type ReporterConfig struct {
	ID       string   `yaml:"id"`
	Category string   `yaml:"category"`
	Enabled  bool     `yaml:"enabled"`
	Priority int      `yaml:"priority"`
	Sources  []string `yaml:"sources,omitempty"`
}

// GenerativeConfig carries the model backend settings. The API key is
// never stored in the file; only the environment variable name is.
type GenerativeConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
}

// Config models config.yaml.
type Config struct {
	ContentDir           string           `yaml:"content_dir"`
	GitEnabled           bool             `yaml:"git_enabled"`
	AutoPublish          bool             `yaml:"auto_publish"`
	QualityThreshold     float64          `yaml:"quality_threshold"`
	AutoApproveThreshold float64          `yaml:"auto_approve_threshold"`
	Schedules            Schedules        `yaml:"schedules"`
	Reporters            []ReporterConfig `yaml:"reporters"`
	Generative           GenerativeConfig `yaml:"generative"`
}

// Default returns the built-in configuration: five reporter desks, git
// enabled, auto-publish off.
func Default() Config {
	return Config{
		ContentDir:           ".",
		GitEnabled:           true,
		AutoPublish:          false,
		QualityThreshold:     7.0,
		AutoApproveThreshold: 9.0,
		Schedules: Schedules{
			Discovery: "0 */6 * * *",
			Research:  "0 0 * * 1",
			Review:    "0 */2 * * *",
		},
		Reporters: []ReporterConfig{
			{ID: "google", Category: string(article.CategoryGoogle), Enabled: true, Priority: 1},
			{ID: "claude", Category: string(article.CategoryClaude), Enabled: true, Priority: 1},
			{ID: "chatgpt", Category: string(article.CategoryChatGPT), Enabled: true, Priority: 1},
			{ID: "grok", Category: string(article.CategoryGrok), Enabled: true, Priority: 2},
			{ID: "qianwen", Category: string(article.CategoryQianwen), Enabled: true, Priority: 2},
		},
		Generative: GenerativeConfig{
			APIKeyEnv: "ANTHROPIC_API_KEY",
		},
	}
}

// Load reads the configuration at path, layering the file over the
// defaults. A missing file returns the defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration back to path.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// EnabledReporters filters the desks down to the enabled ones, in file
// order.
func (c Config) EnabledReporters() []ReporterConfig {
	var out []ReporterConfig
	for _, r := range c.Reporters {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// APIKey resolves the generative API key from the configured environment
// variable.
func (c Config) APIKey() string {
	if c.Generative.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Generative.APIKeyEnv)
}

func (c Config) validate() error {
	if c.QualityThreshold < 0 || c.QualityThreshold > 10 {
		return fmt.Errorf("config: quality_threshold %.1f out of range [0,10]", c.QualityThreshold)
	}
	if c.AutoApproveThreshold < c.QualityThreshold {
		return fmt.Errorf("config: auto_approve_threshold %.1f below quality_threshold %.1f", c.AutoApproveThreshold, c.QualityThreshold)
	}
	seen := map[string]bool{}
	for _, r := range c.Reporters {
		if r.ID == "" {
			return fmt.Errorf("config: reporter with empty id")
		}
		if seen[r.ID] {
			return fmt.Errorf("config: duplicate reporter id %s", r.ID)
		}
		seen[r.ID] = true
		if r.Category == "" {
			return fmt.Errorf("config: reporter %s missing category", r.ID)
		}
	}
	return nil
}
