package storage

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAPIBase = "https://api.github.com"
	defaultRawBase = "https://raw.githubusercontent.com"
	defaultBranch  = "main"
	defaultDir     = "snapshots"
	defaultTimeout = 15 * time.Second
)

// Config describes the snapshot store: a GitHub repository addressed
// through the contents API, with unauthenticated raw reads.
type Config struct {
	// Repo is the "owner/name" repository slug.
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
	// Dir is the directory snapshots are written under.
	Dir string `yaml:"dir"`
	// Token enables writes. Empty token puts the gateway in dry-run mode.
	Token   string `yaml:"token"`
	APIBase string `yaml:"api_base"`
	RawBase string `yaml:"raw_base"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

// LoadConfig reads storage configuration from a YAML file. Values may
// reference environment variables with ${VAR} syntax.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("storage config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &cfg); err != nil {
		return nil, fmt.Errorf("storage config: parse %s: %w", path, err)
	}
	if err := cfg.Normalise(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalise applies defaults, parses the timeout and validates the
// repository slug.
func (c *Config) Normalise() error {
	if c.Branch == "" {
		c.Branch = defaultBranch
	}
	if c.Dir == "" {
		c.Dir = defaultDir
	}
	c.Dir = strings.Trim(c.Dir, "/")
	if c.APIBase == "" {
		c.APIBase = defaultAPIBase
	}
	if c.RawBase == "" {
		c.RawBase = defaultRawBase
	}
	c.APIBase = strings.TrimRight(c.APIBase, "/")
	c.RawBase = strings.TrimRight(c.RawBase, "/")
	c.Timeout = defaultTimeout
	if c.TimeoutRaw != "" {
		d, err := time.ParseDuration(c.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("storage config: invalid timeout %q: %w", c.TimeoutRaw, err)
		}
		if d > 0 {
			c.Timeout = d
		}
	}
	return c.Validate()
}

// Validate checks the repository slug shape.
func (c *Config) Validate() error {
	if c.Repo == "" {
		return fmt.Errorf("storage config: repo cannot be empty")
	}
	parts := strings.Split(c.Repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("storage config: repo must be owner/name, got %q", c.Repo)
	}
	return nil
}

// SnapshotPath returns the store path for a (date, mode) pair.
func (c *Config) SnapshotPath(date, mode string) string {
	return fmt.Sprintf("%s/%s_%s.json", c.Dir, date, mode)
}
