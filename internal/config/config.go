package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"

	"bybitsnap/pkg/confkit"
	marketpkg "bybitsnap/pkg/market"
	notifypkg "bybitsnap/pkg/notify"
	snapshotpkg "bybitsnap/pkg/snapshot"
	storagepkg "bybitsnap/pkg/storage"
)

// Config is the top level application configuration. The storage and
// market sections live in their own files next to the main config; the
// snapshot and notify sections are small enough to stay inline.
type Config struct {
	rest.RestConf
	// Env indicates the running environment: test | dev | prod.
	Env string `json:",default=test"`
	// ProxyToken gates the read proxy when non-empty.
	ProxyToken string `json:",optional"`

	Storage confkit.Section[storagepkg.Config] `json:",optional"`
	Market  confkit.Section[marketpkg.Config]  `json:",optional"`

	Snapshot snapshotpkg.Config `json:",optional"`
	Notify   notifypkg.Config   `json:",optional"`

	mainPath string
	baseDir  string
}

// IsTestEnv reports whether the app runs in the default test environment.
func (c *Config) IsTestEnv() bool {
	return c.Env == "test" || c.Env == ""
}

// BaseDir returns the directory holding the main config file.
func (c *Config) BaseDir() string {
	return c.baseDir
}

// MustLoad is Load or panic.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the main config file, hydrates the section files and
// normalises the inline sections.
func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated fields and the inline sections.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "test", "dev", "prod":
		if strings.TrimSpace(c.Env) == "" {
			c.Env = "test"
		}
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	return c.Snapshot.Normalise()
}

func (c *Config) hydrateSections() error {
	base := c.baseDir
	if err := c.Storage.Hydrate(base, storagepkg.LoadConfig); err != nil {
		return fmt.Errorf("config: hydrate storage section: %w", err)
	}
	if err := c.Market.Hydrate(base, marketpkg.LoadConfig); err != nil {
		return fmt.Errorf("config: hydrate market section: %w", err)
	}
	return nil
}
