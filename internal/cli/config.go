package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/graphview/pkg/source/mongo"
)

// Config is the on-disk configuration, loaded from a TOML file. Every field
// has a usable default so the file is optional; command-line flags override
// whatever the file sets.
type Config struct {
	Source  SourceConfig  `toml:"source"`
	Storage StorageConfig `toml:"storage"`
	Serve   ServeConfig   `toml:"serve"`
	Mongo   MongoConfig   `toml:"mongo"`
}

// SourceConfig names the default data source.
type SourceConfig struct {
	Type       string `toml:"type"`       // "file", "mongo"
	Descriptor string `toml:"descriptor"` // path or connection URI
}

// StorageConfig selects the view-state backend.
type StorageConfig struct {
	Backend string      `toml:"backend"` // "file" (default), "redis", "memory"
	Dir     string      `toml:"dir"`     // file backend directory, default XDG state dir
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// MongoConfig configures the MongoDB source adapter.
type MongoConfig struct {
	Database string `toml:"database"`
	Nodes    string `toml:"nodes"`
	Edges    string `toml:"edges"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Source:  SourceConfig{Type: "file"},
		Storage: StorageConfig{Backend: "file", Redis: RedisConfig{Addr: "localhost:6379"}},
		Serve:   ServeConfig{Addr: ":8080"},
	}
}

// LoadConfig reads the TOML config at path, falling back to the default
// location. A missing file is not an error; the defaults apply.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveSource merges command-line overrides with the configured source.
// A non-empty flag wins over the file.
func (c *Config) resolveSource(sourceType, descriptor string) (string, string) {
	st, desc := c.Source.Type, c.Source.Descriptor
	if sourceType != "" {
		st = sourceType
	}
	if descriptor != "" {
		desc = descriptor
	}
	if st == "" {
		st = "file"
	}
	return st, desc
}

// mongoConfig maps the config section onto the adapter's settings, keeping
// the adapter's defaults for anything left empty.
func (c *Config) mongoConfig() mongo.Config {
	cfg := mongo.Config{Database: c.Mongo.Database}
	if c.Mongo.Nodes != "" {
		cfg.Nodes = c.Mongo.Nodes
	}
	if c.Mongo.Edges != "" {
		cfg.Edges = c.Mongo.Edges
	}
	return cfg
}
