package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Store backends.
const (
	storeMemory = "memory"
	storeJSONL  = "jsonl"
	storeMongo  = "mongo"
)

// Cache backends.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// Config is the TOML configuration file. All fields have working
// defaults, so a missing file is not an error.
type Config struct {
	// Actor is recorded on every event this machine appends.
	Actor string `toml:"actor"`

	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// StoreConfig selects the event log backend.
type StoreConfig struct {
	// Backend is one of "jsonl" (default), "memory", or "mongo".
	Backend string `toml:"backend"`
	// Dir is the JSONL log directory; empty uses the XDG data dir.
	Dir   string      `toml:"dir"`
	Mongo MongoConfig `toml:"mongo"`
}

// MongoConfig configures the mongo store backend.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	// Backend is one of "file" (default), "redis", or "none".
	Backend string `toml:"backend"`
	// Dir is the file cache directory; empty uses the XDG cache dir.
	Dir   string      `toml:"dir"`
	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr string `toml:"addr"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: storeJSONL,
			Mongo: MongoConfig{
				URI:      "mongodb://localhost:27017",
				Database: appName,
			},
		},
		Cache: CacheConfig{
			Backend: cacheFile,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields the defaults; a malformed file is
// an error. Values absent from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if path == "" {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case storeMemory, storeJSONL, storeMongo:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Cache.Backend {
	case cacheFile, cacheRedis, cacheNone:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}
