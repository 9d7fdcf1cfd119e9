package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Backend names accepted by Config.Backend.
const (
	BackendMem    = "mem"
	BackendBadger = "badger"
)

type Config struct {
	// Backend selects the transactional store implementation.
	Backend  string
	LogLevel string

	// DBPath is the directory the badger backend stores data in. Should exist
	// and be writable.
	DBPath string

	// Badger tuning knobs, only read by the badger backend.
	SyncWrites     bool
	ValueThreshold int
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMem:
	case BackendBadger:
		if c.DBPath == "" {
			return fmt.Errorf("badger backend requires a db path")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Backend)
	}
	return nil
}

func getLogLevel() (logLevel string) {
	logLevel = "info"
	if l := os.Getenv("LOG_LEVEL"); len(l) != 0 {
		logLevel = l
	}
	return
}

func NewDefaultConfig() *Config {
	return &Config{
		Backend:        BackendBadger,
		LogLevel:       getLogLevel(),
		DBPath:         "/tmp/gridkv",
		SyncWrites:     true,
		ValueThreshold: 256,
	}
}

func NewTestConfig() *Config {
	return &Config{
		Backend:        BackendMem,
		LogLevel:       getLogLevel(),
		SyncWrites:     false,
		ValueThreshold: 256,
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	c := NewDefaultConfig()
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
