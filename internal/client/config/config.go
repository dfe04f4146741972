package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the foodlog CLI.
type Config struct {
	ServerEndpointAddr string
	DBPath             string

	// OnlineCheckInterval is how often the server is pinged.
	OnlineCheckInterval time.Duration
	// SyncInterval is how often the queue is processed while online.
	SyncInterval time.Duration

	BackoffMin time.Duration
	BackoffMax time.Duration
	MaxRetries uint64

	RemoteTimeout  time.Duration
	RefreshTimeout time.Duration

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DBPath = "foodlog.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncInterval = time.Minute
	c.BackoffMin = time.Second
	c.BackoffMax = 30 * time.Second
	c.MaxRetries = 3
	c.RemoteTimeout = 10 * time.Second
	c.RefreshTimeout = 30 * time.Second
	c.LogLevel = "info"
}

// Load builds a Config from defaults, then the JSON file named by the config
// flag, then every flag of fs the user set. fs must have been prepared with
// RegisterFlags and parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := fs.GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := parseJson(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseFlags(cfg, fs); err != nil {
		return nil, err
	}
	return cfg, nil
}
