package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DBPath              string         `json:"db_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SyncInterval        timex.Duration `json:"sync_interval"`
	BackoffMin          timex.Duration `json:"backoff_min"`
	BackoffMax          timex.Duration `json:"backoff_max"`
	MaxRetries          *uint64        `json:"max_retries"`
	RemoteTimeout       timex.Duration `json:"remote_timeout"`
	RefreshTimeout      timex.Duration `json:"refresh_timeout"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays cfg with the values present in the file at path.
func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.SyncInterval, jc.SyncInterval)
	setDuration(&cfg.BackoffMin, jc.BackoffMin)
	setDuration(&cfg.BackoffMax, jc.BackoffMax)
	setDuration(&cfg.RemoteTimeout, jc.RemoteTimeout)
	setDuration(&cfg.RefreshTimeout, jc.RefreshTimeout)
	if jc.MaxRetries != nil {
		cfg.MaxRetries = *jc.MaxRetries
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
