// Package config loads runtime configuration for the foodlog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or --config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "db_path": "foodlog.db",
//	  "online_check_interval": "3s",
//	  "sync_interval": "1m",
//	  "backoff_min": "1s",
//	  "backoff_max": "30s",
//	  "max_retries": 3,
//	  "remote_timeout": "10s",
//	  "refresh_timeout": "30s",
//	  "log_level": "info"
//	}
//
// Fields missing from the file keep their previous value.
package config
