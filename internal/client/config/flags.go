package config

import "github.com/spf13/pflag"

const (
	flagConfig         = "config"
	flagAddr           = "addr"
	flagDB             = "db"
	flagOnlineInterval = "online-interval"
	flagSyncInterval   = "sync-interval"
	flagRemoteTimeout  = "remote-timeout"
	flagMaxRetries     = "max-retries"
	flagLogLevel       = "log-level"
)

// RegisterFlags adds the configuration flags to fs. Their defaults are the
// built-in ones; only flags the user sets override the JSON file.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(flagConfig, "c", "", "path to JSON config file")
	fs.StringP(flagAddr, "a", d.ServerEndpointAddr, "address and port to access server")
	fs.StringP(flagDB, "d", d.DBPath, "path to the local database")
	fs.DurationP(flagOnlineInterval, "i", d.OnlineCheckInterval, "online check interval")
	fs.Duration(flagSyncInterval, d.SyncInterval, "queue processing interval")
	fs.Duration(flagRemoteTimeout, d.RemoteTimeout, "timeout of a single server call")
	fs.Uint64(flagMaxRetries, d.MaxRetries, "extra attempts of a failing sync pass")
	fs.String(flagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
}

// parseFlags copies every flag the user set into cfg.
func parseFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	get := func(name string, apply func() error) {
		if err == nil && fs.Changed(name) {
			err = apply()
		}
	}

	get(flagAddr, func() (e error) { cfg.ServerEndpointAddr, e = fs.GetString(flagAddr); return })
	get(flagDB, func() (e error) { cfg.DBPath, e = fs.GetString(flagDB); return })
	get(flagOnlineInterval, func() (e error) { cfg.OnlineCheckInterval, e = fs.GetDuration(flagOnlineInterval); return })
	get(flagSyncInterval, func() (e error) { cfg.SyncInterval, e = fs.GetDuration(flagSyncInterval); return })
	get(flagRemoteTimeout, func() (e error) { cfg.RemoteTimeout, e = fs.GetDuration(flagRemoteTimeout); return })
	get(flagMaxRetries, func() (e error) { cfg.MaxRetries, e = fs.GetUint64(flagMaxRetries); return })
	get(flagLogLevel, func() (e error) { cfg.LogLevel, e = fs.GetString(flagLogLevel); return })
	return err
}
