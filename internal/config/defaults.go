package config

import (
	"github.com/rbright/sensorctl/internal/ipc"
	"github.com/spf13/viper"
)

// Default returns the canonical runtime configuration used when no file is given.
func Default() Config {
	return Config{
		Socket:  ipc.DefaultSocketPath,
		Timeout: 0,
		Log: LogConfig{
			File:       "",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func loadDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("socket", d.Socket)   // Controller socket path
	v.SetDefault("timeout", d.Timeout) // Exchange deadline, e.g. "2s" (0 to wait indefinitely)

	v.SetDefault("log.file", d.Log.File)               // Path to rolling JSON log, else no logging
	v.SetDefault("log.level", d.Log.Level)             // debug, info, warn, error
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)   // Maximum size, in MB, before rolling
	v.SetDefault("log.max_backups", d.Log.MaxBackups)  // Maximum number of rolled logs to keep
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays) // Maximum age, in days, to keep rolled logs
}

// knownKeys lists every key a config file may set.
var knownKeys = map[string]struct{}{
	"socket":           {},
	"timeout":          {},
	"log.file":         {},
	"log.level":        {},
	"log.max_size_mb":  {},
	"log.max_backups":  {},
	"log.max_age_days": {},
}

// flagKeys maps config keys to the CLI flags that override them.
var flagKeys = map[string]string{
	"socket":    "socket",
	"timeout":   "timeout",
	"log.file":  "log",
	"log.level": "log-level",
}
