// Package config resolves, validates, and defaults sensorctl configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by sensorctl.
type Config struct {
	// Socket is the controller's unix socket path.
	Socket  string        `mapstructure:"socket"`
	// Timeout bounds one exchange when positive; zero waits indefinitely.
	Timeout time.Duration `mapstructure:"timeout"`
	Log     LogConfig     `mapstructure:"log"`
}

// LogConfig controls the optional structured log sink.
type LogConfig struct {
	// File is the rolling log path; empty disables logging.
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Message string
}
