package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type fileView struct {
	Socket  string      `yaml:"socket"`
	Timeout string      `yaml:"timeout"`
	Log     logFileView `yaml:"log"`
}

type logFileView struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Render returns cfg as a YAML document that Load accepts back.
func Render(cfg Config) ([]byte, error) {
	view := fileView{
		Socket:  cfg.Socket,
		Timeout: cfg.Timeout.String(),
		Log: logFileView{
			File:       cfg.Log.File,
			Level:      cfg.Log.Level,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		},
	}
	out, err := yaml.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	return out, nil
}
