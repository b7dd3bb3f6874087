package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

var validLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Socket) == "" {
		return nil, fmt.Errorf("socket must not be empty")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0")
	}
	if _, ok := validLevels[strings.ToLower(strings.TrimSpace(cfg.Log.Level))]; !ok {
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	if cfg.Log.MaxSizeMB <= 0 {
		return nil, fmt.Errorf("log.max_size_mb must be > 0")
	}
	if cfg.Log.MaxBackups < 0 {
		return nil, fmt.Errorf("log.max_backups must be >= 0")
	}
	if cfg.Log.MaxAgeDays < 0 {
		return nil, fmt.Errorf("log.max_age_days must be >= 0")
	}

	if !filepath.IsAbs(cfg.Socket) {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("socket path %q is relative; it resolves against the working directory", cfg.Socket),
		})
	}

	return warnings, nil
}
