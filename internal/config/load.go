package config

import (
	"fmt"
	"sort"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loaded captures the config file path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
}

// Load builds the runtime configuration from defaults, the explicit config
// file (when path is non-empty), and any changed flags in flags.
//
// No environment variables or implicit search paths are consulted.
func Load(path string, flags *pflag.FlagSet) (Loaded, error) {
	v := viper.New()
	loadDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigParseError); ok {
				return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
			}
			return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Loaded{}, fmt.Errorf("bind flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Loaded{}, fmt.Errorf("decode config %q: %w", path, err)
	}

	warnings := unknownKeyWarnings(v.AllKeys())
	validated, err := Validate(cfg)
	if err != nil {
		return Loaded{}, err
	}
	warnings = append(warnings, validated...)

	return Loaded{Path: path, Config: cfg, Warnings: warnings}, nil
}

func unknownKeyWarnings(keys []string) []Warning {
	sort.Strings(keys)
	warnings := make([]Warning, 0)
	for _, key := range keys {
		if _, ok := knownKeys[key]; ok {
			continue
		}
		warnings = append(warnings, Warning{Message: fmt.Sprintf("unknown config key %q ignored", key)})
	}
	return warnings
}
