package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix shared by all configuration environment variables.
const EnvPrefix = "COMIX"

// Default values applied before any source is read.
var defaults = map[string]interface{}{
	"server.port":             8080,
	"server.log_level":        "info",
	"server.library_root":     ".",
	"runtime.worker_count":    2,
	"runtime.queue_size":      64,
	"runtime.inline":          false,
	"engine.hash_algorithm":   "blake2b",
	"engine.resize_filter":    "catmullrom",
	"engine.max_image_pixels": 64 << 20,
	"engine.max_entry_bytes":  int64(256 << 20),
}

// Load reads configuration from environment variables only.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from the given file (if non-empty) and from
// environment variables. Environment variables take precedence over values from
// the file.
func LoadFile(path string) (*Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

// NewViper returns a viper instance with defaults and environment binding set
// up. Callers may bind command line flags to it before calling FromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("config validation failed: %w", verrs)
		}
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
