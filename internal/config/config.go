// Package config loads server configuration from a file, the environment
// and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/recq/internal/collection"
)

// EnvPrefix is the prefix of environment overrides (RECQ_ADDR, RECQ_DB, ...).
const EnvPrefix = "RECQ"

// Config holds server configuration.
type Config struct {
	// Addr is the listen address.
	Addr string

	// DB is the path of the SQLite snapshot store.
	DB string

	// DefaultCollection is served at GET /records.
	DefaultCollection string

	// FuzzyThreshold applies to fuzzy searches that set no threshold.
	FuzzyThreshold float64

	// MaxLimit caps the page size; 0 disables the cap.
	MaxLimit int
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Addr:           ":8080",
		DB:             "recq.db",
		FuzzyThreshold: collection.DefaultThreshold,
		MaxLimit:       500,
	}
}

// Load reads configuration in increasing precedence: defaults, the YAML
// file at path (skipped if path is empty), RECQ_* environment variables,
// then flags that were explicitly set. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("db", d.DB)
	v.SetDefault("default_collection", d.DefaultCollection)
	v.SetDefault("fuzzy_threshold", d.FuzzyThreshold)
	v.SetDefault("max_limit", d.MaxLimit)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for _, key := range []string{"addr", "db", "default-collection", "fuzzy-threshold", "max-limit"} {
			f := flags.Lookup(key)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(strings.ReplaceAll(key, "-", "_"), f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", key, err)
			}
		}
	}

	cfg := Config{
		Addr:              v.GetString("addr"),
		DB:                v.GetString("db"),
		DefaultCollection: v.GetString("default_collection"),
		FuzzyThreshold:    v.GetFloat64("fuzzy_threshold"),
		MaxLimit:          v.GetInt("max_limit"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr must not be empty")
	}
	if err := collection.CheckThreshold(c.FuzzyThreshold); err != nil {
		return fmt.Errorf("config: fuzzy_threshold: %w", err)
	}
	if c.MaxLimit < 0 {
		return fmt.Errorf("config: max_limit must be >= 0, got %d", c.MaxLimit)
	}
	return nil
}
