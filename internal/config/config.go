// Package config reads server settings from CURRICULUM_* environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"curriculum/internal/domain/unlock"
)

// Env prefix for every setting.
const Prefix = "CURRICULUM_"

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ErrMissingCSRFKey is returned in production when no CSRF key is configured.
var ErrMissingCSRFKey = errors.New("CURRICULUM_CSRF_KEY must be set in production")

var validate = validator.New()

// Config is the validated server configuration.
type Config struct {
	Addr         string        `validate:"required,hostname_port"`
	DBPath       string        `validate:"required"`
	CatalogPath  string        `validate:"omitempty,filepath"`
	Env          string        `validate:"oneof=development production"`
	UnlockMode   unlock.Mode   `validate:"oneof=direct transitive"`
	RejectCycles bool
	CSRFKey      []byte        `validate:"omitempty,len=32"`
	RateLimit    int           `validate:"min=1,max=10000"` // mutating requests per minute per IP
	SlowQuery    time.Duration `validate:"gt=0"`
	SlowRequest  time.Duration `validate:"gt=0"`
}

// Production reports whether the server runs in production mode.
func (c *Config) Production() bool { return c.Env == EnvProduction }

// Lookup reads one variable; os.LookupEnv in production, a map in tests.
type Lookup func(key string) (string, bool)

// Load reads the configuration from the process environment.
// PRE: none
// POST: returns a validated Config or an error naming the offending variable
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads the configuration through lookup.
// PRE: lookup is non-nil
// POST: unset variables take their defaults
func LoadFrom(lookup Lookup) (Config, error) {
	get := func(name, fallback string) string {
		if v, ok := lookup(Prefix + name); ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Addr:        get("ADDR", ":8080"),
		DBPath:      get("DB_PATH", "curriculum.db"),
		CatalogPath: get("CATALOG_PATH", ""),
		Env:         get("ENV", EnvDevelopment),
	}

	mode, err := unlock.ParseMode(get("UNLOCK_MODE", string(unlock.ModeDirect)))
	if err != nil {
		return Config{}, fmt.Errorf("%sUNLOCK_MODE: %w", Prefix, err)
	}
	cfg.UnlockMode = mode

	if cfg.RejectCycles, err = strconv.ParseBool(get("REJECT_CYCLES", "false")); err != nil {
		return Config{}, fmt.Errorf("%sREJECT_CYCLES: %w", Prefix, err)
	}
	if cfg.RateLimit, err = strconv.Atoi(get("RATE_LIMIT", "120")); err != nil {
		return Config{}, fmt.Errorf("%sRATE_LIMIT: %w", Prefix, err)
	}
	if cfg.SlowQuery, err = millis(get("SLOW_QUERY_MS", "50")); err != nil {
		return Config{}, fmt.Errorf("%sSLOW_QUERY_MS: %w", Prefix, err)
	}
	if cfg.SlowRequest, err = millis(get("SLOW_REQUEST_MS", "200")); err != nil {
		return Config{}, fmt.Errorf("%sSLOW_REQUEST_MS: %w", Prefix, err)
	}
	if key := get("CSRF_KEY", ""); key != "" {
		if cfg.CSRFKey, err = hex.DecodeString(key); err != nil {
			return Config{}, fmt.Errorf("%sCSRF_KEY: must be hex: %w", Prefix, err)
		}
	}

	if err := validate.Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Production() && len(cfg.CSRFKey) == 0 {
		return Config{}, ErrMissingCSRFKey
	}
	return cfg, nil
}

func millis(s string) (time.Duration, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}
