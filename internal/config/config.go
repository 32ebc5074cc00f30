package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/roach88/tiebreak/internal/store"
)

// Environment variable names.
const (
	EnvDB          = "TIEBREAK_DB"
	EnvStorageKey  = "TIEBREAK_STORAGE_KEY"
	EnvAddr        = "TIEBREAK_ADDR"
	EnvLogLevel    = "TIEBREAK_LOG_LEVEL"
	EnvLogFormat   = "TIEBREAK_LOG_FORMAT"
	EnvSeed        = "TIEBREAK_SEED"
	EnvCORSOrigins = "TIEBREAK_CORS_ORIGINS"
)

// Defaults applied when a variable is unset.
const (
	DefaultDB        = "./tiebreak.db"
	DefaultAddr      = ":8080"
	DefaultLogFormat = "text"
)

// Config holds process settings read from the environment.
type Config struct {
	DBPath      string
	StorageKey  string
	Addr        string
	LogLevel    slog.Level
	LogFormat   string
	Seed        *uint64
	CORSOrigins []string
}

// Load reads settings from the environment after loading an optional
// .env file from the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBPath:      orDefault(getenv(EnvDB), DefaultDB),
		StorageKey:  orDefault(getenv(EnvStorageKey), store.DefaultKey),
		Addr:        orDefault(getenv(EnvAddr), DefaultAddr),
		LogFormat:   strings.ToLower(orDefault(getenv(EnvLogFormat), DefaultLogFormat)),
		CORSOrigins: []string{"*"},
	}

	if lvl := getenv(EnvLogLevel); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
		}
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid %s %q: must be text or json", EnvLogFormat, cfg.LogFormat)
	}

	if s := getenv(EnvSeed); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvSeed, err)
		}
		cfg.Seed = &seed
	}

	if origins := getenv(EnvCORSOrigins); origins != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
