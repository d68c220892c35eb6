// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" env-default:"8080" validate:"required,numeric"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL" validate:"required"`

	// LogLevel controls the minimum log level: debug, info, warn or error.
	LogLevel string `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to the Vite dev server. Set CORS_ORIGINS to a comma-separated
	// list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" env-default:"http://localhost:5173" env-separator:","`

	// RedisAddr enables the shared Redis facet cache when set.
	// Empty means an in-process cache.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0" validate:"gte=0"`

	// FacetCacheTTL bounds how stale the location and club lists can get.
	FacetCacheTTL time.Duration `env:"FACET_CACHE_TTL" env-default:"5m" validate:"gt=0"`

	// MaxBodyBytes caps request bodies, images included.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" env-default:"10485760" validate:"gt=0"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming every variable that is missing or invalid.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	if err := newValidator().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", describe(err))
	}
	return cfg, nil
}

// newValidator reports fields by their env variable name, not the Go name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fe.Field()+" is required")
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s is invalid (%s%s)", fe.Field(), fe.Tag(), paramSuffix(fe.Param())))
		}
	}
	return fmt.Errorf("invalid environment: %s", strings.Join(problems, "; "))
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// trimAll trims every entry and drops the empty ones.
func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
