// Package config loads process configuration from WASTEADMIN_* environment variables
// (and a .env file when present).
//
// Nesting uses a double underscore: WASTEADMIN_SERVER__ADDR maps to server.addr.
// Lists are comma separated.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "WASTEADMIN_"

type Config struct {
	Env         string            `koanf:"env" validate:"required,oneof=local development test staging production"`
	Server      ServerConfig      `koanf:"server"`
	Auth        AuthConfig        `koanf:"auth"`
	Storage     StorageConfig     `koanf:"storage"`
	Redis       RedisConfig       `koanf:"redis"`
	Email       EmailConfig       `koanf:"email"`
	Onboarding  OnboardingConfig  `koanf:"onboarding"`
	CORS        CORSConfig        `koanf:"cors"`
	Logging     LoggingConfig     `koanf:"logging"`
	Directory   DirectoryConfig   `koanf:"directory"`
	Idempotency IdempotencyConfig `koanf:"idempotency"`
}

type ServerConfig struct {
	Addr              string        `koanf:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type AuthConfig struct {
	// Mode is jwt (bearer tokens), dev (X-Debug-Subject header) or none.
	Mode string    `koanf:"mode" validate:"required,oneof=jwt dev none"`
	JWT  JWTConfig `koanf:"jwt"`
	// DevSubject is used when mode=dev and the request carries no X-Debug-Subject.
	DevSubject string `koanf:"dev_subject"`
	DevIssuer  string `koanf:"dev_issuer"`
}

// Issuer scopes persisted per-subject data such as idempotency records.
func (a AuthConfig) Issuer() string {
	if a.Mode == "jwt" {
		return a.JWT.Issuer
	}
	return a.DevIssuer
}

type StorageConfig struct {
	Backend     string `koanf:"backend" validate:"required,oneof=memory postgres"`
	DatabaseURL string `koanf:"database_url"`
	MaxConns    int32  `koanf:"max_conns" validate:"gte=0"`
	TraceSQL    bool   `koanf:"trace_sql"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

type RedisConfig struct {
	// Addr enables Redis (queued notifications and readiness) when set.
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

type EmailConfig struct {
	// Provider is none, log or resend.
	Provider     string `koanf:"provider" validate:"required,oneof=none log resend"`
	ResendAPIKey string `koanf:"resend_api_key"`
	From         string `koanf:"from" validate:"required"`
	// Async queues messages through Redis instead of sending inline.
	Async       bool `koanf:"async"`
	Concurrency int  `koanf:"concurrency" validate:"gt=0"`
}

type OnboardingConfig struct {
	CallingCode      string   `koanf:"calling_code" validate:"required,startswith=+"`
	PlatePattern     string   `koanf:"plate_pattern" validate:"required"`
	NameScope        string   `koanf:"name_scope" validate:"required,oneof=local council global"`
	AllowedDistricts []string `koanf:"allowed_districts"`
	RequireEmail     bool     `koanf:"require_email"`
	RequirePhone     bool     `koanf:"require_phone"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=json console"`
}

type DirectoryConfig struct {
	// SeedFile is a JSON array of {municipalCouncil, district, ward} loaded at startup.
	SeedFile string `koanf:"seed_file"`
}

type IdempotencyConfig struct {
	Retention     time.Duration `koanf:"retention" validate:"gt=0"`
	PurgeInterval time.Duration `koanf:"purge_interval" validate:"gt=0"`
}

// Default returns the configuration used when no environment overrides are present.
func Default() Config {
	return Config{
		Env: "local",
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Auth: AuthConfig{
			Mode:       "jwt",
			JWT:        defaultJWTConfig(),
			DevSubject: "dev|local",
			DevIssuer:  "dev",
		},
		Storage: StorageConfig{Backend: "memory", AutoMigrate: true},
		Email: EmailConfig{
			Provider:    "log",
			From:        "VateLanka - Waste Management System <no-reply@vatelanka.lk>",
			Concurrency: 5,
		},
		Onboarding: OnboardingConfig{
			CallingCode:  "+94",
			PlatePattern: `^WP [A-Z]{2}-\d{4}$`,
			NameScope:    "local",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"https://vatelanka.lk",
				"https://vate-lanka-lk.vercel.app",
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Idempotency: IdempotencyConfig{
			Retention:     24 * time.Hour,
			PurgeInterval: time.Hour,
		},
	}
}

// Load reads WASTEADMIN_* variables over Default and validates the result.
func Load() (Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORS.AllowedOrigins = trimAll(cfg.CORS.AllowedOrigins)
	cfg.Onboarding.AllowedDistricts = trimAll(cfg.Onboarding.AllowedDistricts)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct tags plus the cross-field rules tags cannot express.
func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Auth.Mode == "jwt" {
		if err := c.Auth.JWT.requireComplete(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	if c.Storage.Backend == "postgres" && c.Storage.DatabaseURL == "" {
		return fmt.Errorf("invalid config: storage.backend=postgres requires storage.database_url")
	}
	if c.Email.Provider == "resend" && c.Email.ResendAPIKey == "" {
		return fmt.Errorf("invalid config: email.provider=resend requires email.resend_api_key")
	}
	if c.Email.Async && c.Redis.Addr == "" {
		return fmt.Errorf("invalid config: email.async requires redis.addr")
	}
	if _, err := regexp.Compile(c.Onboarding.PlatePattern); err != nil {
		return fmt.Errorf("invalid config: onboarding.plate_pattern: %w", err)
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
