package config

import (
	"errors"
	"time"
)

// JWTConfig configures JWT verification against a JWKS endpoint.
type JWTConfig struct {
	Issuer   string `koanf:"issuer"`
	Audience string `koanf:"audience"`
	JWKSURL  string `koanf:"jwks_url" validate:"omitempty,url"`

	ClockSkew time.Duration `koanf:"clock_skew" validate:"gte=0"`
	// Refresh periodically to pick up key rotation even if an old key is still cached.
	JWKSRefreshInterval time.Duration `koanf:"jwks_refresh_interval" validate:"gt=0"`
	// Bound refresh frequency when a token presents an unknown kid.
	JWKSMinRefreshInterval time.Duration `koanf:"jwks_min_refresh_interval" validate:"gt=0"`

	HTTPTimeout time.Duration `koanf:"http_timeout" validate:"gt=0"`
}

func defaultJWTConfig() JWTConfig {
	return JWTConfig{
		ClockSkew:              30 * time.Second,
		JWKSRefreshInterval:    5 * time.Minute,
		JWKSMinRefreshInterval: 10 * time.Second,
		HTTPTimeout:            5 * time.Second,
	}
}

func (c JWTConfig) requireComplete() error {
	if c.Issuer == "" || c.Audience == "" || c.JWKSURL == "" {
		return errors.New("auth.mode=jwt requires auth.jwt.issuer, auth.jwt.audience and auth.jwt.jwks_url")
	}
	return nil
}
