package token

import (
	"time"
)

// Expiry is strict by default: a token is rejected the instant its exp
// claim is reached. Deployments with drifting clocks opt in to skew
// explicitly via configuration.
const defaultClockSkew = 0 * time.Second

// Config represents token codec configuration.
type Config struct {
	// Enabled enables token authentication.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Issuer is the issuer stamped on encoded tokens and, when set,
	// required on decoded tokens.
	Issuer string `yaml:"issuer,omitempty" json:"issuer,omitempty"`

	// Audience is the audience stamped on encoded tokens.
	Audience []string `yaml:"audience,omitempty" json:"audience,omitempty"`

	// TTL is the default token lifetime used when Encode is called
	// through the strategy layer.
	TTL time.Duration `yaml:"ttl,omitempty" json:"ttl,omitempty"`

	// ClockSkew is the allowed clock skew for time-based claims.
	ClockSkew *time.Duration `yaml:"clockSkew,omitempty" json:"clockSkew,omitempty"`

	// SecretEnv names the environment variable holding the signing
	// secret. The secret itself is provisioned out of band and never
	// appears in configuration files.
	SecretEnv string `yaml:"secretEnv,omitempty" json:"secretEnv,omitempty"`
}

// GetEffectiveClockSkew returns the configured clock skew or the default.
func (c *Config) GetEffectiveClockSkew() time.Duration {
	if c == nil || c.ClockSkew == nil {
		return defaultClockSkew
	}
	return *c.ClockSkew
}

// Validate validates the token configuration.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.TTL < 0 {
		return NewCodecError("ttl must not be negative", nil)
	}
	if c.ClockSkew != nil && *c.ClockSkew < 0 {
		return NewCodecError("clockSkew must not be negative", nil)
	}
	return nil
}
