package apikey

import (
	"errors"
	"fmt"
)

// Store type constants.
const (
	StoreTypeMemory = "memory"
	StoreTypeRedis  = "redis"
)

// Config represents API key authentication configuration.
type Config struct {
	// Enabled enables API key authentication.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// HashAlgorithm selects the key hashing algorithm (sha256, pbkdf2).
	HashAlgorithm string `yaml:"hashAlgorithm,omitempty" json:"hashAlgorithm,omitempty"`

	// Store configures the credential store backend.
	Store *StoreConfig `yaml:"store,omitempty" json:"store,omitempty"`

	// Breaker configures the circuit breaker around the store.
	Breaker *BreakerConfig `yaml:"breaker,omitempty" json:"breaker,omitempty"`

	// Keys seeds records into a memory store. Entries carry the secret
	// hash, never the raw secret.
	Keys []SeedKey `yaml:"keys,omitempty" json:"keys,omitempty"`
}

// StoreConfig configures the credential store backend.
type StoreConfig struct {
	// Type is the store type (memory, redis).
	Type string `yaml:"type" json:"type"`

	// Redis configures the Redis backend.
	Redis *RedisConfig `yaml:"redis,omitempty" json:"redis,omitempty"`
}

// RedisConfig configures the Redis credential store backend.
type RedisConfig struct {
	// Addr is the Redis server address.
	Addr string `yaml:"addr" json:"addr"`

	// PasswordEnv names the environment variable holding the password.
	PasswordEnv string `yaml:"passwordEnv,omitempty" json:"passwordEnv,omitempty"`

	// DB is the Redis database number.
	DB int `yaml:"db,omitempty" json:"db,omitempty"`
}

// SeedKey is an operator-provisioned API key record in configuration.
type SeedKey struct {
	ID         string            `yaml:"id" json:"id"`
	OwnerID    string            `yaml:"ownerId" json:"ownerId"`
	Prefix     string            `yaml:"prefix" json:"prefix"`
	SecretHash string            `yaml:"secretHash" json:"secretHash"`
	Name       string            `yaml:"name,omitempty" json:"name,omitempty"`
	Scopes     []string          `yaml:"scopes,omitempty" json:"scopes,omitempty"`
	Roles      []string          `yaml:"roles,omitempty" json:"roles,omitempty"`
	Metadata   map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// ToRecord converts a seed entry into a store record.
func (k *SeedKey) ToRecord() *Record {
	return &Record{
		ID:         k.ID,
		OwnerID:    k.OwnerID,
		Prefix:     k.Prefix,
		SecretHash: k.SecretHash,
		Name:       k.Name,
		Scopes:     k.Scopes,
		Roles:      k.Roles,
		Metadata:   k.Metadata,
	}
}

// GetEffectiveHashAlgorithm returns the configured algorithm or sha256.
func (c *Config) GetEffectiveHashAlgorithm() string {
	if c == nil || c.HashAlgorithm == "" {
		return HashAlgSHA256
	}
	return c.HashAlgorithm
}

// GetEffectiveStoreType returns the configured store type or memory.
func (c *Config) GetEffectiveStoreType() string {
	if c == nil || c.Store == nil || c.Store.Type == "" {
		return StoreTypeMemory
	}
	return c.Store.Type
}

// Validate validates the API key configuration.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	if _, err := NewHasher(c.GetEffectiveHashAlgorithm()); err != nil {
		return err
	}

	switch c.GetEffectiveStoreType() {
	case StoreTypeMemory:
	case StoreTypeRedis:
		if c.Store == nil || c.Store.Redis == nil || c.Store.Redis.Addr == "" {
			return errors.New("redis store requires an addr")
		}
	default:
		return fmt.Errorf("unsupported store type: %s", c.Store.Type)
	}

	for i, key := range c.Keys {
		if key.ID == "" || key.Prefix == "" || key.SecretHash == "" {
			return fmt.Errorf("seed key %d: id, prefix and secretHash are required", i)
		}
	}

	return nil
}
