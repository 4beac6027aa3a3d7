package config

import (
	"fmt"
	"time"

	"github.com/avkern/authgate/internal/auth"
	"github.com/avkern/authgate/internal/observability"
	"github.com/avkern/authgate/internal/secrets"
)

const (
	// DefaultHTTPAddr is the default listen address for the HTTP server.
	DefaultHTTPAddr = ":8080"

	// DefaultGRPCAddr is the default listen address for the gRPC server.
	DefaultGRPCAddr = ":9090"

	// DefaultMetricsAddr is the default listen address for the metrics server.
	DefaultMetricsAddr = ":9100"

	// DefaultReadTimeout is the default HTTP read timeout.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the default HTTP write timeout.
	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout is the default HTTP idle timeout.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default graceful shutdown timeout.
	DefaultShutdownTimeout = 30 * time.Second
)

// Config holds all configuration for the service.
type Config struct {
	// Server configures the listeners and their timeouts.
	Server ServerConfig `yaml:"server" json:"server"`

	// Log configures structured logging.
	Log observability.LogConfig `yaml:"log,omitempty" json:"log,omitempty"`

	// RateLimit configures request rate limiting.
	RateLimit RateLimitConfig `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`

	// Secrets configures where sensitive material is resolved from.
	Secrets *secrets.Config `yaml:"secrets,omitempty" json:"secrets,omitempty"`

	// Auth configures the authentication pipeline.
	Auth auth.Config `yaml:"auth" json:"auth"`
}

// ServerConfig configures the network listeners.
type ServerConfig struct {
	// HTTPAddr is the listen address for the HTTP server.
	HTTPAddr string `yaml:"httpAddr,omitempty" json:"httpAddr,omitempty"`

	// GRPCAddr is the listen address for the gRPC server.
	GRPCAddr string `yaml:"grpcAddr,omitempty" json:"grpcAddr,omitempty"`

	// MetricsAddr is the listen address for the Prometheus metrics server.
	MetricsAddr string `yaml:"metricsAddr,omitempty" json:"metricsAddr,omitempty"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`

	// WriteTimeout is the maximum duration before timing out response writes.
	WriteTimeout time.Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// keep-alive connection.
	IdleTimeout time.Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`
}

// RateLimitConfig configures request rate limiting.
type RateLimitConfig struct {
	// Enabled turns rate limiting on.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// RequestsPerSecond is the sustained request rate per client.
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty" json:"requestsPerSecond,omitempty"`

	// Burst is the maximum burst size per client.
	Burst int `yaml:"burst,omitempty" json:"burst,omitempty"`

	// PerClient enables per-client-IP limiting instead of a global limit.
	PerClient bool `yaml:"perClient,omitempty" json:"perClient,omitempty"`
}

// DefaultConfig returns a configuration populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        DefaultHTTPAddr,
			GRPCAddr:        DefaultGRPCAddr,
			MetricsAddr:     DefaultMetricsAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Log: observability.DefaultLogConfig(),
	}
}

// ApplyDefaults fills in zero-valued fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = DefaultGRPCAddr
	}
	if c.Server.MetricsAddr == "" {
		c.Server.MetricsAddr = DefaultMetricsAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = observability.DefaultLogConfig().Level
	}
	if c.Log.Format == "" {
		c.Log.Format = observability.DefaultLogConfig().Format
	}
	if c.Log.Output == "" {
		c.Log.Output = observability.DefaultLogConfig().Output
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond == 0 {
			c.RateLimit.RequestsPerSecond = 100
		}
		if c.RateLimit.Burst == 0 {
			c.RateLimit.Burst = 200
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("server: readTimeout must not be negative")
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server: writeTimeout must not be negative")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server: shutdownTimeout must not be negative")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rateLimit: requestsPerSecond must be positive")
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rateLimit: burst must be positive")
		}
	}

	if err := c.Secrets.Validate(); err != nil {
		return fmt.Errorf("secrets: %w", err)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	return nil
}
