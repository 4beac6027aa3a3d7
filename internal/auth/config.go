package auth

import (
	"errors"
	"fmt"

	"github.com/avkern/authgate/internal/auth/apikey"
	"github.com/avkern/authgate/internal/auth/token"
)

// Config represents the authentication configuration.
type Config struct {
	// Enabled enables authentication.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// AllowAnonymous allows requests without credentials through with
	// an anonymous identity. Invalid credentials are still rejected.
	AllowAnonymous bool `yaml:"allowAnonymous,omitempty" json:"allowAnonymous,omitempty"`

	// SkipPaths lists paths that bypass authentication. A trailing *
	// matches by prefix.
	SkipPaths []string `yaml:"skipPaths,omitempty" json:"skipPaths,omitempty"`

	// Order lists strategy names in the order they are tried. Empty
	// selects the registration order.
	Order []string `yaml:"order,omitempty" json:"order,omitempty"`

	// Token configures signed token authentication.
	Token *token.Config `yaml:"token,omitempty" json:"token,omitempty"`

	// APIKey configures API key authentication.
	APIKey *apikey.Config `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`

	// Extraction configures credential extraction.
	Extraction *ExtractionConfig `yaml:"extraction,omitempty" json:"extraction,omitempty"`
}

// ExtractionConfig configures credential extraction.
type ExtractionConfig struct {
	// Token configures signed token extraction.
	Token []ExtractionSource `yaml:"token,omitempty" json:"token,omitempty"`

	// APIKey configures API key extraction.
	APIKey []ExtractionSource `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
}

// ExtractionSource represents a source for credential extraction.
type ExtractionSource struct {
	// Type is the extraction type (header, cookie, query, metadata).
	Type ExtractionType `yaml:"type" json:"type"`

	// Name is the name of the header, cookie, query parameter, or
	// metadata key.
	Name string `yaml:"name" json:"name"`

	// Prefix is the scheme prefix to strip from the value.
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
}

// ExtractionType represents the type of credential extraction.
type ExtractionType string

// Extraction types.
const (
	ExtractionTypeHeader   ExtractionType = "header"
	ExtractionTypeCookie   ExtractionType = "cookie"
	ExtractionTypeQuery    ExtractionType = "query"
	ExtractionTypeMetadata ExtractionType = "metadata"
)

// DefaultExtractionConfig returns the default extraction sources.
func DefaultExtractionConfig() *ExtractionConfig {
	return &ExtractionConfig{
		Token: []ExtractionSource{
			{
				Type:   ExtractionTypeHeader,
				Name:   HeaderAuthorization,
				Prefix: AuthSchemeBearer,
			},
		},
		APIKey: []ExtractionSource{
			{
				Type: ExtractionTypeHeader,
				Name: HeaderXAPIKey,
			},
			{
				Type: ExtractionTypeQuery,
				Name: QueryAPIKey,
			},
		},
	}
}

// Validate validates the authentication configuration.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	if c.Token != nil {
		if err := c.Token.Validate(); err != nil {
			return fmt.Errorf("token: %w", err)
		}
	}
	if c.APIKey != nil {
		if err := c.APIKey.Validate(); err != nil {
			return fmt.Errorf("apiKey: %w", err)
		}
	}

	for _, name := range c.Order {
		switch name {
		case string(AuthTypeToken), string(AuthTypeAPIKey):
		default:
			return fmt.Errorf("unknown strategy in order: %s", name)
		}
	}

	if c.Extraction != nil {
		for _, src := range c.Extraction.Token {
			if err := src.validate(); err != nil {
				return fmt.Errorf("extraction: %w", err)
			}
		}
		for _, src := range c.Extraction.APIKey {
			if err := src.validate(); err != nil {
				return fmt.Errorf("extraction: %w", err)
			}
		}
	}

	return nil
}

// validate validates an extraction source.
func (src ExtractionSource) validate() error {
	switch src.Type {
	case ExtractionTypeHeader, ExtractionTypeCookie, ExtractionTypeQuery, ExtractionTypeMetadata:
	default:
		return fmt.Errorf("invalid extraction type: %s", src.Type)
	}
	if src.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// IsTokenEnabled returns true if token authentication is enabled.
func (c *Config) IsTokenEnabled() bool {
	return c != nil && c.Token != nil && c.Token.Enabled
}

// IsAPIKeyEnabled returns true if API key authentication is enabled.
func (c *Config) IsAPIKeyEnabled() bool {
	return c != nil && c.APIKey != nil && c.APIKey.Enabled
}

// ShouldSkipPath returns true if the path should skip authentication.
func (c *Config) ShouldSkipPath(path string) bool {
	if c == nil {
		return false
	}
	for _, skipPath := range c.SkipPaths {
		if matchPath(skipPath, path) {
			return true
		}
	}
	return false
}

// StrategyOrder returns the configured strategy order, falling back to
// token before API key.
func (c *Config) StrategyOrder() []string {
	if c != nil && len(c.Order) > 0 {
		return c.Order
	}
	return []string{string(AuthTypeToken), string(AuthTypeAPIKey)}
}

// matchPath checks if a path matches a pattern.
func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}
	if pattern != "" && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(path) >= len(prefix) && path[:len(prefix)] == prefix
	}
	return false
}
