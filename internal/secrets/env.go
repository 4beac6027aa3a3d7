package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultEnvPrefix is the default prefix for environment variable secrets.
const DefaultEnvPrefix = "AUTHGATE_SECRET_"

// EnvSource reads secrets from environment variables. A secret named
// "token-signing-key" maps to the variable "{PREFIX}TOKEN_SIGNING_KEY".
type EnvSource struct {
	prefix string
	lookup func(string) (string, bool)
}

var _ Source = (*EnvSource)(nil)

// NewEnvSource creates an environment variable secrets source.
func NewEnvSource(prefix string) *EnvSource {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return &EnvSource{
		prefix: prefix,
		lookup: os.LookupEnv,
	}
}

// Type returns the source type.
func (s *EnvSource) Type() SourceType {
	return SourceTypeEnv
}

// Get returns the secret value stored under name.
func (s *EnvSource) Get(_ context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty secret name", ErrSecretNotFound)
	}

	value, ok := s.lookup(s.envName(name))
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return value, nil
}

// envName converts a secret name to the environment variable it maps to.
func (s *EnvSource) envName(name string) string {
	envName := strings.ToUpper(name)
	envName = strings.ReplaceAll(envName, "-", "_")
	envName = strings.ReplaceAll(envName, ".", "_")
	envName = strings.ReplaceAll(envName, "/", "_")
	return s.prefix + envName
}
