package auth

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc/metadata"
)

// Credentials represents extracted credentials.
type Credentials struct {
	// Type is the credential type.
	Type CredentialType

	// Value is the credential value.
	Value string

	// Source is where the credential was extracted from.
	Source string
}

// CredentialType represents the type of credential.
type CredentialType string

// Credential types.
const (
	CredentialTypeToken  CredentialType = "token"
	CredentialTypeAPIKey CredentialType = "apikey"
)

// Extractor extracts credentials from requests.
type Extractor interface {
	// ExtractToken extracts a signed token from the request.
	ExtractToken(r *http.Request) (*Credentials, error)

	// ExtractAPIKey extracts an API key from the request.
	ExtractAPIKey(r *http.Request) (*Credentials, error)

	// ExtractTokenFromGRPC extracts a signed token from gRPC metadata.
	ExtractTokenFromGRPC(ctx context.Context) (*Credentials, error)

	// ExtractAPIKeyFromGRPC extracts an API key from gRPC metadata.
	ExtractAPIKeyFromGRPC(ctx context.Context) (*Credentials, error)
}

// extractor implements the Extractor interface.
type extractor struct {
	config *ExtractionConfig
}

// NewExtractor creates a new credential extractor. A nil config selects
// the defaults: bearer tokens from the Authorization header, API keys
// from the X-API-Key header with an api_key query fallback.
func NewExtractor(config *ExtractionConfig) Extractor {
	if config == nil {
		config = DefaultExtractionConfig()
	}
	return &extractor{config: config}
}

// ExtractToken extracts a signed token from the request.
func (e *extractor) ExtractToken(r *http.Request) (*Credentials, error) {
	for _, source := range e.config.Token {
		value := e.extractFromHTTP(r, source)
		if value != "" {
			return &Credentials{
				Type:   CredentialTypeToken,
				Value:  value,
				Source: string(source.Type) + ":" + source.Name,
			}, nil
		}
	}
	return nil, ErrNoCredentials
}

// ExtractAPIKey extracts an API key from the request.
func (e *extractor) ExtractAPIKey(r *http.Request) (*Credentials, error) {
	for _, source := range e.config.APIKey {
		value := e.extractFromHTTP(r, source)
		if value != "" {
			return &Credentials{
				Type:   CredentialTypeAPIKey,
				Value:  value,
				Source: string(source.Type) + ":" + source.Name,
			}, nil
		}
	}
	return nil, ErrNoCredentials
}

// ExtractTokenFromGRPC extracts a signed token from gRPC metadata.
func (e *extractor) ExtractTokenFromGRPC(ctx context.Context) (*Credentials, error) {
	for _, source := range e.config.Token {
		if source.Type != ExtractionTypeMetadata && source.Type != ExtractionTypeHeader {
			continue
		}
		value := e.extractFromGRPC(ctx, source)
		if value != "" {
			return &Credentials{
				Type:   CredentialTypeToken,
				Value:  value,
				Source: "metadata:" + source.Name,
			}, nil
		}
	}
	return nil, ErrNoCredentials
}

// ExtractAPIKeyFromGRPC extracts an API key from gRPC metadata.
func (e *extractor) ExtractAPIKeyFromGRPC(ctx context.Context) (*Credentials, error) {
	for _, source := range e.config.APIKey {
		if source.Type != ExtractionTypeMetadata && source.Type != ExtractionTypeHeader {
			continue
		}
		value := e.extractFromGRPC(ctx, source)
		if value != "" {
			return &Credentials{
				Type:   CredentialTypeAPIKey,
				Value:  value,
				Source: "metadata:" + source.Name,
			}, nil
		}
	}
	return nil, ErrNoCredentials
}

// extractFromHTTP extracts a value from an HTTP request.
func (e *extractor) extractFromHTTP(r *http.Request, source ExtractionSource) string {
	var value string

	switch source.Type {
	case ExtractionTypeHeader:
		value = r.Header.Get(source.Name)
	case ExtractionTypeCookie:
		if cookie, err := r.Cookie(source.Name); err == nil {
			value = cookie.Value
		}
	case ExtractionTypeQuery:
		value = r.URL.Query().Get(source.Name)
	}

	return stripPrefix(value, source.Prefix)
}

// extractFromGRPC extracts a value from gRPC metadata.
func (e *extractor) extractFromGRPC(ctx context.Context, source ExtractionSource) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	values := md.Get(source.Name)
	if len(values) == 0 {
		// gRPC metadata keys are lowercase.
		values = md.Get(strings.ToLower(source.Name))
	}
	if len(values) == 0 {
		return ""
	}

	return stripPrefix(values[0], source.Prefix)
}

// stripPrefix removes the configured scheme prefix. A value carrying
// the wrong scheme is treated as absent.
func stripPrefix(value, prefix string) string {
	if value == "" {
		return ""
	}
	if prefix != "" {
		if !strings.HasPrefix(value, prefix) {
			return ""
		}
		value = strings.TrimPrefix(value, prefix)
	}
	return strings.TrimSpace(value)
}

// ExtractBearerToken extracts a bearer token from the Authorization
// header.
func ExtractBearerToken(r *http.Request) string {
	return stripPrefix(r.Header.Get(HeaderAuthorization), AuthSchemeBearer)
}

// Ensure extractor implements Extractor.
var _ Extractor = (*extractor)(nil)
