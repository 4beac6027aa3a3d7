package token

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avkern/authgate/internal/observability"
)

// AlgHS256 is the only signing algorithm this codec accepts. Fixing the
// algorithm per deployment closes the algorithm-confusion attack class.
const AlgHS256 = "HS256"

// Codec encodes and decodes signed tokens.
type Codec interface {
	// Encode creates a signed token carrying the claims with
	// iat = now and exp = now + ttl.
	Encode(ctx context.Context, claims *Claims, ttl time.Duration) (string, error)

	// Decode verifies a token and returns its claims. The signature is
	// verified before any claim is read.
	Decode(ctx context.Context, tokenString string) (*Claims, error)
}

// codec implements the Codec interface.
type codec struct {
	config  *Config
	secret  []byte
	logger  observability.Logger
	metrics *Metrics
}

// CodecOption is a functional option for the codec.
type CodecOption func(*codec)

// WithCodecLogger sets the logger for the codec.
func WithCodecLogger(logger observability.Logger) CodecOption {
	return func(c *codec) {
		c.logger = logger
	}
}

// WithCodecMetrics sets the metrics for the codec.
func WithCodecMetrics(metrics *Metrics) CodecOption {
	return func(c *codec) {
		c.metrics = metrics
	}
}

// NewCodec creates a new token codec. The secret is the server-held HMAC
// key; it is shared by reference across concurrent requests and never
// mutated after construction.
func NewCodec(config *Config, secret []byte, opts ...CodecOption) (Codec, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	c := &codec{
		config: config,
		secret: secret,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.metrics == nil {
		c.metrics = NewMetrics("authgate")
	}

	return c, nil
}

// Encode creates a signed token carrying the claims.
func (c *codec) Encode(_ context.Context, claims *Claims, ttl time.Duration) (string, error) {
	start := time.Now()

	if claims == nil {
		claims = &Claims{}
	}

	// Stamp a copy so the caller's claims stay untouched.
	stamped := *claims
	claims = &stamped

	now := time.Now()
	claims.IssuedAt = &Time{Time: now}
	claims.ExpiresAt = &Time{Time: now.Add(ttl)}
	if claims.Issuer == "" {
		claims.Issuer = c.config.Issuer
	}
	if len(claims.Audience) == 0 && len(c.config.Audience) > 0 {
		claims.Audience = Audience(c.config.Audience)
	}
	if claims.TokenID == "" {
		claims.TokenID = uuid.New().String()
	}

	header := map[string]interface{}{
		"alg": AlgHS256,
		"typ": "JWT",
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		c.metrics.RecordEncode("error", time.Since(start))
		return "", NewCodecError("failed to encode header", err)
	}
	payloadJSON, err := json.Marshal(claims.ToMap())
	if err != nil {
		c.metrics.RecordEncode("error", time.Since(start))
		return "", NewCodecError("failed to encode claims", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) +
		"." + base64.RawURLEncoding.EncodeToString(payloadJSON)

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(signingInput))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	c.metrics.RecordEncode("success", time.Since(start))
	c.logger.Debug("token encoded",
		observability.String("subject", claims.Subject),
		observability.Duration("ttl", ttl),
	)

	return signingInput + "." + signature, nil
}

// Decode verifies a token and returns its claims.
func (c *codec) Decode(_ context.Context, tokenString string) (*Claims, error) {
	start := time.Now()

	if tokenString == "" {
		c.metrics.RecordDecode("error", "empty", time.Since(start))
		return nil, ErrEmptyToken
	}

	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		c.metrics.RecordDecode("error", "malformed", time.Since(start))
		return nil, ErrTokenMalformed
	}

	// Signature first. Nothing from the header or claims segments is
	// trusted until the HMAC over them verifies, so a forged payload
	// cannot steer validation.
	if err := c.verifySignature(parts[0]+"."+parts[1], parts[2]); err != nil {
		c.metrics.RecordDecode("error", "invalid_signature", time.Since(start))
		return nil, err
	}

	header, err := c.decodeHeader(parts[0])
	if err != nil {
		c.metrics.RecordDecode("error", "invalid_header", time.Since(start))
		return nil, NewCodecError("failed to decode header", ErrTokenMalformed)
	}
	if header.Algorithm != AlgHS256 {
		c.metrics.RecordDecode("error", "unexpected_algorithm", time.Since(start))
		return nil, NewCodecError(
			fmt.Sprintf("algorithm %q is not accepted", header.Algorithm),
			ErrUnexpectedAlgorithm,
		)
	}

	claims, err := c.decodePayload(parts[1])
	if err != nil {
		c.metrics.RecordDecode("error", "invalid_payload", time.Since(start))
		return nil, NewCodecError("failed to decode claims", ErrTokenMalformed)
	}

	if err := claims.ValidAt(time.Now(), c.config.GetEffectiveClockSkew()); err != nil {
		reason := "expired"
		if IsSignatureError(err) {
			reason = "invalid_signature"
		}
		c.metrics.RecordDecode("error", reason, time.Since(start))
		return nil, err
	}

	if c.config.Issuer != "" && claims.Issuer != c.config.Issuer {
		c.metrics.RecordDecode("error", "invalid_issuer", time.Since(start))
		return nil, NewCodecError(
			fmt.Sprintf("issuer %q is not allowed", claims.Issuer),
			ErrTokenMalformed,
		)
	}

	c.metrics.RecordDecode("success", "valid", time.Since(start))
	c.logger.Debug("token decoded",
		observability.String("subject", claims.Subject),
		observability.String("issuer", claims.Issuer),
	)

	return claims, nil
}

// verifySignature recomputes the HMAC over the signing input and compares
// it with the transmitted signature in constant time. A signature segment
// that does not decode is treated as an invalid signature, not a
// malformed token, so corrupted signatures always surface as one kind.
func (c *codec) verifySignature(signingInput, signature string) error {
	sigBytes, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(signingInput))
	expected := mac.Sum(nil)

	if !hmac.Equal(sigBytes, expected) {
		return ErrInvalidSignature
	}

	return nil
}

// tokenHeader represents the decoded token header.
type tokenHeader struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

// decodeHeader decodes the header segment.
func (c *codec) decodeHeader(encoded string) (*tokenHeader, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	var header tokenHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, err
	}

	return &header, nil
}

// decodePayload decodes the claims segment.
func (c *codec) decodePayload(encoded string) (*Claims, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	var claimsMap map[string]interface{}
	if err := json.Unmarshal(data, &claimsMap); err != nil {
		return nil, err
	}

	return ParseClaims(claimsMap), nil
}

// Ensure codec implements Codec.
var _ Codec = (*codec)(nil)
