package token

import (
	"encoding/json"
	"strings"
	"time"
)

// Claims represents the assertions carried inside a signed token.
type Claims struct {
	Issuer    string   `json:"iss,omitempty"`
	Subject   string   `json:"sub,omitempty"`
	Audience  Audience `json:"aud,omitempty"`
	ExpiresAt *Time    `json:"exp,omitempty"`
	NotBefore *Time    `json:"nbf,omitempty"`
	IssuedAt  *Time    `json:"iat,omitempty"`
	TokenID   string   `json:"jti,omitempty"`

	// Extra holds non-standard claims.
	Extra map[string]interface{} `json:"-"`
}

// Time wraps time.Time for NumericDate JSON marshaling.
type Time struct {
	time.Time
}

// NewTime wraps a time.Time as a claims timestamp.
func NewTime(t time.Time) *Time {
	return &Time{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	var timestamp float64
	if err := json.Unmarshal(data, &timestamp); err != nil {
		return err
	}
	t.Time = time.Unix(int64(timestamp), 0)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Unix())
}

// Audience represents the aud claim which can be a string or an array.
type Audience []string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = Audience{single}
		return nil
	}

	var multiple []string
	if err := json.Unmarshal(data, &multiple); err != nil {
		return err
	}
	*a = Audience(multiple)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a Audience) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// Contains checks if the audience contains a specific value.
func (a Audience) Contains(aud string) bool {
	for _, v := range a {
		if v == aud {
			return true
		}
	}
	return false
}

// ValidAt validates the time-based claims at the given instant with
// clock skew tolerance. Expiry is strict: a token whose exp equals the
// evaluation instant is already expired.
func (c *Claims) ValidAt(now time.Time, skew time.Duration) error {
	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time.Add(skew)) {
		return ErrTokenExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time.Add(-skew)) {
		return ErrTokenNotYetValid
	}
	return nil
}

// GetClaim returns a claim value by name.
func (c *Claims) GetClaim(name string) (interface{}, bool) {
	switch name {
	case "iss":
		return c.Issuer, c.Issuer != ""
	case "sub":
		return c.Subject, c.Subject != ""
	case "aud":
		return []string(c.Audience), len(c.Audience) > 0
	case "exp":
		if c.ExpiresAt != nil {
			return c.ExpiresAt.Unix(), true
		}
		return nil, false
	case "nbf":
		if c.NotBefore != nil {
			return c.NotBefore.Unix(), true
		}
		return nil, false
	case "iat":
		if c.IssuedAt != nil {
			return c.IssuedAt.Unix(), true
		}
		return nil, false
	case "jti":
		return c.TokenID, c.TokenID != ""
	}

	if c.Extra != nil {
		v, ok := c.Extra[name]
		return v, ok
	}

	return nil, false
}

// GetStringClaim returns a claim value as a string.
func (c *Claims) GetStringClaim(name string) string {
	v, ok := c.GetClaim(name)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// GetStringSliceClaim returns a claim value as a string slice.
// A plain string is split on whitespace, the common encoding for scopes.
func (c *Claims) GetStringSliceClaim(name string) []string {
	v, ok := c.GetClaim(name)
	if !ok {
		return nil
	}

	switch val := v.(type) {
	case []string:
		return val
	case []interface{}:
		result := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	case string:
		return strings.Fields(val)
	default:
		return nil
	}
}

// ParseClaims parses claims from a decoded JSON map.
func ParseClaims(data map[string]interface{}) *Claims {
	claims := &Claims{
		Extra: make(map[string]interface{}),
	}

	for key, value := range data {
		if !parseStandardClaim(claims, key, value) {
			claims.Extra[key] = value
		}
	}

	return claims
}

// parseStandardClaim parses a registered claim and reports whether key was one.
func parseStandardClaim(claims *Claims, key string, value interface{}) bool {
	switch key {
	case "iss":
		if s, ok := value.(string); ok {
			claims.Issuer = s
		}
		return true
	case "sub":
		if s, ok := value.(string); ok {
			claims.Subject = s
		}
		return true
	case "aud":
		claims.Audience = parseAudience(value)
		return true
	case "exp":
		if t := parseTime(value); t != nil {
			claims.ExpiresAt = t
		}
		return true
	case "nbf":
		if t := parseTime(value); t != nil {
			claims.NotBefore = t
		}
		return true
	case "iat":
		if t := parseTime(value); t != nil {
			claims.IssuedAt = t
		}
		return true
	case "jti":
		if s, ok := value.(string); ok {
			claims.TokenID = s
		}
		return true
	default:
		return false
	}
}

// parseAudience parses the audience claim.
func parseAudience(value interface{}) Audience {
	switch v := value.(type) {
	case string:
		return Audience{v}
	case []string:
		return Audience(v)
	case []interface{}:
		result := make(Audience, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}

// parseTime parses a NumericDate value from the formats JSON decoding produces.
func parseTime(value interface{}) *Time {
	switch v := value.(type) {
	case float64:
		return &Time{Time: time.Unix(int64(v), 0)}
	case int64:
		return &Time{Time: time.Unix(v, 0)}
	case int:
		return &Time{Time: time.Unix(int64(v), 0)}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return &Time{Time: time.Unix(i, 0)}
		}
	default:
		return nil
	}
	return nil
}

// ToMap converts claims to a map for serialization.
func (c *Claims) ToMap() map[string]interface{} {
	result := make(map[string]interface{})

	if c.Issuer != "" {
		result["iss"] = c.Issuer
	}
	if c.Subject != "" {
		result["sub"] = c.Subject
	}
	if len(c.Audience) > 0 {
		if len(c.Audience) == 1 {
			result["aud"] = c.Audience[0]
		} else {
			result["aud"] = []string(c.Audience)
		}
	}
	if c.ExpiresAt != nil {
		result["exp"] = c.ExpiresAt.Unix()
	}
	if c.NotBefore != nil {
		result["nbf"] = c.NotBefore.Unix()
	}
	if c.IssuedAt != nil {
		result["iat"] = c.IssuedAt.Unix()
	}
	if c.TokenID != "" {
		result["jti"] = c.TokenID
	}

	for k, v := range c.Extra {
		result[k] = v
	}

	return result
}
