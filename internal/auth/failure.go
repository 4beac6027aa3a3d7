package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avkern/authgate/internal/auth/apikey"
	"github.com/avkern/authgate/internal/auth/token"
)

// Kind classifies an authentication or authorization failure. The kind
// decides the response status; the split between credential problems
// and backend problems is deliberate so callers never mistake an outage
// for a bad key.
type Kind string

// Failure kinds.
const (
	// KindUnauthenticated means no usable credentials were presented.
	KindUnauthenticated Kind = "unauthenticated"

	// KindForbidden means the identity is valid but not allowed.
	KindForbidden Kind = "forbidden"

	// KindMalformedToken means the token is not structurally valid.
	KindMalformedToken Kind = "malformed_token"

	// KindTokenExpired means the token's validity window has passed.
	KindTokenExpired Kind = "token_expired"

	// KindInvalidSignature means the token signature does not verify.
	KindInvalidSignature Kind = "invalid_signature"

	// KindUnknownCredential means no record matches the credential.
	KindUnknownCredential Kind = "unknown_credential"

	// KindRevokedCredential means the credential has been revoked.
	KindRevokedCredential Kind = "revoked_credential"

	// KindDependencyUnavailable means a credential backend failed.
	KindDependencyUnavailable Kind = "dependency_unavailable"
)

// HTTPStatus returns the HTTP status code for the failure kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindForbidden:
		return http.StatusForbidden
	case KindDependencyUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}

// Message returns the client-facing message for the failure kind. It
// names the failure class without echoing credential material.
func (k Kind) Message() string {
	switch k {
	case KindForbidden:
		return "access denied"
	case KindMalformedToken:
		return "malformed token"
	case KindTokenExpired:
		return "token expired"
	case KindInvalidSignature:
		return "invalid token signature"
	case KindUnknownCredential:
		return "unknown credential"
	case KindRevokedCredential:
		return "credential revoked"
	case KindDependencyUnavailable:
		return "authentication backend unavailable"
	default:
		return "authentication required"
	}
}

// Classify maps an authentication error onto its failure kind. A
// credential backend outage always classifies as dependency
// unavailability, even when wrapped in strategy context.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, apikey.ErrStoreUnavailable):
		return KindDependencyUnavailable
	case errors.Is(err, token.ErrTokenExpired):
		return KindTokenExpired
	case errors.Is(err, token.ErrInvalidSignature):
		return KindInvalidSignature
	case errors.Is(err, token.ErrTokenMalformed),
		errors.Is(err, token.ErrUnexpectedAlgorithm),
		errors.Is(err, token.ErrEmptyToken):
		return KindMalformedToken
	case errors.Is(err, apikey.ErrKeyRevoked):
		return KindRevokedCredential
	case errors.Is(err, apikey.ErrKeyNotFound), errors.Is(err, apikey.ErrEmptyKey):
		return KindUnknownCredential
	default:
		return KindUnauthenticated
	}
}

// failureBody is the JSON error payload.
type failureBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// WriteFailure writes the JSON response for a failure kind. 401
// responses carry a WWW-Authenticate challenge.
func WriteFailure(w http.ResponseWriter, kind Kind) {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	status := kind.HTTPStatus()
	if status == http.StatusUnauthorized {
		w.Header().Set(HeaderWWWAuthenticate, "Bearer")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(failureBody{
		Error: kind.Message(),
		Kind:  string(kind),
	})
}
