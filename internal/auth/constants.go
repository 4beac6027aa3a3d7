package auth

// HTTP header constants for authentication.
const (
	// HeaderAuthorization is the Authorization header name.
	HeaderAuthorization = "Authorization"

	// HeaderWWWAuthenticate is the WWW-Authenticate header name.
	HeaderWWWAuthenticate = "WWW-Authenticate"

	// HeaderXAPIKey is the X-API-Key header name.
	HeaderXAPIKey = "X-API-Key"

	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"
)

// Content type constants.
const (
	// ContentTypeJSON is the JSON content type.
	ContentTypeJSON = "application/json"
)

// Authentication scheme constants.
const (
	// AuthSchemeBearer is the Bearer authentication scheme prefix.
	AuthSchemeBearer = "Bearer "
)

// QueryAPIKey is the query parameter consulted for an API key when no
// header is present.
const QueryAPIKey = "api_key"
