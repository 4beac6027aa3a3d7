// Package observability provides structured logging for the authentication
// pipeline, along with request-scoped correlation identifiers.
package observability
