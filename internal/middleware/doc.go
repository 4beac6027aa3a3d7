// Package middleware provides HTTP middleware and the chain that
// composes it. Middleware are plain func(http.Handler) http.Handler
// values; a Chain applies them in registration order, so the first
// middleware added is the outermost one.
package middleware
