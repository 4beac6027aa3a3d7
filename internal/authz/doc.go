// Package authz implements the authorization gate that runs after
// authentication. Gates check an identity's scopes and roles against a
// requirement; a missing identity is an authentication failure, an
// unsatisfied requirement a forbidden one. Gates compose as ordinary
// middleware, so a route can stack several requirements and the first
// unsatisfied one stops the request.
package authz
