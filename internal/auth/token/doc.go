// Package token implements the signed token codec used by the
// authentication pipeline. Tokens are three base64url segments
// (header, claims, signature) signed with HMAC-SHA256 under a single
// server-held secret. The algorithm is fixed per deployment; there is
// no per-token negotiation.
package token
