// Package auth implements the request authentication pipeline.
//
// Credentials are pulled from incoming HTTP requests or gRPC metadata
// by pluggable strategies and resolved to an Identity. Strategies run
// in a configured order; the first one that both finds a credential and
// verifies it wins. A strategy that finds no credential is skipped, so
// a request can carry an API key without tripping over the absent
// bearer token.
//
// Failures carry a Kind that maps onto the response status: anything
// wrong with the credential itself answers 401, a policy denial answers
// 403, and an unreachable credential backend answers 503 so clients can
// tell "retry later" apart from "fix your key".
package auth
