// Package apikey implements opaque bearer credential verification.
//
// A key is issued once as ak_<prefix>_<secret>; only a one-way hash of
// the full key is persisted together with the non-secret prefix used for
// indexed lookup. Verification hashes the presented key, fetches
// candidates by prefix and compares hashes in constant time. Revocation
// stamps the record rather than deleting it so the audit trail survives.
package apikey
