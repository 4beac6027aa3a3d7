// Package secrets resolves sensitive material such as token signing
// secrets from pluggable backends. Secrets never appear in
// configuration files; configuration names a source and a key, and the
// source retrieves the value at startup.
package secrets
