// Package config loads, validates, and watches the service
// configuration. Configuration is read from a YAML file with
// ${VAR} and ${VAR:-default} environment variable substitution,
// and can be hot-reloaded through a filesystem watcher.
package config
