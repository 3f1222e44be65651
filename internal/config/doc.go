// Package config loads, normalizes, and validates uhdrsplit configuration.
//
// It supplies defaults, reads TOML files, expands user paths (including tilde
// shortcuts) and checks output naming patterns, so the CLI receives settings
// that are ready to use. Command-line flags are applied on top by the caller.
package config
