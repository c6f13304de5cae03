// Package config loads, validates, and normalizes belltower configuration
// from TOML files.
package config
