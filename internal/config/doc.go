// Package config loads, normalizes, and validates the TOML configuration
// that points turntable at its external tools and render defaults.
package config
