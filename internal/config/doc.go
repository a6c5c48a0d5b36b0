// Package config loads, normalizes, and validates kiln configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), and
// reads TOML files from the first of --config, ~/.config/kiln/config.toml and
// ./kiln.toml that exists. Always obtain settings through this package so
// downstream code receives expanded paths, canonical enum spellings, and
// clear validation errors.
package config
