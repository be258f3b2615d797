// Package config loads, normalizes, and validates tldw configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY. The Config type centralizes every knob the CLI, the
// HTTP API, and the caption pipeline need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
