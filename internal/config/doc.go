// Package config loads, normalizes, and validates curator configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY. The Config type centralizes every knob the CLI and pipeline
// need, and derived-path helpers (RulesPath, JournalPath, LockPath) keep the
// on-disk layout in one place.
package config
