// Package config loads, normalizes, and validates the boostd TOML
// configuration. All path fields are expanded and absolute after Load; no
// other package reads ambient environment state.
package config
