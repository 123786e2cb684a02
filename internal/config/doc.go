// Package config loads, normalizes, and validates lemonade-go CLI settings.
//
// Settings come from three layers applied in order: built-in defaults, an
// optional TOML file (~/.config/lemonade-go/config.toml unless a path is
// given), and LEMONADE_* environment variables. The library package never
// reads configuration itself; the CLI resolves a Config and passes the
// values to pkg/lemonade explicitly.
package config
