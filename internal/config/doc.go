// Package config loads and validates the mcpgen configuration file.
//
// Configuration is TOML, looked up at ~/.config/mcpgen/config.toml and
// then at ./mcpgen.toml when no explicit path is given. Every key has a
// default, so running without a config file works out of the box.
// Environment variables MCPGEN_TEMPLATE, MCPGEN_CREDENTIALS_DIR, and
// MCPGEN_OUTPUT override their file counterparts.
package config
