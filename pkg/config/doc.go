// Package config handles configuration management for csync.
//
// Configuration is layered with koanf, later layers winning:
//
//  1. Built-in defaults (embedded/defaults.toml)
//  2. The user file, $XDG_CONFIG_HOME/csync/config.toml
//  3. A dotenv file, $XDG_CONFIG_HOME/csync/env, which only fills variables
//     missing from the process environment
//  4. CSYNC_* environment variables; a double underscore separates a
//     section from its key (CSYNC_SYNC__REMOTE_URL sets sync.remote_url)
//  5. SYNC_BRANCH, kept for compatibility with existing shell setups
package config
