// SPDX-License-Identifier: MPL-2.0

// Package config handles module-loader configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/modload/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/modload/config.cue on macOS, %APPDATA%\modload\config.cue
// on Windows), with MODLOAD_* environment variables overriding individual keys. The surface
// covers the registry base URL and index file, security policy allow/block patterns, a
// host-kind override, project-root markers, and the resolver location cache.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
