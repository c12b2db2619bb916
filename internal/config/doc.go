// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/oagen/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/oagen/config.cue on macOS, %APPDATA%\oagen\config.cue
// on Windows), or from an explicit path. The file is validated against an embedded CUE
// schema (config_schema.cue); OAGEN_* environment variables override file values.
package config
