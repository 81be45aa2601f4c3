// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the eduportal client configuration.
//
// Sources, later ones winning:
//   - built-in defaults (Default)
//   - ~/.eduportal/config.toml, or config.json when no TOML file exists
//   - EDUPORTAL_* environment variables
//
// The directory itself can be moved with EDUPORTAL_HOME. Relative paths in
// the [paths] and [logging] sections resolve against it.
//
// Example config.toml:
//
//	[server]
//	url = "https://portal.example.edu"
//
//	[session]
//	resync_seconds = 30
//
//	[ui]
//	theme = "dark"
package config
