// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the eduportal command line.
//
// # Commands
//
//	eduportal                          Start the terminal UI (default)
//	eduportal login [--user NAME]      Sign in and store the session
//	eduportal logout                   End the stored session
//	eduportal status [--json]          Show the stored session and time left
//	eduportal forgot-password          Reset a password by year of birth
//	eduportal config [show|path|init|get|set|keys]
//	eduportal demo [--addr ADDR]       Run a local portal server with sample data
//	eduportal version
//
// Global flags (--server, --theme, --json, -v, -q) are accepted anywhere on
// the command line. Output honours NO_COLOR and falls back to plain text when
// stdout is not a terminal.
package cli
