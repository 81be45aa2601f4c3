// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared across the client.
//
//   - AtomicWriteFile: crash-safe writes for the config and session files
//   - TruncateWidth, PadWidth: column-aware cell fitting for tables
//
// Usage:
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	cell := util.PadWidth(name, 18)
package util
