// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the portal records exchanged with the EduPortal
// server.
//
// # Key Types
//
//   - Academic, Student, Event, TimetableEntry: entity list rows
//   - UserRecord: an account as listed on the users page
//   - Activity: one audit log entry
//   - Stats: dashboard counters
//   - Profile: the signed-in user's personal details
//
// Records carry the server's JSON field names. Timestamps stay strings on the
// wire; ParseTimestamp turns them into time values for display.
package model
