// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server is an in-memory EduPortal server.
//
// It answers the same REST surface as the production portal and backs both
// the package tests of the client and the `eduportal demo` command. State lives
// in memory only; nothing is written to disk.
//
// # Endpoints
//
//   - POST /api/auth/login, /api/auth/logout, /api/auth/forgot-password
//   - GET  /api/auth/session-status
//   - GET|PUT /api/user/theme
//   - GET  /api/dashboard/stats
//   - /api/{academics,students,events,timetable,users,activities}/...
//   - GET  /api/profile/get, PUT /api/profile/update
//   - POST /api/data/clear, POST /api/backup/create
//   - GET  /api/export/{type}?format=csv|pdf
//
// # Test Controls
//
// ForceRemaining, FailSessionStatus, ExpireSessions and Override let tests
// steer the session endpoints. Requests records every request seen.
//
// # Key Types
//
//   - Portal: the server state and its chi router
//   - Account: a user who can sign in
package server
