// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs the client-side session countdown.
//
// The Clock counts down once per tick and is corrected by the server on
// every resync, which always overwrites the local value. The server never
// says "extended"; it just reports what is left.
//
// # States
//
//	Active --(r < warning)--> Warning --(r == 0 | resync failure)--> Expired --(grace)--> LoggedOut
//	Active/Warning --(Stop)--> LoggedOut
//
// Expired and LoggedOut are terminal: ticks and late resync results are
// ignored, and Expire runs its side effects once.
//
// # Usage
//
//	clock := session.NewClock(rt, session.ConfigFrom(cfg.Session), session.Hooks{
//	    Fetch:       gw.SessionStatus,
//	    Sink:        sink,
//	    OnLoggedOut: teardown,
//	}, authCtx, log)
//	clock.Start()
package session
