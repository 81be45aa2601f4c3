// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the widgets the EduPortal TUI is drawn with.

They are built on Bubble Tea, Bubbles and Lip Gloss and know nothing about
the portal itself: each one renders a value from the view package and
reports user intent back to the app model, which forwards it to the event
loop.

# Frame

Header (header.go) - Brand, page title, user badge and session countdown.
Sidebar (sidebar.go) - Pages the signed-in role may open.
StatusBar (statusbar.go) - Key hints for the focused area.

# Content

PageView (page.go) - Sections with stats, selectable tables and actions.
Dialog (dialog.go) - The live modal: text, forms or key/value details.
Palette (palette.go) - Fuzzy "go to page" overlay (ctrl+p).

# Feedback

ToastManager (toast.go) - Auto-dismissing notices, newest first.
ExpiredOverlay (session.go) - Shown between expiry and the login screen.
RenderHelp (help.go) - Key reference rendered with Glamour.
*/
package components
