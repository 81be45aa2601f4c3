// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the EduPortal TUI.

All colors are Lip Gloss AdaptiveColor values. Which half of each pair is
used follows the active theme:

	styles.Apply("dark")  // force the dark palette
	styles.Apply("light") // force the light palette
	styles.Apply("auto")  // ask the terminal via termenv

The portal stores a per-user theme preference; the app calls Apply whenever
the controller reports a theme change and then rebuilds its Theme.

# Indicators

Notices are rendered with ASCII indicators ([OK], [X], [!], [i]) so their
kind stays readable on monochrome terminals.
*/
package styles
