// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav routes between portal pages under the signed-in role.
package nav

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// ErrForbidden is returned when the role may not visit a page.
var ErrForbidden = errors.New("page not permitted for role")

// Loader renders a page. It receives a snapshot of the user and may issue
// requests and open dialogs.
type Loader func(auth.Identity)

// Controller tracks the current page. Methods run on the event loop.
type Controller struct {
	auth    *auth.Context
	sink    view.Sink
	log     zerolog.Logger
	loaders map[auth.Page]Loader

	current       auth.Page
	width         int
	collapseBelow int
}

// New creates a controller positioned on the default page. The sidebar
// collapses after navigation when the viewport is narrower than
// collapseBelow columns.
func New(ac *auth.Context, sink view.Sink, collapseBelow int, log zerolog.Logger) *Controller {
	return &Controller{
		auth:          ac,
		sink:          sink,
		log:           log.With().Str("component", "nav").Logger(),
		loaders:       make(map[auth.Page]Loader),
		current:       auth.DefaultPage,
		collapseBelow: collapseBelow,
	}
}

// Register binds the loader for page.
func (c *Controller) Register(page auth.Page, loader Loader) {
	c.loaders[page] = loader
}

// Current returns the page on screen.
func (c *Controller) Current() auth.Page { return c.current }

// SetViewportWidth records the terminal width in columns.
func (c *Controller) SetViewportWidth(w int) { c.width = w }

// Reset returns to the default page without loading it.
func (c *Controller) Reset() { c.current = auth.DefaultPage }

// Navigate shows pageID. Unknown ids fall back to the dashboard. A page the
// role may not visit is refused with ErrForbidden and nothing changes.
// Navigating to the current page reloads it.
func (c *Controller) Navigate(pageID string) error {
	id, ok := c.auth.Identity()
	if !ok {
		return auth.ErrNoSession
	}

	page, known := auth.LookupPage(pageID)
	if !known {
		c.log.Debug().Str("page", pageID).Msg("unknown page, showing default")
		page = auth.DefaultPage
	}

	if !id.Allows(page) {
		c.log.Warn().
			Str("event", "nav_refused").
			Str("page", string(page)).
			Str("role", string(id.Role)).
			Msg("navigation refused")
		c.sink.Notify(view.Warning("You do not have access to " + page.Label()))
		return fmt.Errorf("%w: %s", ErrForbidden, page)
	}

	c.current = page
	c.sink.ShowMenu(c.Menu())
	if c.width > 0 && c.width < c.collapseBelow {
		c.sink.CollapseSidebar()
	}

	loader, ok := c.loaders[page]
	if !ok {
		c.sink.ShowPage(view.Page{
			ID:       string(page),
			Title:    page.Label(),
			Sections: []view.Section{{Text: "This page is not available yet."}},
		})
		return nil
	}
	loader(id)
	return nil
}

// Menu returns the navigation for the signed-in role with the current page
// marked active.
func (c *Controller) Menu() view.Menu {
	id, ok := c.auth.Identity()
	if !ok {
		return view.Menu{}
	}
	pages := id.Role.AllowedPages()
	menu := view.Menu{Active: string(c.current), Items: make([]view.MenuItem, 0, len(pages))}
	for _, p := range pages {
		menu.Items = append(menu.Items, view.MenuItem{
			ID:     string(p),
			Label:  p.Label(),
			Active: p == c.current,
		})
	}
	return menu
}
