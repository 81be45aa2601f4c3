// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the Bubble Tea program of the EduPortal TUI. It draws what
// the portal controller reports through the Bridge and forwards key presses
// to the controller on the event loop.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/fault"
	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/portal"
	"github.com/jeranaias/eduportal-tui/internal/session"
	"github.com/jeranaias/eduportal-tui/internal/ui/components"
	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// =============================================================================
// MODEL STATE
// =============================================================================

type screen int

const (
	screenStarting screen = iota // waiting for the controller
	screenLogin
	screenPortal
)

type focusArea int

const (
	focusPage focusArea = iota
	focusMenu
)

// Options wires the model to the rest of the client.
type Options struct {
	// Post runs fn on the event loop.
	Post func(fn func())
	// NewController builds a controller for a new session. Its Sink must be
	// the Bridge feeding this model.
	NewController func() *portal.Controller
	Gateway       *gateway.Client
	Store         *auth.Store
	Theme         string
	ToastDuration time.Duration
	LoginTimeout  time.Duration
	Log           zerolog.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	opts Options
	keys KeyMap
	log  zerolog.Logger

	theme   *styles.Theme
	screen  screen
	focus   focusArea
	width   int
	height  int
	ctl     *portal.Controller
	help    bool
	expired bool
	ticking bool

	header  *components.Header
	sidebar *components.Sidebar
	status  *components.StatusBar
	page    *components.PageView
	dialog  *components.Dialog
	palette *components.Palette
	toasts  *components.ToastManager
	overlay *components.ExpiredOverlay
	login   loginForm
}

// New creates the model. Nothing runs until Init.
func New(opts Options) *Model {
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = 15 * time.Second
	}
	theme := styles.NewTheme(opts.Theme)
	server := ""
	if opts.Gateway != nil {
		server = opts.Gateway.BaseURL()
	}
	return &Model{
		opts:    opts,
		keys:    DefaultKeyMap(),
		log:     opts.Log,
		theme:   theme,
		width:   80,
		height:  24,
		header:  components.NewHeader(theme),
		sidebar: components.NewSidebar(theme),
		status:  components.NewStatusBar(theme),
		page:    components.NewPageView(theme),
		dialog:  components.NewDialog(theme),
		palette: components.NewPalette(theme),
		toasts:  components.NewToastManager(opts.ToastDuration),
		overlay: components.NewExpiredOverlay(theme),
		login:   newLoginForm(server),
	}
}

// Init starts a controller over the stored session. Without one the
// controller redirects to the login screen.
func (m *Model) Init() tea.Cmd {
	m.startPortal()
	return nil
}

// Controller returns the controller of the current session, or nil.
func (m *Model) Controller() *portal.Controller { return m.ctl }

func (m *Model) startPortal() {
	m.screen = screenStarting
	m.expired = false
	m.ctl = m.opts.NewController()
	ctl, width := m.ctl, m.width
	m.opts.Post(func() {
		ctl.SetViewportWidth(width)
		if err := ctl.Start(); err != nil {
			m.log.Debug().Err(err).Msg("portal start")
		}
	})
}

// call runs fn against the current controller on the event loop.
func (m *Model) call(fn func(c *portal.Controller)) {
	ctl := m.ctl
	if ctl == nil {
		return
	}
	m.opts.Post(func() { fn(ctl) })
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles a message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w := msg.Width
		m.call(func(c *portal.Controller) { c.SetViewportWidth(w) })

	case noticeMsg:
		m.toasts.Add(view.Notice(msg))
		if !m.ticking {
			m.ticking = true
			cmd = components.ToastTickCmd()
		}
	case components.ToastTickMsg:
		if len(m.toasts.Tick()) > 0 {
			cmd = components.ToastTickCmd()
		} else {
			m.ticking = false
		}

	case userMsg:
		m.header.SetUser(view.UserBadge(msg))
	case timerMsg:
		t := view.Timer(msg)
		m.header.SetTimer(t)
		if components.Visible(t) {
			m.expired = true
			m.overlay.Message = session.ExpiredMessage
		}
	case menuMsg:
		m.sidebar.SetMenu(view.Menu(msg))
		m.palette.SetItems(msg.Items)
		if m.screen == screenStarting {
			m.screen = screenPortal
		}
	case collapseMsg:
		m.sidebar.Collapse()
		m.focus = focusPage
	case pageMsg:
		p := view.Page(msg)
		m.page.SetPage(p)
		m.header.PageTitle = p.Title
		m.screen = screenPortal
		if p.Loading {
			cmd = m.page.SpinnerTick()
		}
	case spinner.TickMsg:
		cmd = m.page.Update(msg)
	case modalMsg:
		cmd = m.dialog.Show(view.Modal(msg))
	case hideMsg:
		m.dialog.Hide(string(msg))
	case themeMsg:
		m.setTheme(string(msg))
	case redirectMsg:
		cmd = m.toLogin(string(msg))

	case loginDoneMsg:
		cmd = m.loginDone(msg)

	case tea.MouseMsg:
		if m.screen == screenPortal && !m.dialog.Visible() {
			cmd = m.page.Update(msg)
		}
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}
	return m, cmd
}

func (m *Model) setTheme(name string) {
	m.theme = styles.NewTheme(name)
	m.header.SetTheme(m.theme)
	m.sidebar.SetTheme(m.theme)
	m.status.SetTheme(m.theme)
	m.page.SetTheme(m.theme)
	m.dialog.SetTheme(m.theme)
	m.palette.SetTheme(m.theme)
	m.overlay.SetTheme(m.theme)
}

// ThemeName returns the resolved theme being drawn.
func (m *Model) ThemeName() string { return m.theme.Name }

func (m *Model) toLogin(reason string) tea.Cmd {
	m.screen = screenLogin
	m.ctl = nil
	m.expired = false
	m.help = false
	m.focus = focusPage
	m.header.ClearSession()
	m.header.PageTitle = ""
	m.palette.Hide()
	if m.dialog.Visible() {
		m.dialog.Hide(m.dialog.ID())
	}
	m.page.SetPage(view.Page{})
	return m.login.reset(reason)
}

func (m *Model) loginCmd(user, pass string) tea.Cmd {
	gw, timeout := m.opts.Gateway, m.opts.LoginTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := gw.Login(ctx, user, pass)
		return loginDoneMsg{res: res, err: err}
	}
}

func (m *Model) loginDone(msg loginDoneMsg) tea.Cmd {
	m.login.busy = false
	if msg.err != nil {
		m.login.err = fault.Message(msg.err)
		m.log.Info().Err(msg.err).Msg("login failed")
		return nil
	}
	err := m.opts.Store.Save(auth.StoredSession{
		Token:     msg.res.Token,
		User:      msg.res.User,
		ServerURL: m.opts.Gateway.BaseURL(),
		SavedAt:   time.Now(),
	})
	if err != nil {
		m.login.err = "Could not save session: " + err.Error()
		return nil
	}
	m.log.Info().Str("user", msg.res.User.Username).Msg("signed in")
	m.toasts.Add(view.Success(msg.res.Message))
	m.startPortal()
	if !m.ticking {
		m.ticking = true
		return components.ToastTickCmd()
	}
	return nil
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch {
	case m.screen == screenLogin:
		user, pass, submit, cmd := m.login.update(msg)
		if submit {
			return m.loginCmd(user, pass)
		}
		return cmd
	case m.screen == screenStarting || m.expired:
		return nil
	case m.help:
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.help = false
		}
		return nil
	case m.palette.Visible():
		id, cmd := m.palette.Update(msg)
		if id != "" {
			m.focus = focusPage
			m.call(func(c *portal.Controller) { _ = c.Navigate(id) })
		}
		return cmd
	case m.dialog.Visible():
		return m.dialogKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help = true
		return nil
	case key.Matches(msg, m.keys.Palette):
		return m.palette.Show()
	case key.Matches(msg, m.keys.Theme):
		m.call(func(c *portal.Controller) { c.ToggleTheme() })
		return nil
	case key.Matches(msg, m.keys.Sidebar):
		m.sidebar.Toggle()
		if m.sidebar.Collapsed() {
			m.focus = focusPage
		}
		return nil
	case key.Matches(msg, m.keys.Logout):
		m.call(func(c *portal.Controller) { c.Logout() })
		return nil
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.Dismiss()
		return nil
	case key.Matches(msg, m.keys.Refresh):
		if id := m.page.Page().ID; id != "" {
			m.call(func(c *portal.Controller) { _ = c.Navigate(id) })
		}
		return nil
	case key.Matches(msg, m.keys.PageUp):
		m.page.Scroll(-max(m.bodyHeight()/2, 1))
		return nil
	case key.Matches(msg, m.keys.PageDown):
		m.page.Scroll(max(m.bodyHeight()/2, 1))
		return nil
	}

	if m.focus == focusMenu {
		return m.menuKey(msg)
	}
	return m.pageKey(msg)
}

func (m *Model) menuKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.Move(-1)
	case key.Matches(msg, m.keys.Down):
		m.sidebar.Move(1)
	case key.Matches(msg, m.keys.Right, m.keys.Next, m.keys.Back):
		m.focus = focusPage
	case key.Matches(msg, m.keys.Select):
		if id, ok := m.sidebar.Selected(); ok {
			m.focus = focusPage
			m.call(func(c *portal.Controller) { _ = c.Navigate(id) })
		}
	}
	return nil
}

func (m *Model) pageKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.page.MoveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.page.MoveRow(1)
	case key.Matches(msg, m.keys.Left):
		m.page.MoveControl(-1)
	case key.Matches(msg, m.keys.Right):
		m.page.MoveControl(1)
	case key.Matches(msg, m.keys.Next):
		m.page.NextSection(1)
	case key.Matches(msg, m.keys.Prev):
		m.page.NextSection(-1)
	case key.Matches(msg, m.keys.Back):
		if m.sidebar.Collapsed() {
			m.sidebar.Toggle()
		}
		m.focus = focusMenu
	case key.Matches(msg, m.keys.Select):
		if run := m.page.Activate(); run != nil {
			m.opts.Post(run)
		}
	}
	return nil
}

func (m *Model) dialogKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.call(func(c *portal.Controller) { c.Backdrop() })
		return nil
	case "tab", "down":
		return m.dialog.FocusNext(1)
	case "shift+tab", "up":
		return m.dialog.FocusNext(-1)
	case "left", "right":
		if m.dialog.OnSelect() || m.dialog.OnButton() {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			m.dialog.Cycle(delta)
			return nil
		}
	case "enter":
		if p, ok := m.dialog.Submit(); ok {
			m.call(func(c *portal.Controller) { c.Modals().Press(p.ID, p.Index, p.Values) })
		}
		return nil
	}
	return m.dialog.Update(msg)
}

func (m *Model) quit() tea.Cmd {
	m.call(func(c *portal.Controller) { c.Close() })
	return tea.Quit
}

// =============================================================================
// VIEW
// =============================================================================

func (m *Model) bodyHeight() int {
	return max(m.height-2, 3)
}

// View renders the screen.
func (m *Model) View() string {
	t := m.theme
	now := time.Now()
	toasts := components.RenderToastStack(t, m.toasts.Toasts(), now, m.width, 0)

	if m.screen == screenLogin {
		h := m.height - lipgloss.Height(toasts)
		if toasts == "" {
			h = m.height
		}
		out := m.login.view(t, m.width, max(h, 10))
		if toasts != "" {
			out = lipgloss.JoinVertical(lipgloss.Right, out, toasts)
		}
		return out
	}

	m.header.SetWidth(m.width)
	m.status.Width = m.width
	body := max(m.height-2, 3)
	if toasts != "" {
		body = max(body-lipgloss.Height(toasts), 3)
	}

	var content string
	switch {
	case m.screen == screenStarting:
		content = lipgloss.Place(m.width, body, lipgloss.Center, lipgloss.Center, t.LoadingText.Render("Restoring session..."))
	case m.expired:
		m.overlay.Width, m.overlay.Height = m.width, body
		content = m.overlay.View()
	case m.help:
		content = components.RenderHelp(t, m.keys.HelpGroups(), m.width, body)
	case m.dialog.Visible():
		m.dialog.SetSize(m.width, body)
		content = m.dialog.View()
	case m.palette.Visible():
		m.palette.SetSize(m.width, body)
		content = m.palette.View()
	default:
		m.page.SetSize(m.width-m.sidebar.Width()-1, body)
		side := m.sidebar.View(body, m.focus == focusMenu)
		content = lipgloss.JoinHorizontal(lipgloss.Top, side, " ", m.page.View())
	}

	switch {
	case m.dialog.Visible():
		m.status.Bindings = DialogHelp()
	case m.focus == focusMenu:
		m.status.Bindings = m.keys.MenuHelp()
	default:
		m.status.Bindings = m.keys.PageHelp()
	}

	parts := []string{m.header.View(), content}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, m.status.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
