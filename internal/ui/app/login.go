// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/eduportal-tui/internal/gateway"
	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
)

// =============================================================================
// LOGIN SCREEN
// =============================================================================

type loginDoneMsg struct {
	res *gateway.LoginResult
	err error
}

type loginForm struct {
	username textinput.Model
	password textinput.Model
	focus    int
	banner   string // why the user is here
	err      string
	busy     bool
	server   string
}

func newLoginForm(server string) loginForm {
	u := textinput.New()
	u.Prompt = ""
	u.Placeholder = "username"
	u.CharLimit = 64
	u.Width = 28

	p := textinput.New()
	p.Prompt = ""
	p.Placeholder = "password"
	p.CharLimit = 128
	p.Width = 28
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '*'

	f := loginForm{username: u, password: p, server: server}
	f.username.Focus()
	return f
}

// reset clears the form for a new sign-in and shows why.
func (f *loginForm) reset(banner string) tea.Cmd {
	f.banner = banner
	f.err = ""
	f.busy = false
	f.password.SetValue("")
	f.focus = 0
	f.password.Blur()
	return f.username.Focus()
}

func (f *loginForm) setFocus(i int) tea.Cmd {
	f.focus = i
	if i == 0 {
		f.password.Blur()
		return f.username.Focus()
	}
	f.username.Blur()
	return f.password.Focus()
}

// update handles a key. It reports credentials once the user submits.
func (f *loginForm) update(msg tea.KeyMsg) (user, pass string, submit bool, cmd tea.Cmd) {
	if f.busy {
		return "", "", false, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		return "", "", false, f.setFocus(1 - f.focus)
	case "enter":
		if f.focus == 0 {
			return "", "", false, f.setFocus(1)
		}
		user = strings.TrimSpace(f.username.Value())
		pass = f.password.Value()
		if user == "" || pass == "" {
			f.err = "Please enter username and password"
			return "", "", false, nil
		}
		f.err = ""
		f.busy = true
		return user, pass, true, nil
	}
	if f.focus == 0 {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return "", "", false, cmd
}

func (f *loginForm) view(t *styles.Theme, width, height int) string {
	label := func(s string, focused bool) string {
		if focused {
			return t.FieldFocused.Render(s)
		}
		return t.FieldLabel.Render(s)
	}

	lines := []string{t.LoginTitle.Render("EduPortal Login")}
	if f.banner != "" {
		lines = append(lines, t.InfoStyle.Render(styles.StatusIndicators.Info+" "+f.banner), "")
	}
	lines = append(lines,
		label("Username", f.focus == 0),
		"  "+f.username.View(),
		label("Password", f.focus == 1),
		"  "+f.password.View(),
		"",
	)
	switch {
	case f.busy:
		lines = append(lines, t.LoadingText.Render("Signing in..."))
	case f.err != "":
		lines = append(lines, t.ErrorStyle.Render(styles.StatusIndicators.Error+" "+f.err))
	default:
		lines = append(lines, t.ShortcutDesc.Render("enter sign in  tab switch field  ctrl+c quit"))
	}
	if f.server != "" {
		lines = append(lines, t.ShortcutDesc.Render("Server: "+f.server))
	}
	lines = append(lines, t.ShortcutDesc.Render("Forgot your password? Run: eduportal forgot-password"))

	box := t.LoginBox.Render(strings.Join(lines, "\n"))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
