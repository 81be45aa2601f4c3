// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package modal keeps at most one dialog on screen.
//
// Opening a dialog tears the previous one down first. Button actions either
// close the dialog or hand it to a callback that decides; asynchronous
// callbacks close through Dialog.Close, which is a no-op once a newer dialog
// has replaced theirs.
package modal

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/eduportal-tui/internal/view"
)

// Action is what a button does.
type Action struct {
	close bool
	fn    func(*Dialog)
}

// Close returns the action that dismisses the dialog.
func Close() Action { return Action{close: true} }

// Invoke returns an action that runs fn with the dialog. fn decides whether
// to close it.
func Invoke(fn func(*Dialog)) Action { return Action{fn: fn} }

// Button is a dialog button.
type Button struct {
	Label  string
	Style  view.ButtonStyle
	Action Action
}

// Descriptor describes a dialog. Body is a string, view.Form, view.Details
// or *view.Table.
type Descriptor struct {
	Title   string
	Body    any
	Buttons []Button
}

// =============================================================================
// DIALOG
// =============================================================================

// Dialog is an opened dialog.
type Dialog struct {
	id       string
	m        *Manager
	desc     Descriptor
	values   map[string]string
	releases []func()
	live     bool
}

// ID returns the dialog id the renderer echoes back on Press.
func (d *Dialog) ID() string { return d.id }

// Live reports whether the dialog is still on screen.
func (d *Dialog) Live() bool { return d.live }

// Value returns the submitted value of a form field.
func (d *Dialog) Value(name string) string { return d.values[name] }

// Values returns a copy of the submitted form values.
func (d *Dialog) Values() map[string]string {
	out := make(map[string]string, len(d.values))
	for k, v := range d.values {
		out[k] = v
	}
	return out
}

// OnRelease registers fn to run when the dialog is torn down.
func (d *Dialog) OnRelease(fn func()) {
	d.releases = append(d.releases, fn)
}

// Close dismisses this dialog if it is still the live one.
func (d *Dialog) Close() {
	if d.live && d.m.live == d {
		d.m.teardown(d)
	}
}

// Update re-renders the dialog with a new body, e.g. to show field errors.
// Entered values are carried into form fields.
func (d *Dialog) Update(body any) {
	if !d.live {
		return
	}
	if form, ok := body.(view.Form); ok {
		for i := range form.Fields {
			if v, ok := d.values[form.Fields[i].Name]; ok && form.Fields[i].Kind != view.FieldPassword {
				form.Fields[i].Value = v
			}
		}
		body = form
	}
	d.desc.Body = body
	d.m.show(d)
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the live dialog. Methods run on the event loop.
type Manager struct {
	sink view.Sink
	log  zerolog.Logger
	live *Dialog
}

// NewManager creates a manager rendering to sink.
func NewManager(sink view.Sink, log zerolog.Logger) *Manager {
	return &Manager{sink: sink, log: log.With().Str("component", "modal").Logger()}
}

// Open shows desc, replacing any live dialog.
func (m *Manager) Open(desc Descriptor) *Dialog {
	if m.live != nil {
		m.teardown(m.live)
	}
	d := &Dialog{
		id:     uuid.NewString(),
		m:      m,
		desc:   desc,
		values: map[string]string{},
		live:   true,
	}
	m.live = d
	m.show(d)
	m.log.Debug().Str("dialog", d.id).Str("title", desc.Title).Msg("dialog opened")
	return d
}

// Live returns the dialog on screen, or nil.
func (m *Manager) Live() *Dialog { return m.live }

// Close dismisses the live dialog. It is a no-op when none is open.
func (m *Manager) Close() {
	if m.live != nil {
		m.teardown(m.live)
	}
}

// Backdrop handles a click outside the dialog.
func (m *Manager) Backdrop() { m.Close() }

// Press runs button index of dialog id with the entered form values. Presses
// for a dialog that is no longer live are ignored.
func (m *Manager) Press(id string, index int, values map[string]string) bool {
	d := m.live
	if d == nil || d.id != id {
		m.log.Debug().Str("dialog", id).Msg("stale dialog press ignored")
		return false
	}
	if index < 0 || index >= len(d.desc.Buttons) {
		return false
	}
	d.values = make(map[string]string, len(values))
	for k, v := range values {
		d.values[k] = v
	}

	action := d.desc.Buttons[index].Action
	switch {
	case action.close:
		d.Close()
	case action.fn != nil:
		action.fn(d)
	}
	return true
}

func (m *Manager) show(d *Dialog) {
	buttons := make([]view.Button, len(d.desc.Buttons))
	for i, b := range d.desc.Buttons {
		style := b.Style
		if style == "" {
			style = view.ButtonSecondary
		}
		buttons[i] = view.Button{Label: b.Label, Style: style}
	}
	m.sink.ShowModal(view.Modal{
		ID:      d.id,
		Title:   d.desc.Title,
		Body:    d.desc.Body,
		Buttons: buttons,
	})
}

func (m *Manager) teardown(d *Dialog) {
	d.live = false
	if m.live == d {
		m.live = nil
	}
	for i := len(d.releases) - 1; i >= 0; i-- {
		d.releases[i]()
	}
	d.releases = nil
	m.sink.HideModal(d.id)
}
