// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// =============================================================================
// DIALOG
// =============================================================================

// dialogField is one form field. Selects keep an option index; every other
// kind edits through a text input.
type dialogField struct {
	def    view.Field
	input  textinput.Model
	option int
}

func (f *dialogField) value() string {
	if f.def.Kind == view.FieldSelect {
		if f.option < 0 || f.option >= len(f.def.Options) {
			return ""
		}
		return f.def.Options[f.option]
	}
	return f.input.Value()
}

// Press is a button press collected by the dialog.
type Press struct {
	ID     string
	Index  int
	Values map[string]string
}

// Dialog renders the live modal and collects its input. Focus runs through
// the fields and then the buttons.
type Dialog struct {
	modal  view.Modal
	fields []*dialogField
	focus  int
	theme  *styles.Theme
	width  int
	height int
}

// NewDialog creates a dialog with nothing to show.
func NewDialog(theme *styles.Theme) *Dialog {
	return &Dialog{theme: theme, width: 80, height: 24}
}

// SetTheme swaps the styles after a theme change.
func (d *Dialog) SetTheme(theme *styles.Theme) { d.theme = theme }

// SetSize sets the screen size the dialog is centred in.
func (d *Dialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Visible reports whether a modal is showing.
func (d *Dialog) Visible() bool { return d.modal.ID != "" }

// ID returns the id of the showing modal.
func (d *Dialog) ID() string { return d.modal.ID }

// Show displays m. Showing the same modal again, as happens after a failed
// validation, keeps what the user typed and where the focus was.
func (d *Dialog) Show(m view.Modal) tea.Cmd {
	typed := map[string]string{}
	if m.ID == d.modal.ID {
		for _, f := range d.fields {
			typed[f.def.Name] = f.value()
		}
	} else {
		d.focus = 0
	}
	d.modal = m
	d.fields = nil

	if form, ok := m.Body.(view.Form); ok {
		for _, fd := range form.Fields {
			f := &dialogField{def: fd}
			v := fd.Value
			if prev, ok := typed[fd.Name]; ok {
				v = prev
			}
			if fd.Kind == view.FieldSelect {
				f.option = -1
				for i, o := range fd.Options {
					if o == v {
						f.option = i
					}
				}
				if f.option < 0 && fd.Required && len(fd.Options) > 0 {
					f.option = 0
				}
			} else {
				ti := textinput.New()
				ti.Prompt = ""
				ti.Placeholder = fd.Placeholder
				ti.CharLimit = 256
				ti.Width = 36
				if fd.Kind == view.FieldPassword {
					ti.EchoMode = textinput.EchoPassword
					ti.EchoCharacter = '*'
				}
				ti.SetValue(v)
				f.input = ti
			}
			d.fields = append(d.fields, f)
		}
	}

	d.focus = clamp(d.focus, 0, max(d.targets()-1, 0))
	d.firstError()
	return d.applyFocus()
}

// firstError moves focus to the first field with an error.
func (d *Dialog) firstError() {
	for i, f := range d.fields {
		if f.def.Error != "" {
			d.focus = i
			return
		}
	}
}

// Hide drops the modal if id is the one showing.
func (d *Dialog) Hide(id string) {
	if id == d.modal.ID {
		d.modal = view.Modal{}
		d.fields = nil
		d.focus = 0
	}
}

func (d *Dialog) targets() int { return len(d.fields) + len(d.modal.Buttons) }

func (d *Dialog) applyFocus() tea.Cmd {
	var cmd tea.Cmd
	for i, f := range d.fields {
		if f.def.Kind == view.FieldSelect {
			continue
		}
		if i == d.focus {
			cmd = f.input.Focus()
		} else {
			f.input.Blur()
		}
	}
	return cmd
}

// Values returns the current input by field name.
func (d *Dialog) Values() map[string]string {
	out := make(map[string]string, len(d.fields))
	for _, f := range d.fields {
		out[f.def.Name] = f.value()
	}
	return out
}

// FocusNext moves focus by delta through fields and buttons.
func (d *Dialog) FocusNext(delta int) tea.Cmd {
	n := d.targets()
	if n == 0 {
		return nil
	}
	d.focus = ((d.focus+delta)%n + n) % n
	return d.applyFocus()
}

// Cycle changes the option of a focused select, or moves between buttons.
func (d *Dialog) Cycle(delta int) {
	if d.focus < len(d.fields) {
		f := d.fields[d.focus]
		if f.def.Kind != view.FieldSelect || len(f.def.Options) == 0 {
			return
		}
		n := len(f.def.Options)
		f.option = ((f.option+delta)%n + n) % n
		return
	}
	nb := len(d.modal.Buttons)
	if nb == 0 {
		return
	}
	b := d.focus - len(d.fields)
	d.focus = len(d.fields) + ((b+delta)%nb+nb)%nb
}

// OnButton reports whether a button has focus.
func (d *Dialog) OnButton() bool { return d.focus >= len(d.fields) }

// OnSelect reports whether a select field has focus.
func (d *Dialog) OnSelect() bool {
	return d.focus < len(d.fields) && d.fields[d.focus].def.Kind == view.FieldSelect
}

// Submit returns the press for the focused button. On a field it presses the
// last button, which dialogs use for their confirming action.
func (d *Dialog) Submit() (Press, bool) {
	if !d.Visible() || len(d.modal.Buttons) == 0 {
		return Press{}, false
	}
	idx := len(d.modal.Buttons) - 1
	if d.OnButton() {
		idx = d.focus - len(d.fields)
	}
	return Press{ID: d.modal.ID, Index: idx, Values: d.Values()}, true
}

// PressButton returns the press for button index.
func (d *Dialog) PressButton(index int) (Press, bool) {
	if !d.Visible() || index < 0 || index >= len(d.modal.Buttons) {
		return Press{}, false
	}
	return Press{ID: d.modal.ID, Index: index, Values: d.Values()}, true
}

// Update forwards key input to the focused text field.
func (d *Dialog) Update(msg tea.Msg) tea.Cmd {
	if d.focus >= len(d.fields) {
		return nil
	}
	f := d.fields[d.focus]
	if f.def.Kind == view.FieldSelect {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if f.def.Error != "" {
		f.def.Error = ""
	}
	return cmd
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the modal box centred on the screen.
func (d *Dialog) View() string {
	if !d.Visible() {
		return ""
	}
	t := d.theme
	boxWidth := clamp(d.width-8, 36, 72)
	inner := boxWidth - 6

	parts := []string{t.ModalTitle.Render(d.modal.Title)}
	switch body := d.modal.Body.(type) {
	case string:
		parts = append(parts, t.ModalBody.Render(wrapText(body, inner)))
	case view.Form:
		if body.Intro != "" {
			parts = append(parts, t.FieldHint.Render(wrapText(body.Intro, inner)), "")
		}
		for i, f := range d.fields {
			parts = append(parts, d.renderField(f, i == d.focus, inner))
		}
	case view.Details:
		keyWidth := 0
		for _, kv := range body.Pairs {
			keyWidth = max(keyWidth, lipgloss.Width(kv[0]))
		}
		for _, kv := range body.Pairs {
			parts = append(parts, t.DetailKey.Render(padRight(kv[0], keyWidth))+"  "+wrapText(kv[1], inner-keyWidth-2))
		}
	}

	var buttons []string
	for i, b := range d.modal.Buttons {
		focused := d.focus == len(d.fields)+i
		label := b.Label
		if focused {
			label = "> " + label + " <"
		}
		buttons = append(buttons, t.Button(b.Style, focused).Render(label))
	}
	if len(buttons) > 0 {
		parts = append(parts, "", lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	}

	box := t.ModalBox.Width(boxWidth).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center, box)
}

func (d *Dialog) renderField(f *dialogField, focused bool, width int) string {
	t := d.theme
	label := t.FieldLabel.Render(f.def.Label)
	if focused {
		label = t.FieldFocused.Render(f.def.Label)
	}
	if f.def.Required {
		label += t.FieldRequired.Render(" *")
	}

	var value string
	if f.def.Kind == view.FieldSelect {
		v := f.value()
		if v == "" {
			v = "(choose)"
		}
		value = "< " + v + " >"
		if focused {
			value = t.FieldFocused.Render(value)
		}
	} else {
		value = f.input.View()
	}

	lines := []string{label, "  " + value}
	if f.def.Error != "" {
		lines = append(lines, "  "+t.FieldError.Render(styles.StatusIndicators.Error+" "+wrapText(f.def.Error, width-6)))
	} else if f.def.Hint != "" && focused {
		lines = append(lines, "  "+t.FieldHint.Render(f.def.Hint))
	}
	return strings.Join(lines, "\n")
}
