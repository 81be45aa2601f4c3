// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

func testModal() view.Modal {
	return view.Modal{
		ID:    "dlg-1",
		Title: "Add Student",
		Body: view.Form{
			Intro: "Fields marked * are required.",
			Fields: []view.Field{
				{Name: "name", Label: "Name", Required: true},
				{Name: "password", Label: "Password", Kind: view.FieldPassword},
				{Name: "section", Label: "Section", Kind: view.FieldSelect, Required: true, Options: []string{"A", "B", "C"}},
			},
		},
		Buttons: []view.Button{{Label: "Cancel", Style: view.ButtonSecondary}, {Label: "Save", Style: view.ButtonPrimary}},
	}
}

func typeText(d *Dialog, s string) {
	d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// =============================================================================
// INPUT TESTS
// =============================================================================

func TestDialog_CollectsValues(t *testing.T) {
	d := NewDialog(styles.NewTheme(styles.ThemeLight))
	d.Show(testModal())

	typeText(d, "Asha")
	d.FocusNext(1)
	typeText(d, "secret")
	d.FocusNext(1)
	if !d.OnSelect() {
		t.Fatal("third field should be the select")
	}
	d.Cycle(1)

	got := d.Values()
	if got["name"] != "Asha" || got["password"] != "secret" || got["section"] != "B" {
		t.Errorf("values = %v", got)
	}
}

func TestDialog_SubmitPressesFocusedButton(t *testing.T) {
	d := NewDialog(styles.NewTheme(styles.ThemeLight))
	d.Show(testModal())

	p, ok := d.Submit()
	if !ok || p.Index != 1 || p.ID != "dlg-1" {
		t.Errorf("submit from a field = %+v, want the last button", p)
	}

	d.FocusNext(3)
	if !d.OnButton() {
		t.Fatal("focus should be on the first button")
	}
	if p, _ := d.Submit(); p.Index != 0 {
		t.Errorf("submit on Cancel pressed %d", p.Index)
	}
	d.Cycle(1)
	if p, _ := d.Submit(); p.Index != 1 {
		t.Errorf("after cycling submit pressed %d", p.Index)
	}
}

func TestDialog_RefreshKeepsInputAndFocusesError(t *testing.T) {
	d := NewDialog(styles.NewTheme(styles.ThemeLight))
	m := testModal()
	d.Show(m)
	typeText(d, "Asha")

	form := m.Body.(view.Form)
	form.Fields = append([]view.Field(nil), form.Fields...)
	form.Fields[1].Error = "Password must be at least 6 characters"
	m.Body = form
	d.Show(m)

	if d.Values()["name"] != "Asha" {
		t.Errorf("typed value lost on refresh: %v", d.Values())
	}
	if !strings.Contains(d.View(), "Password must be at least 6 characters") {
		t.Error("field error not rendered")
	}
	typeText(d, "x")
	if d.Values()["password"] != "x" {
		t.Errorf("focus should be on the field with the error, values %v", d.Values())
	}
}

func TestDialog_Hide(t *testing.T) {
	d := NewDialog(styles.NewTheme(styles.ThemeLight))
	d.Show(testModal())

	d.Hide("other")
	if !d.Visible() {
		t.Error("hiding another id should keep the dialog")
	}
	d.Hide("dlg-1")
	if d.Visible() || d.View() != "" {
		t.Error("dialog should be hidden")
	}
	if _, ok := d.Submit(); ok {
		t.Error("hidden dialog should not submit")
	}
}

// =============================================================================
// RENDERING TESTS
// =============================================================================

func TestDialog_RendersBodies(t *testing.T) {
	theme := styles.NewTheme(styles.ThemeLight)
	tests := []struct {
		name string
		body any
		want []string
	}{
		{"text", "Delete this academic?", []string{"Delete this academic?"}},
		{"details", view.Details{Pairs: [][2]string{{"Username", "stu_1001"}, {"Password", "x9Kp2q"}}}, []string{"Username", "stu_1001", "x9Kp2q"}},
		{"form", testModal().Body, []string{"Name *", "Section *", "< A >"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDialog(theme)
			d.SetSize(100, 40)
			m := testModal()
			m.Body = tt.body
			d.Show(m)
			out := d.View()
			for _, w := range append(tt.want, "Add Student", "Save") {
				if !strings.Contains(out, w) {
					t.Errorf("view missing %q", w)
				}
			}
		})
	}
}
