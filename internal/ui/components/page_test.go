// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// testPage builds a page with a stats section, a table section and an
// actions-only section. Every callback appends to ran.
func testPage(id string, ran *[]string) view.Page {
	record := func(s string) func() { return func() { *ran = append(*ran, s) } }
	rowAction := func(name string) func(string) {
		return func(row string) { *ran = append(*ran, name+":"+row) }
	}
	return view.Page{
		ID:    id,
		Title: "Academics",
		Sections: []view.Section{
			{Heading: "Overview", Stats: []view.Stat{{Label: "Total", Value: "3"}}},
			{
				Heading: "All Academics",
				Table: &view.Table{
					Columns: []string{"ID", "Name"},
					Rows: []view.Row{
						{ID: "1", Cells: []string{"1", "Algebra"}},
						{ID: "2", Cells: []string{"2", "Physics"}},
						{ID: "3", Cells: []string{"3", "History"}},
					},
				},
				Actions:    []view.Action{{ID: "add", Label: "Add Academic", Run: record("add")}},
				RowActions: []view.RowAction{{ID: "view", Label: "View", Run: rowAction("view")}, {ID: "delete", Label: "Delete", Run: rowAction("delete")}},
			},
			{Heading: "Export", Actions: []view.Action{{ID: "csv", Label: "Export CSV", Run: record("csv")}}},
		},
	}
}

func newTestPageView() *PageView {
	p := NewPageView(styles.NewTheme(styles.ThemeLight))
	p.SetSize(100, 40)
	return p
}

// =============================================================================
// FOCUS TESTS
// =============================================================================

func TestPageView_ActivateFollowsFocus(t *testing.T) {
	var ran []string
	p := newTestPageView()
	p.SetPage(testPage("academics", &ran))

	p.Activate()()
	p.MoveControl(1)
	p.Activate()()
	p.MoveRow(1)
	p.Activate()()
	p.MoveRow(10)
	p.MoveControl(1)
	p.Activate()()

	want := []string{"add", "view:1", "view:2", "delete:3"}
	if strings.Join(ran, ",") != strings.Join(want, ",") {
		t.Errorf("ran = %v, want %v", ran, want)
	}
}

func TestPageView_SectionsWrapAround(t *testing.T) {
	var ran []string
	p := newTestPageView()
	p.SetPage(testPage("academics", &ran))

	p.NextSection(1)
	if got := p.FocusedControl(); got != "Export CSV" {
		t.Errorf("focused control = %q, want Export CSV", got)
	}
	p.NextSection(1)
	if got := p.FocusedControl(); got != "Add Academic" {
		t.Errorf("after wrap focused control = %q, want Add Academic", got)
	}
	if _, ok := p.SelectedRow(); !ok {
		t.Error("table section should have a selected row")
	}
}

func TestPageView_RefreshKeepsSelection(t *testing.T) {
	var ran []string
	p := newTestPageView()
	p.SetPage(testPage("academics", &ran))
	p.MoveRow(2)

	p.SetPage(testPage("academics", &ran))
	if row, _ := p.SelectedRow(); row != "3" {
		t.Errorf("refresh lost selection, row = %q", row)
	}

	p.SetPage(testPage("students", &ran))
	if row, _ := p.SelectedRow(); row != "1" {
		t.Errorf("new page should reset selection, row = %q", row)
	}
}

func TestPageView_ShrunkTableClampsSelection(t *testing.T) {
	var ran []string
	p := newTestPageView()
	p.SetPage(testPage("academics", &ran))
	p.MoveRow(2)

	pg := testPage("academics", &ran)
	pg.Sections[1].Table.Rows = pg.Sections[1].Table.Rows[:1]
	p.SetPage(pg)
	if row, _ := p.SelectedRow(); row != "1" {
		t.Errorf("selection should clamp to the last row, got %q", row)
	}
}

func TestPageView_LoadingHasNoActions(t *testing.T) {
	p := newTestPageView()
	p.SetPage(view.Page{ID: "users", Title: "Users", Loading: true})

	if p.Activate() != nil {
		t.Error("loading page should not activate anything")
	}
	if !strings.Contains(p.Content(), "Loading...") {
		t.Errorf("loading content = %q", p.Content())
	}
}

func TestPageView_EmptyTableHidesRowActions(t *testing.T) {
	var ran []string
	p := newTestPageView()
	pg := testPage("academics", &ran)
	pg.Sections[1].Table.Rows = nil
	pg.Sections[1].Table.Empty = "No academics yet"
	p.SetPage(pg)

	p.MoveControl(1)
	if got := p.FocusedControl(); got != "Add Academic" {
		t.Errorf("row actions should be skipped, focused %q", got)
	}
	content := p.Content()
	if !strings.Contains(content, "No academics yet") {
		t.Error("empty table text missing")
	}
	if strings.Contains(content, "Delete") {
		t.Error("row actions should not render without rows")
	}
}

// =============================================================================
// RENDERING TESTS
// =============================================================================

func TestPageView_RendersSections(t *testing.T) {
	var ran []string
	p := newTestPageView()
	p.SetPage(testPage("academics", &ran))

	content := p.Content()
	for _, want := range []string{"Academics", "Overview", "Total", "All Academics", "Name", "Physics", "Add Academic", "Export CSV"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q", want)
		}
	}
}
