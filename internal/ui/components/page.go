// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jeranaias/eduportal-tui/internal/ui/styles"
	"github.com/jeranaias/eduportal-tui/internal/view"
)

// =============================================================================
// PAGE VIEW
// =============================================================================

// PageView renders a view.Page and tracks which section, row and action has
// focus. Only sections with a table or actions take focus.
type PageView struct {
	page      view.Page
	focusable []int       // indexes into page.Sections
	focus     int         // index into focusable
	rows      map[int]int // selected row per section
	control   int         // focused control in the focused section

	spinner  spinner.Model
	viewport viewport.Model
	theme    *styles.Theme
	width    int
	height   int

	focusLine int // first content line of the focused section
	rowLine   int // content line of the selected row, -1 when none
}

// NewPageView creates an empty page view.
func NewPageView(theme *styles.Theme) *PageView {
	p := &PageView{
		rows:     make(map[int]int),
		viewport: viewport.New(80, 20),
		theme:    theme,
		width:    80,
		height:   20,
		rowLine:  -1,
	}
	p.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Spinner))
	return p
}

// SetTheme swaps the styles after a theme change.
func (p *PageView) SetTheme(theme *styles.Theme) {
	p.theme = theme
	p.spinner.Style = theme.Spinner
	p.refresh()
}

// SetSize sets the area the page is drawn in.
func (p *PageView) SetSize(width, height int) {
	width, height = max(width, 20), max(height, 3)
	if width == p.width && height == p.height {
		return
	}
	p.width = width
	p.height = height
	p.viewport.Width = p.width
	p.viewport.Height = p.height
	p.refresh()
}

// SetPage shows pg. Focus and row selection survive a refresh of the same
// page and are reset when the page changes.
func (p *PageView) SetPage(pg view.Page) {
	same := pg.ID == p.page.ID
	p.page = pg
	p.focusable = p.focusable[:0]
	for i, s := range pg.Sections {
		if s.Table != nil || len(s.Actions) > 0 || len(s.RowActions) > 0 {
			p.focusable = append(p.focusable, i)
		}
	}
	if !same {
		p.focus = 0
		p.control = 0
		p.rows = make(map[int]int)
		p.viewport.GotoTop()
	}
	p.focus = clamp(p.focus, 0, max(len(p.focusable)-1, 0))
	for si, r := range p.rows {
		if si >= len(pg.Sections) || pg.Sections[si].Table == nil {
			delete(p.rows, si)
			continue
		}
		p.rows[si] = clamp(r, 0, max(len(pg.Sections[si].Table.Rows)-1, 0))
	}
	p.control = clamp(p.control, 0, max(p.controlCount()-1, 0))
	p.refresh()
}

// Page returns the page being shown.
func (p *PageView) Page() view.Page { return p.page }

// Loading reports whether the spinner is showing.
func (p *PageView) Loading() bool { return p.page.Loading }

// SpinnerTick starts the loading animation.
func (p *PageView) SpinnerTick() tea.Cmd { return p.spinner.Tick }

// Update advances the spinner and scrolls on mouse wheel.
func (p *PageView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.page.Loading {
			return nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		p.refresh()
		return cmd
	case tea.MouseMsg:
		var cmd tea.Cmd
		p.viewport, cmd = p.viewport.Update(msg)
		return cmd
	}
	return nil
}

// =============================================================================
// FOCUS
// =============================================================================

func (p *PageView) section() (view.Section, int, bool) {
	if len(p.focusable) == 0 {
		return view.Section{}, -1, false
	}
	si := p.focusable[p.focus]
	return p.page.Sections[si], si, true
}

func (p *PageView) controlCount() int {
	s, _, ok := p.section()
	if !ok {
		return 0
	}
	n := len(s.Actions)
	if s.Table != nil && len(s.Table.Rows) > 0 {
		n += len(s.RowActions)
	}
	return n
}

// NextSection moves focus to the next focusable section, wrapping around.
func (p *PageView) NextSection(delta int) {
	n := len(p.focusable)
	if n == 0 {
		return
	}
	p.focus = ((p.focus+delta)%n + n) % n
	p.control = 0
	p.refresh()
	p.viewport.SetYOffset(p.focusLine)
}

// MoveRow moves the table selection of the focused section.
func (p *PageView) MoveRow(delta int) {
	s, si, ok := p.section()
	if !ok || s.Table == nil || len(s.Table.Rows) == 0 {
		p.Scroll(delta)
		return
	}
	p.rows[si] = clamp(p.rows[si]+delta, 0, len(s.Table.Rows)-1)
	p.control = clamp(p.control, 0, max(p.controlCount()-1, 0))
	p.refresh()
	p.reveal()
}

// MoveControl moves between the actions of the focused section.
func (p *PageView) MoveControl(delta int) {
	n := p.controlCount()
	if n == 0 {
		return
	}
	p.control = ((p.control+delta)%n + n) % n
	p.refresh()
}

// Scroll moves the viewport by lines.
func (p *PageView) Scroll(lines int) {
	p.viewport.SetYOffset(p.viewport.YOffset + lines)
}

// SelectedRow returns the id of the selected row in the focused section.
func (p *PageView) SelectedRow() (string, bool) {
	s, si, ok := p.section()
	if !ok || s.Table == nil || len(s.Table.Rows) == 0 {
		return "", false
	}
	return s.Table.Rows[p.rows[si]].ID, true
}

// Activate returns the callback of the focused control, or nil. The caller
// runs it on the event loop.
func (p *PageView) Activate() func() {
	s, _, ok := p.section()
	if !ok || p.page.Loading {
		return nil
	}
	c := p.control
	if c < len(s.Actions) {
		return s.Actions[c].Run
	}
	c -= len(s.Actions)
	row, ok := p.SelectedRow()
	if !ok || c >= len(s.RowActions) {
		return nil
	}
	run := s.RowActions[c].Run
	return func() { run(row) }
}

// FocusedControl returns the label of the focused control.
func (p *PageView) FocusedControl() string {
	s, _, ok := p.section()
	if !ok {
		return ""
	}
	c := p.control
	if c < len(s.Actions) {
		return s.Actions[c].Label
	}
	c -= len(s.Actions)
	if c < len(s.RowActions) {
		return s.RowActions[c].Label
	}
	return ""
}

// reveal scrolls so that the selected row is visible.
func (p *PageView) reveal() {
	if p.rowLine < 0 {
		return
	}
	top := p.viewport.YOffset
	bottom := top + p.viewport.Height - 1
	switch {
	case p.rowLine < top:
		p.viewport.SetYOffset(p.rowLine)
	case p.rowLine > bottom:
		p.viewport.SetYOffset(p.rowLine - p.viewport.Height + 1)
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View returns the visible part of the page.
func (p *PageView) View() string { return p.viewport.View() }

// Content renders the whole page without scrolling.
func (p *PageView) Content() string { return p.render() }

func (p *PageView) refresh() {
	p.viewport.SetContent(p.render())
}

func (p *PageView) render() string {
	t := p.theme
	var b strings.Builder
	lines := 0
	write := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
		lines += lipgloss.Height(s)
	}

	p.rowLine = -1
	if p.page.Title != "" {
		write(t.PageTitle.Render(p.page.Title))
	}
	if p.page.Loading {
		write(p.spinner.View() + " " + t.LoadingText.Render("Loading..."))
		return b.String()
	}

	_, focused, _ := p.section()
	for si, s := range p.page.Sections {
		isFocused := si == focused
		if isFocused {
			p.focusLine = lines
		}
		if s.Heading != "" {
			heading := t.SectionHeading.Render(s.Heading)
			if isFocused {
				heading = t.MenuCursor.Render("> ") + heading
			}
			write(heading)
		}
		if s.Text != "" {
			write(t.SectionText.Render(wrapText(s.Text, p.width-2)))
		}
		if len(s.Stats) > 0 {
			write(p.renderStats(s.Stats))
		}
		if s.Table != nil {
			selected := -1
			if isFocused {
				selected = p.rows[si]
			}
			tbl := p.renderTable(*s.Table, selected)
			if selected >= 0 && len(s.Table.Rows) > 0 {
				// top border, header, header separator
				p.rowLine = lines + 3 + selected
			}
			write(tbl)
		}
		if controls := p.renderControls(s, isFocused); controls != "" {
			write(controls)
		}
		write("")
	}
	return b.String()
}

func (p *PageView) renderStats(stats []view.Stat) string {
	t := p.theme
	boxes := make([]string, len(stats))
	for i, st := range stats {
		boxes[i] = t.StatBox.Render(t.StatValue.Render(st.Value) + "\n" + t.StatLabel.Render(st.Label))
	}

	var rows []string
	var row []string
	used := 0
	for _, box := range boxes {
		w := lipgloss.Width(box)
		if used > 0 && used+w > p.width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, used = nil, 0
		}
		row = append(row, box)
		used += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (p *PageView) renderTable(tb view.Table, selected int) string {
	t := p.theme
	if len(tb.Rows) == 0 {
		empty := tb.Empty
		if empty == "" {
			empty = "No records found"
		}
		return t.TableEmpty.Render(empty)
	}

	colWidth := max((p.width-len(tb.Columns)-1)/max(len(tb.Columns), 1)-2, 4)
	rows := make([][]string, len(tb.Rows))
	for i, r := range tb.Rows {
		cells := make([]string, len(tb.Columns))
		for c := range cells {
			if c < len(r.Cells) {
				cells[c] = truncate(r.Cells[c], colWidth)
			}
		}
		rows[i] = cells
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.TableBorder)).
		Headers(tb.Columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return t.TableHeader
			case row == selected:
				return t.TableSelected
			default:
				return t.TableCell
			}
		}).
		String()
}

func (p *PageView) renderControls(s view.Section, focused bool) string {
	t := p.theme
	var parts []string
	i := 0
	add := func(label string) {
		style := t.Action
		if focused && i == p.control {
			style = t.ActionFocused
		}
		parts = append(parts, style.Render(label))
		i++
	}
	for _, a := range s.Actions {
		add(a.Label)
	}
	if s.Table != nil && len(s.Table.Rows) > 0 {
		for _, a := range s.RowActions {
			add(a.Label)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
