// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package view defines the structured view-models the portal core emits and the
// Sink capability a renderer implements to display them.
//
// The core never touches a UI toolkit. It calls Sink methods from the event loop
// with plain values; a renderer (the bubbletea app, a test recorder) binds them.
package view

// NoticeKind is the severity of a transient notification.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

// String returns the notice label.
func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "Success"
	case NoticeWarning:
		return "Warning"
	case NoticeError:
		return "Error"
	default:
		return "Info"
	}
}

// Notice is a transient notification (toast).
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Info, Success, Warning and Error build notices.
func Info(msg string) Notice    { return Notice{Kind: NoticeInfo, Message: msg} }
func Success(msg string) Notice { return Notice{Kind: NoticeSuccess, Message: msg} }
func Warning(msg string) Notice { return Notice{Kind: NoticeWarning, Message: msg} }
func Error(msg string) Notice   { return Notice{Kind: NoticeError, Message: msg} }

// Emphasis is the visual state of the session countdown.
type Emphasis int

const (
	EmphasisNormal Emphasis = iota
	EmphasisWarning
	EmphasisExpired
)

// Timer is the countdown display.
type Timer struct {
	Text      string // MM:SS
	Remaining int    // seconds
	Emphasis  Emphasis
}

// UserBadge identifies the signed-in user.
type UserBadge struct {
	Username string
	Role     string
}

// MenuItem is one navigation link.
type MenuItem struct {
	ID     string
	Label  string
	Active bool
}

// Menu is the role-filtered navigation.
type Menu struct {
	Items  []MenuItem
	Active string
}

// =============================================================================
// PAGE CONTENT
// =============================================================================

// Stat is a labelled number on a dashboard.
type Stat struct {
	Label string
	Value string
}

// Table is tabular page or dialog content.
type Table struct {
	Columns []string
	Rows    []Row
	Empty   string // shown when Rows is empty
}

// Row is one table row. ID identifies the record for row actions.
type Row struct {
	ID    string
	Cells []string
}

// Action is a user-triggerable control on a page.
type Action struct {
	ID    string
	Label string
	Run   func() // invoked on the event loop
}

// Section is one block of page content.
type Section struct {
	Heading string
	Text    string
	Stats   []Stat
	Table   *Table
	Actions []Action
	// RowActions apply to the selected row of Table.
	RowActions []RowAction
}

// RowAction acts on a table row.
type RowAction struct {
	ID    string
	Label string
	Run   func(rowID string)
}

// Page is the content of the main area.
type Page struct {
	ID       string
	Title    string
	Loading  bool
	Sections []Section
}

// =============================================================================
// DIALOG CONTENT
// =============================================================================

// FieldKind is the input type of a form field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldPassword
	FieldSelect
	FieldNumber
	FieldDate
)

// Field is one form input.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Required    bool
	Placeholder string
	Hint        string
	Value       string
	Options     []string
	Error       string // field-level validation feedback
}

// Form is a dialog body made of inputs.
type Form struct {
	Intro  string
	Fields []Field
}

// Details is a read-only key/value dialog body.
type Details struct {
	Pairs [][2]string
}

// ButtonStyle selects button emphasis.
type ButtonStyle string

const (
	ButtonPrimary   ButtonStyle = "primary"
	ButtonSecondary ButtonStyle = "secondary"
	ButtonDanger    ButtonStyle = "danger"
)

// Button is a rendered dialog button.
type Button struct {
	Label string
	Style ButtonStyle
}

// Modal is a rendered dialog. Body is one of string, Form, Details or *Table.
type Modal struct {
	ID      string
	Title   string
	Body    any
	Buttons []Button
}

// =============================================================================
// SINK
// =============================================================================

// Sink receives view-models from the core. All calls happen on the event loop;
// implementations must not block.
type Sink interface {
	Notify(n Notice)
	ShowUser(u UserBadge)
	ShowTimer(t Timer)
	ShowMenu(m Menu)
	CollapseSidebar()
	ShowPage(p Page)
	ShowModal(m Modal)
	HideModal(id string)
	ApplyTheme(theme string)
	RedirectToLogin(reason string)
}
