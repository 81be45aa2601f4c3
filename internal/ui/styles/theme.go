// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/eduportal-tui/internal/view"
)

// Theme names accepted by Apply.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

// Resolve maps a theme name to light or dark. Anything other than "light" or
// "dark" asks the terminal.
func Resolve(name string) string {
	switch name {
	case ThemeLight, ThemeDark:
		return name
	}
	if termenv.HasDarkBackground() {
		return ThemeDark
	}
	return ThemeLight
}

// Apply makes every AdaptiveColor follow the named theme and returns the
// resolved name.
func Apply(name string) string {
	resolved := Resolve(name)
	lipgloss.SetHasDarkBackground(resolved == ThemeDark)
	return resolved
}

// Theme holds all the styled components for the application.
type Theme struct {
	Name         string
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// FRAME
	// ==========================================================================

	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style
	HeaderRole  lipgloss.Style

	Sidebar        lipgloss.Style
	MenuItem       lipgloss.Style
	MenuItemActive lipgloss.Style
	MenuCursor     lipgloss.Style

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// PAGE CONTENT
	// ==========================================================================

	PageTitle      lipgloss.Style
	SectionHeading lipgloss.Style
	SectionText    lipgloss.Style
	StatBox        lipgloss.Style
	StatLabel      lipgloss.Style
	StatValue      lipgloss.Style
	TableHeader    lipgloss.Style
	TableCell      lipgloss.Style
	TableSelected  lipgloss.Style
	TableBorder    lipgloss.Color
	TableEmpty     lipgloss.Style
	Action         lipgloss.Style
	ActionFocused  lipgloss.Style
	Spinner        lipgloss.Style
	LoadingText    lipgloss.Style

	// ==========================================================================
	// DIALOGS
	// ==========================================================================

	ModalBox        lipgloss.Style
	ModalTitle      lipgloss.Style
	ModalBody       lipgloss.Style
	FieldLabel      lipgloss.Style
	FieldRequired   lipgloss.Style
	FieldHint       lipgloss.Style
	FieldError      lipgloss.Style
	FieldFocused    lipgloss.Style
	DetailKey       lipgloss.Style
	ButtonPrimary   lipgloss.Style
	ButtonSecondary lipgloss.Style
	ButtonDanger    lipgloss.Style

	// ==========================================================================
	// SESSION TIMER
	// ==========================================================================

	TimerNormal  lipgloss.Style
	TimerWarning lipgloss.Style
	TimerExpired lipgloss.Style
	ExpiredBox   lipgloss.Style

	// ==========================================================================
	// NOTICES
	// ==========================================================================

	ToastBox     lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style

	// Login screen
	LoginBox   lipgloss.Style
	LoginTitle lipgloss.Style
}

// NewTheme applies name and builds the styles for it.
func NewTheme(name string) *Theme {
	colorProfile := termenv.ColorProfile()
	resolved := Apply(name)

	t := &Theme{
		Name:         resolved,
		IsDark:       resolved == ThemeDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.HeaderUser = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.HeaderRole = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.MenuItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.MenuItemActive = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.MenuCursor = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Page content
	t.PageTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginBottom(1)

	t.SectionHeading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.SectionText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.StatBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2).
		MarginRight(1)

	t.StatLabel = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatValue = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.TableHeader = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true).
		Padding(0, 1)

	t.TableCell = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.TableSelected = lipgloss.NewStyle().
		Background(SelectionBg).
		Foreground(TextPrimary).
		Bold(true).
		Padding(0, 1)

	t.TableBorder = lipgloss.Color("240")

	t.TableEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Action = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 1).
		MarginRight(1)

	t.ActionFocused = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 1).
		MarginRight(1)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.LoadingText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Dialogs
	t.ModalBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.ModalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginBottom(1)

	t.ModalBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.FieldLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.FieldRequired = lipgloss.NewStyle().
		Foreground(Rose)

	t.FieldHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.FieldError = lipgloss.NewStyle().
		Foreground(ErrorHighContrast)

	t.FieldFocused = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.DetailKey = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.ButtonPrimary = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 2).
		MarginRight(1)

	t.ButtonSecondary = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 2).
		MarginRight(1)

	t.ButtonDanger = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Padding(0, 2).
		MarginRight(1)

	// Session timer
	t.TimerNormal = lipgloss.NewStyle().
		Foreground(Emerald)

	t.TimerWarning = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.TimerExpired = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true).
		Blink(true)

	t.ExpiredBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 3)

	// Notices
	t.ToastBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)

	t.InfoStyle = lipgloss.NewStyle().
		Foreground(InfoHighContrast).
		Bold(true)

	// Login
	t.LoginBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(1, 3)

	t.LoginTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		MarginBottom(1)
}

// Indicator returns the ASCII indicator for a notice kind.
func Indicator(kind view.NoticeKind) string {
	switch kind {
	case view.NoticeSuccess:
		return StatusIndicators.Success
	case view.NoticeWarning:
		return StatusIndicators.Warning
	case view.NoticeError:
		return StatusIndicators.Error
	default:
		return StatusIndicators.Info
	}
}

// Notice returns the style and indicator for a notice kind.
func (t *Theme) Notice(kind view.NoticeKind) (lipgloss.Style, string) {
	switch kind {
	case view.NoticeSuccess:
		return t.SuccessStyle, Indicator(kind)
	case view.NoticeWarning:
		return t.WarningStyle, Indicator(kind)
	case view.NoticeError:
		return t.ErrorStyle, Indicator(kind)
	default:
		return t.InfoStyle, Indicator(kind)
	}
}

// NoticeBorder returns the toast border color for kind.
func NoticeBorder(kind view.NoticeKind) lipgloss.AdaptiveColor {
	switch kind {
	case view.NoticeSuccess:
		return Emerald
	case view.NoticeWarning:
		return Amber
	case view.NoticeError:
		return Rose
	default:
		return Cyan
	}
}

// Button returns the style for a dialog button.
func (t *Theme) Button(style view.ButtonStyle, focused bool) lipgloss.Style {
	var s lipgloss.Style
	switch style {
	case view.ButtonPrimary:
		s = t.ButtonPrimary
	case view.ButtonDanger:
		s = t.ButtonDanger
	default:
		s = t.ButtonSecondary
	}
	if focused {
		s = s.Bold(true).Underline(true)
	}
	return s
}

// Timer returns the style for the session countdown.
func (t *Theme) Timer(e view.Emphasis) lipgloss.Style {
	switch e {
	case view.EmphasisWarning:
		return t.TimerWarning
	case view.EmphasisExpired:
		return t.TimerExpired
	default:
		return t.TimerNormal
	}
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
