package ui

import (
	"strings"

	"zenflow/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Fixed colours of the slate/emerald palette. Primary, accent and muted come
// from the theme config.
const (
	defaultPrimary = "#0F172A" // slate-900
	defaultAccent  = "#10B981" // emerald-500
	defaultMuted   = "#6B7280" // gray-500

	colorDanger    = "#EF4444"
	colorWarning   = "#F59E0B"
	colorSurface   = "#334155" // slate-700
	colorText      = "#F8FAFC"
	colorTextMuted = "#94A3B8"
)

// Styles is the resolved theme shared by every pane.
type Styles struct {
	ColorPrimary   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorDanger    lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	TitleStyle       lipgloss.Style
	DateStyle        lipgloss.Style
	PaneStyle        lipgloss.Style
	PaneFocusedStyle lipgloss.Style
	PaneTitleStyle   lipgloss.Style

	ItemDoneStyle     lipgloss.Style
	ItemPendingStyle  lipgloss.Style
	ItemSelectedStyle lipgloss.Style
	ItemMetaStyle     lipgloss.Style
	CheckDone         string
	CheckPending      string

	CalendarHeaderStyle   lipgloss.Style
	CalendarDayStyle      lipgloss.Style
	CalendarDueStyle      lipgloss.Style
	CalendarTodayStyle    lipgloss.Style
	CalendarSelectedStyle lipgloss.Style

	HelpStyle        lipgloss.Style
	HelpKeyStyle     lipgloss.Style
	StatusStyle      lipgloss.Style
	ErrorStyle       lipgloss.Style
	InputPromptStyle lipgloss.Style
	StatLabelStyle   lipgloss.Style
}

// NewStylesFromTheme resolves theme over the default palette.
func NewStylesFromTheme(theme *config.ThemeConfig) *Styles {
	pick := func(v, def string) lipgloss.Color {
		if v = strings.TrimSpace(v); v != "" {
			return lipgloss.Color(v)
		}
		return lipgloss.Color(def)
	}

	s := &Styles{
		ColorPrimary:   pick(theme.Primary, defaultPrimary),
		ColorAccent:    pick(theme.Accent, defaultAccent),
		ColorMuted:     pick(theme.Muted, defaultMuted),
		ColorDanger:    lipgloss.Color(colorDanger),
		ColorWarning:   lipgloss.Color(colorWarning),
		ColorText:      lipgloss.Color(colorText),
		ColorTextMuted: lipgloss.Color(colorTextMuted),
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	pane := func(border lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)
	}

	s.TitleStyle = fg(s.ColorText).Background(s.ColorAccent).Bold(true).Padding(0, 1)
	s.DateStyle = fg(s.ColorTextMuted)
	s.PaneStyle = pane(s.ColorMuted)
	s.PaneFocusedStyle = pane(s.ColorAccent)
	s.PaneTitleStyle = fg(s.ColorAccent).Bold(true)

	// Completed rows are struck through.
	s.ItemDoneStyle = fg(s.ColorTextMuted).Strikethrough(true)
	s.ItemPendingStyle = fg(s.ColorText)
	s.ItemSelectedStyle = fg(s.ColorText).Background(lipgloss.Color(colorSurface)).Bold(true)
	s.ItemMetaStyle = fg(s.ColorTextMuted)
	s.CheckDone = fg(s.ColorAccent).Render("[✓]")
	s.CheckPending = fg(s.ColorMuted).Render("[ ]")

	s.CalendarHeaderStyle = fg(s.ColorTextMuted).Bold(true)
	s.CalendarDayStyle = fg(s.ColorText)
	s.CalendarDueStyle = fg(s.ColorAccent).Underline(true)
	s.CalendarTodayStyle = fg(s.ColorWarning).Bold(true)
	s.CalendarSelectedStyle = fg(s.ColorPrimary).Background(s.ColorAccent).Bold(true)

	s.HelpStyle = fg(s.ColorTextMuted)
	s.HelpKeyStyle = fg(s.ColorAccent).Bold(true)
	s.StatusStyle = fg(s.ColorAccent).Italic(true)
	s.ErrorStyle = fg(s.ColorDanger).Bold(true)
	s.InputPromptStyle = fg(s.ColorAccent).Bold(true)
	s.StatLabelStyle = fg(s.ColorTextMuted)
	return s
}

// RenderHelp renders key/description pairs as "[k] desc  [k] desc".
// A trailing unpaired key is ignored.
func (s *Styles) RenderHelp(keys ...string) string {
	parts := make([]string, 0, len(keys)/2)
	for i := 0; i+1 < len(keys); i += 2 {
		parts = append(parts, s.HelpKeyStyle.Render("["+keys[i]+"]")+" "+s.HelpStyle.Render(keys[i+1]))
	}
	return strings.Join(parts, "  ")
}
