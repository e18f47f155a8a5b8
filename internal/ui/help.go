package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders the key reference. Rows are built from the live key
// maps so remapped keys show up as configured.
type HelpOverlay struct {
	width  int
	height int
	styles *Styles

	global   GlobalKeyMap
	items    ItemKeyMap
	calendar CalendarKeyMap
	demands  bool
}

// NewHelpOverlay creates a new help overlay
func NewHelpOverlay(styles *Styles, global GlobalKeyMap, items ItemKeyMap, calendar CalendarKeyMap, demands bool) *HelpOverlay {
	return &HelpOverlay{
		styles:   styles,
		global:   global,
		items:    items,
		calendar: calendar,
		demands:  demands,
	}
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// keysLabel joins the bound keys of b for display.
func keysLabel(b key.Binding) string {
	keys := make([]string, 0, len(b.Keys()))
	for _, k := range b.Keys() {
		if k == " " {
			k = "space"
		}
		keys = append(keys, k)
	}
	return strings.Join(keys, " / ")
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 60
	if h.width > 0 {
		overlayWidth = min(60, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorAccent).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(16)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	var b strings.Builder
	row := func(binding key.Binding, desc string) {
		b.WriteString(keyStyle.Render(keysLabel(binding)) + descStyle.Render(desc) + "\n")
	}

	b.WriteString(titleStyle.Render("zenflow - Keyboard Shortcuts"))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Global"))
	b.WriteString("\n")
	row(h.global.NextTab, "Next tab")
	row(h.global.TabToday, "Today")
	row(h.global.TabRegistry, "Registry")
	if h.demands {
		row(h.global.TabDemands, "Demands")
	}
	row(h.global.Undo, "Undo")
	row(h.global.Redo, "Redo")
	row(h.global.Help, "Toggle help")
	row(h.global.Quit, "Quit")

	b.WriteString(sectionStyle.Render("Items"))
	b.WriteString("\n")
	row(h.items.Add, "Add item")
	row(h.items.Edit, "Edit item")
	row(h.items.Progress, "Record progress")
	row(h.items.Delete, "Delete item")
	row(h.items.Down, "Move down")
	row(h.items.Up, "Move up")

	b.WriteString(sectionStyle.Render("Calendar"))
	b.WriteString("\n")
	row(h.calendar.Toggle, "Show/hide")
	row(h.calendar.PrevDay, "Previous day")
	row(h.calendar.NextDay, "Next day")
	row(h.calendar.PrevMonth, "Previous month")
	row(h.calendar.NextMonth, "Next month")
	row(h.calendar.Today, "Jump to today")

	if h.demands {
		b.WriteString(sectionStyle.Render("Demands"))
		b.WriteString("\n")
		row(h.items.Progress, "Open area / toggle demand")
		b.WriteString(keyStyle.Render("esc") + descStyle.Render("Back to areas") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	content := overlayStyle.Render(b.String())
	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, content)
}
