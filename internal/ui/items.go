package ui

import (
	"fmt"
	"strings"

	"zenflow/internal/config"
	"zenflow/internal/tracker"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ItemList renders a scrollable list of items with their state on one date.
// It only moves the cursor; the App turns key presses into writes.
type ItemList struct {
	title   string
	empty   string
	items   []tracker.Item
	date    tracker.Date
	cursor  int
	focused bool
	width   int
	height  int
	styles  *Styles
	keys    NavigationKeyMap
}

// NewItemList creates an empty list.
func NewItemList(title, empty string, styles *Styles, keyCfg *config.KeysConfig) *ItemList {
	return &ItemList{
		title:  title,
		empty:  empty,
		styles: styles,
		keys:   NewNavigationKeyMap(keyCfg),
	}
}

// SetItems replaces the rows and keeps the cursor in range.
func (l *ItemList) SetItems(items []tracker.Item, date tracker.Date) {
	l.items = items
	l.date = date
	if l.cursor >= len(l.items) {
		l.cursor = max(0, len(l.items)-1)
	}
}

// SelectID moves the cursor to the item with id, if present.
func (l *ItemList) SelectID(id string) {
	for i, it := range l.items {
		if it.ID == id {
			l.cursor = i
			return
		}
	}
}

// Selected returns the item under the cursor.
func (l *ItemList) Selected() (tracker.Item, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return tracker.Item{}, false
	}
	return l.items[l.cursor], true
}

// Len returns the number of rows.
func (l *ItemList) Len() int { return len(l.items) }

// Stats counts the rows completed on the list's date.
func (l *ItemList) Stats() (done, total int) {
	for _, it := range l.items {
		if it.CompletedOn(l.date) {
			done++
		}
	}
	return done, len(l.items)
}

// SetSize sets the pane dimensions.
func (l *ItemList) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// SetFocused sets whether the list draws its cursor.
func (l *ItemList) SetFocused(focused bool) {
	l.focused = focused
}

// Update moves the cursor.
func (l *ItemList) Update(msg tea.Msg) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, l.keys.Down):
			if len(l.items) > 0 {
				l.cursor = min(l.cursor+1, len(l.items)-1)
			}
		case key.Matches(msg, l.keys.Up):
			l.cursor = max(l.cursor-1, 0)
		case key.Matches(msg, l.keys.Top):
			l.cursor = 0
		case key.Matches(msg, l.keys.Bottom):
			l.cursor = max(0, len(l.items)-1)
		}
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			l.cursor = max(l.cursor-1, 0)
		case tea.MouseButtonWheelDown:
			if len(l.items) > 0 {
				l.cursor = min(l.cursor+1, len(l.items)-1)
			}
		}
	}
}

// visibleRows is the number of item rows that fit below the header.
func (l *ItemList) visibleRows() int {
	rows := l.height - 6 // title, separator, blank, stats, borders
	if rows < 3 {
		rows = 5
	}
	return rows
}

// View renders the list.
func (l *ItemList) View() string {
	var b strings.Builder

	b.WriteString(l.styles.PaneTitleStyle.Render(l.title))
	b.WriteString("\n")

	sepWidth := l.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(lipgloss.NewStyle().Foreground(l.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	if len(l.items) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(l.styles.ColorTextMuted).Italic(true).Render("  " + l.empty))
		b.WriteString("\n")
	} else {
		maxRows := l.visibleRows()
		startIdx := 0
		if l.cursor >= maxRows {
			startIdx = l.cursor - maxRows + 1
		}
		for i := startIdx; i < len(l.items) && i < startIdx+maxRows; i++ {
			b.WriteString(l.renderRow(l.items[i], i == l.cursor && l.focused))
			b.WriteString("\n")
		}

		done, total := l.Stats()
		b.WriteString("\n")
		b.WriteString("  " + l.styles.StatLabelStyle.Render(fmt.Sprintf("%d/%d complete on %s", done, total, l.date)))
		b.WriteString("\n")
	}

	style := l.styles.PaneStyle
	if l.focused {
		style = l.styles.PaneFocusedStyle
	}
	return style.Width(l.width).Height(l.height).Render(b.String())
}

// renderRow lays out: mark, glyph, title, progress, then the schedule
// right-aligned.
func (l *ItemList) renderRow(it tracker.Item, selected bool) string {
	done := it.CompletedOn(l.date)

	check := l.styles.CheckPending
	if done {
		check = l.styles.CheckDone
	}
	glyph := lipgloss.NewStyle().Foreground(iconColor(it, l.styles)).Render(Glyph(it.Icon))

	progress := ""
	if it.TargetRepetitions > 1 {
		progress = fmt.Sprintf(" [%d/%d]", it.Day(l.date).RepetitionsDone, it.TargetRepetitions)
	}
	meta := schedule(it)

	// Fixed parts: leading space, checkbox (3), space, glyph (1), space.
	fixed := 7 + runewidth.StringWidth(progress) + runewidth.StringWidth(meta) + 1
	textWidth := l.width - 4 - fixed
	if textWidth < 5 {
		textWidth = 5
	}
	title := runewidth.Truncate(it.Title, textWidth, "..")
	pad := textWidth - runewidth.StringWidth(title)
	if pad < 1 {
		pad = 1
	}

	if selected {
		line := fmt.Sprintf("%s %s %s%s%s%s", check, glyph, title, progress, strings.Repeat(" ", pad), meta)
		return l.styles.ItemSelectedStyle.Render(" " + line + " ")
	}

	titleStyle := l.styles.ItemPendingStyle
	if done {
		titleStyle = l.styles.ItemDoneStyle
	}
	return fmt.Sprintf(" %s %s %s%s%s%s", check, glyph, titleStyle.Render(title),
		l.styles.ItemMetaStyle.Render(progress), strings.Repeat(" ", pad), l.styles.ItemMetaStyle.Render(meta))
}

// schedule shows the routine days of a recurring item, or the start date of
// a one-off.
func schedule(it tracker.Item) string {
	if it.Kind.Recurring() && len(it.RecurrenceDays) > 0 {
		return strings.Join(it.RecurrenceDays, ",")
	}
	return string(it.StartDate)
}

func iconColor(it tracker.Item, s *Styles) lipgloss.TerminalColor {
	if it.IconColor == "" || it.IconColor == "#0f172a" {
		return s.ColorText
	}
	return lipgloss.Color(it.IconColor)
}
