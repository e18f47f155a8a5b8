package ui

import (
	"fmt"
	"strings"

	"zenflow/internal/config"
	"zenflow/internal/demands"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// DemandsPane browses areas and, once one is opened, its demands.
type DemandsPane struct {
	board   *demands.Manager
	cursor  int
	focused bool
	width   int
	height  int
	adding  bool
	input   textinput.Model
	styles  *Styles

	keys      ItemKeyMap
	inputKeys InputKeyMap
}

// NewDemandsPane creates a pane over board.
func NewDemandsPane(board *demands.Manager, styles *Styles, keyCfg *config.KeysConfig) *DemandsPane {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 40
	return &DemandsPane{
		board:     board,
		input:     ti,
		styles:    styles,
		keys:      NewItemKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

// LoadCmd fetches the area list.
func (p *DemandsPane) LoadCmd() tea.Cmd {
	return loadAreasCmd(p.board)
}

// SetSize sets the pane dimensions.
func (p *DemandsPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(10, width-8)
}

// SetFocused sets whether the pane draws its cursor.
func (p *DemandsPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsAdding reports whether the text prompt is open.
func (p *DemandsPane) IsAdding() bool {
	return p.adding
}

// InArea reports whether an area is open.
func (p *DemandsPane) InArea() bool {
	_, ok := p.board.Selected()
	return ok
}

// SelectedArea returns the area under the cursor in the area list.
func (p *DemandsPane) SelectedArea() (demands.Area, bool) {
	if p.InArea() {
		return demands.Area{}, false
	}
	areas := p.board.Areas()
	if p.cursor < 0 || p.cursor >= len(areas) {
		return demands.Area{}, false
	}
	return areas[p.cursor], true
}

func (p *DemandsPane) rowCount() int {
	if p.InArea() {
		return len(p.board.Demands())
	}
	return len(p.board.Areas())
}

func (p *DemandsPane) clampCursor() {
	if n := p.rowCount(); p.cursor >= n {
		p.cursor = max(0, n-1)
	}
}

// Update handles keys and refreshes after demand messages.
func (p *DemandsPane) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case areasLoadedMsg, demandChangedMsg:
		p.clampCursor()
		return nil
	case demandsLoadedMsg:
		if msg.err == nil {
			p.cursor = 0
		}
		return nil
	}

	if p.adding {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, p.inputKeys.Confirm):
				text := strings.TrimSpace(p.input.Value())
				p.adding = false
				p.input.Reset()
				if text == "" {
					return nil
				}
				if p.InArea() {
					return createDemandCmd(p.board, text)
				}
				return createAreaCmd(p.board, text)
			case key.Matches(msg, p.inputKeys.Cancel):
				p.adding = false
				p.input.Reset()
				return nil
			}
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}

	if !p.focused {
		return nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, p.keys.Down):
		if n := p.rowCount(); n > 0 {
			p.cursor = min(p.cursor+1, n-1)
		}
	case key.Matches(keyMsg, p.keys.Up):
		p.cursor = max(p.cursor-1, 0)
	case key.Matches(keyMsg, p.keys.Top):
		p.cursor = 0
	case key.Matches(keyMsg, p.keys.Bottom):
		p.cursor = max(0, p.rowCount()-1)

	case key.Matches(keyMsg, p.keys.Add):
		p.adding = true
		p.input.Placeholder = "Area name"
		if p.InArea() {
			p.input.Placeholder = "Describe the demand"
		}
		p.input.Focus()
		return textinput.Blink

	case key.Matches(keyMsg, p.inputKeys.Cancel):
		if p.InArea() {
			p.board.Deselect()
			p.cursor = 0
		}

	case key.Matches(keyMsg, p.keys.Progress):
		if p.InArea() {
			list := p.board.Demands()
			if p.cursor < len(list) {
				return toggleDemandCmd(p.board, list[p.cursor].ID)
			}
			return nil
		}
		if area, ok := p.SelectedArea(); ok {
			return selectAreaCmd(p.board, area.ID)
		}

	case key.Matches(keyMsg, p.keys.Delete):
		if p.InArea() {
			list := p.board.Demands()
			if p.cursor < len(list) {
				return deleteDemandCmd(p.board, list[p.cursor])
			}
		}
	}
	return nil
}

// View renders the area list or the open area's demands.
func (p *DemandsPane) View() string {
	var b strings.Builder

	area, inArea := p.board.Selected()
	title := "DEMANDS"
	if inArea {
		title += " · " + area.Name
	}
	b.WriteString(p.styles.PaneTitleStyle.Render(title))
	b.WriteString("\n")
	sepWidth := max(10, p.width-4)
	b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	var rows []string
	if inArea {
		for _, d := range p.board.Demands() {
			check := p.styles.CheckPending
			text := p.styles.ItemPendingStyle
			if d.Status == demands.StatusDone {
				check = p.styles.CheckDone
				text = p.styles.ItemDoneStyle
			}
			desc := runewidth.Truncate(d.Description, max(5, p.width-12), "..")
			rows = append(rows, fmt.Sprintf("%s %s", check, text.Render(desc)))
		}
	} else {
		for _, a := range p.board.Areas() {
			name := runewidth.Truncate(a.Name, max(5, p.width-14), "..")
			rows = append(rows, fmt.Sprintf("%s %s", name, p.styles.ItemMetaStyle.Render(fmt.Sprintf("(%d)", a.DemandCount))))
		}
	}

	if len(rows) == 0 && !p.adding {
		empty := "No areas yet. Press 'a' to add one."
		if inArea {
			empty = "No demands here. Press 'a' to add one."
		}
		b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorTextMuted).Italic(true).Render("  " + empty))
		b.WriteString("\n")
	}
	for i, row := range rows {
		if i == p.cursor && p.focused && !p.adding {
			b.WriteString(p.styles.ItemSelectedStyle.Render(" " + row + " "))
		} else {
			b.WriteString(" " + row)
		}
		b.WriteString("\n")
	}

	if p.adding {
		b.WriteString("\n")
		b.WriteString(p.styles.InputPromptStyle.Render("+ ") + p.input.View())
		b.WriteString("\n")
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}
