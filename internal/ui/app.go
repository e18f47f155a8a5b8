// Package ui provides the zenflow terminal interface.
// This file contains the main App model which owns the view state, routes
// messages between the tabs, and turns key presses into service writes.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"zenflow/internal/config"
	"zenflow/internal/demands"
	"zenflow/internal/tracker"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LayoutMode determines how the calendar and list are arranged.
type LayoutMode int

const (
	// LayoutWide shows the calendar beside the list.
	LayoutWide LayoutMode = iota
	// LayoutNarrow stacks the calendar above the list.
	LayoutNarrow
)

const calendarWidth = 26

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys                  *config.KeysConfig
	CalendarExpanded      bool
	NarrowLayoutThreshold int
}

// App is the main application model.
type App struct {
	svc        *tracker.Service
	board      *demands.Manager
	stateStore StateStore
	styles     *Styles
	config     *AppConfig

	todayList    *ItemList
	registryList *ItemList
	demandsPane  *DemandsPane
	form         *ItemForm
	helpOverlay  *HelpOverlay
	undoManager  *UndoManager
	undoBusy     bool
	confirm      *confirmState

	state       ViewState
	layoutMode  LayoutMode
	showHelp    bool
	width       int
	height      int
	status      string
	statusErr   bool
	statusUntil time.Time
	quitting    bool

	keys     GlobalKeyMap
	itemKeys ItemKeyMap
	calKeys  CalendarKeyMap
	helpKeys HelpKeyMap
}

type confirmState struct {
	title string
	body  string
	yes   tea.Cmd
	no    func()
}

// NewApp creates the application. board and stateStore may be nil; without a
// board the Demands tab is hidden. The saved view state is read here; items
// load in Init.
func NewApp(svc *tracker.Service, board *demands.Manager, stateStore StateStore, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{CalendarExpanded: true, NarrowLayoutThreshold: 80}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}

	a := &App{
		svc:          svc,
		board:        board,
		stateStore:   stateStore,
		styles:       styles,
		config:       cfg,
		todayList:    NewItemList("TODAY", "Nothing scheduled. Press 'a' to add an item.", styles, cfg.Keys),
		registryList: NewItemList("REGISTRY", "No items yet. Press 'a' to add one.", styles, cfg.Keys),
		form:         NewItemForm(styles, cfg.Keys),
		undoManager:  NewUndoManager(),
		keys:         NewGlobalKeyMap(cfg.Keys),
		itemKeys:     NewItemKeyMap(cfg.Keys),
		calKeys:      NewCalendarKeyMap(cfg.Keys),
		helpKeys:     DefaultHelpKeyMap(),
	}
	if board != nil {
		a.demandsPane = NewDemandsPane(board, styles, cfg.Keys)
	}
	a.helpOverlay = NewHelpOverlay(styles, a.keys, a.itemKeys, a.calKeys, board != nil)

	today := svc.Today()
	state := DefaultViewState(today, cfg.CalendarExpanded)
	if stateStore != nil {
		if err := stateStore.LoadUIState(&state); err != nil {
			state = DefaultViewState(today, cfg.CalendarExpanded)
			a.SetStatus("UI state: "+err.Error(), true)
		}
	}
	a.state = state.normalize(today, board != nil)
	a.setTab(a.state.ActiveTab)
	a.refresh()
	return a
}

// State returns the current view state.
func (a *App) State() ViewState { return a.state }

// tickMsg is sent periodically for status expiry.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init loads items and areas asynchronously.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), loadItemsCmd(a.svc)}
	if a.demandsPane != nil {
		cmds = append(cmds, a.demandsPane.LoadCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case itemsLoadedMsg:
		if msg.err != nil {
			a.SetStatus("Load: "+msg.err.Error(), true)
		}
		a.refresh()
		return a, nil

	case itemSavedMsg:
		return a, a.handleSaved(msg)

	case itemDeletedMsg:
		if msg.err != nil {
			a.SetStatus("Delete: "+msg.err.Error(), true)
		} else {
			a.undoManager.Push(NewDeleteAction(a.svc, msg.item))
			a.SetStatus("Deleted: "+truncateText(msg.item.Title, 30), false)
		}
		a.refresh()
		return a, nil

	case areasLoadedMsg, demandsLoadedMsg, demandChangedMsg:
		if err := demandErr(msg); err != nil {
			a.SetStatus("Demands: "+err.Error(), true)
		} else if m, ok := msg.(demandChangedMsg); ok {
			a.SetStatus(m.desc, false)
		}
		if a.demandsPane != nil {
			return a, a.demandsPane.Update(msg)
		}
		return a, nil

	case undoResultMsg:
		a.undoBusy = false
		switch {
		case msg.err != nil:
			a.SetStatus("Undo failed: "+msg.err.Error(), true)
		case msg.desc != "":
			a.SetStatus("Undid: "+msg.desc, false)
		default:
			a.SetStatus("Nothing to undo", false)
		}
		a.refresh()
		return a, nil

	case redoResultMsg:
		a.undoBusy = false
		switch {
		case msg.err != nil:
			a.SetStatus("Redo failed: "+msg.err.Error(), true)
		case msg.desc != "":
			a.SetStatus("Redid: "+msg.desc, false)
		default:
			a.SetStatus("Nothing to redo", false)
		}
		a.refresh()
		return a, nil

	case stateSavedMsg:
		if msg.err != nil {
			a.SetStatus("UI state: "+msg.err.Error(), true)
		}
		return a, nil

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tickMsg:
		if a.status != "" && !a.statusUntil.IsZero() && time.Now().After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		return a, tickCmd()

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}

	// Cursor blinks and other component messages.
	if a.form.IsOpen() {
		cmd, _ := a.form.Update(msg)
		return a, cmd
	}
	if a.state.ActiveTab == TabDemands && a.demandsPane != nil {
		return a, a.demandsPane.Update(msg)
	}
	return a, nil
}

func demandErr(msg tea.Msg) error {
	switch m := msg.(type) {
	case areasLoadedMsg:
		return m.err
	case demandsLoadedMsg:
		return m.err
	case demandChangedMsg:
		return m.err
	}
	return nil
}

// handleSaved applies the result of a register, edit or progress write.
func (a *App) handleSaved(msg itemSavedMsg) tea.Cmd {
	submitted := a.form.IsOpen() && (msg.op == opAdd || msg.op == opEdit)
	if msg.err != nil {
		if submitted {
			a.form.Fail(msg.err)
			return nil
		}
		if errors.Is(msg.err, tracker.ErrNotDue) {
			a.SetStatus(fmt.Sprintf("Not due on %s", a.state.SelectedDate), true)
			return nil
		}
		a.SetStatus(strings.ToUpper(string(msg.op[:1]))+string(msg.op[1:])+": "+msg.err.Error(), true)
		return nil
	}

	it := msg.after
	switch msg.op {
	case opAdd:
		a.undoManager.Push(NewAddAction(a.svc, it))
		a.SetStatus("Added: "+truncateText(it.Title, 30), false)
	case opEdit:
		a.undoManager.Push(NewSnapshotAction(a.svc, "Edited: ", *msg.before, it))
		a.SetStatus("Saved: "+truncateText(it.Title, 30), false)
	case opProgress:
		a.undoManager.Push(NewSnapshotAction(a.svc, "Progress: ", *msg.before, it))
		a.SetStatus(progressStatus(it, a.state.SelectedDate), false)
	}

	var cmd tea.Cmd
	if submitted {
		a.form.Close()
		a.state.FormOpen = false
		cmd = a.saveState()
	}
	a.refresh()
	a.activeList().SelectID(it.ID)
	return cmd
}

func progressStatus(it tracker.Item, date tracker.Date) string {
	day := it.Day(date)
	title := truncateText(it.Title, 30)
	switch {
	case day.DayStatus == tracker.StatusCompleted:
		return "Completed: " + title
	case day.RepetitionsDone == 0:
		return "Reset: " + title
	default:
		return fmt.Sprintf("Progress %d/%d: %s", day.RepetitionsDone, it.TargetRepetitions, title)
	}
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			cmd := a.confirm.yes
			a.confirm = nil
			return cmd
		case "n", "N", "esc":
			if a.confirm.no != nil {
				a.confirm.no()
			}
			a.confirm = nil
			a.SetStatus("Canceled", false)
		}
		return nil
	}

	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return nil
	}

	if a.form.IsOpen() {
		cmd, form := a.form.Update(msg)
		if form != nil {
			if edit := a.form.Editing(); edit != nil {
				return editItemCmd(a.svc, *edit, *form)
			}
			return registerItemCmd(a.svc, *form)
		}
		if !a.form.IsOpen() {
			a.state.FormOpen = false
			return tea.Batch(cmd, a.saveState())
		}
		return cmd
	}

	if a.state.ActiveTab == TabDemands && a.demandsPane != nil && a.demandsPane.IsAdding() {
		return a.demandsPane.Update(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		if a.stateStore != nil {
			if err := a.stateStore.SaveUIState(a.state); err != nil {
				a.SetStatus("UI state: "+err.Error(), true)
			}
		}
		return tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return nil

	case key.Matches(msg, a.keys.NextTab):
		return a.switchTab(a.nextTab())

	case key.Matches(msg, a.keys.TabToday):
		return a.switchTab(TabToday)

	case key.Matches(msg, a.keys.TabRegistry):
		return a.switchTab(TabRegistry)

	case key.Matches(msg, a.keys.TabDemands):
		if a.demandsPane == nil {
			a.SetStatus("Demands need the sqlite or remote backend", true)
			return nil
		}
		return a.switchTab(TabDemands)

	case key.Matches(msg, a.keys.Undo):
		if a.undoBusy {
			a.SetStatus("Undo: busy", true)
			return nil
		}
		a.undoBusy = true
		return undoCmd(a.undoManager)

	case key.Matches(msg, a.keys.Redo):
		if a.undoBusy {
			a.SetStatus("Redo: busy", true)
			return nil
		}
		a.undoBusy = true
		return redoCmd(a.undoManager)
	}

	if a.state.ActiveTab == TabDemands {
		return a.handleDemandKey(msg)
	}
	if cmd, ok := a.handleCalendarKey(msg); ok {
		return cmd
	}
	return a.handleItemKey(msg)
}

func (a *App) handleCalendarKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, a.calKeys.Toggle):
		a.state.CalendarExpanded = !a.state.CalendarExpanded
		a.updateLayout()
		return a.saveState(), true
	case key.Matches(msg, a.calKeys.PrevDay):
		return a.setDate(a.state.SelectedDate.AddDays(-1)), true
	case key.Matches(msg, a.calKeys.NextDay):
		return a.setDate(a.state.SelectedDate.AddDays(1)), true
	case key.Matches(msg, a.calKeys.PrevMonth):
		return a.setDate(shiftDateMonth(a.state.SelectedDate, -1)), true
	case key.Matches(msg, a.calKeys.NextMonth):
		return a.setDate(shiftDateMonth(a.state.SelectedDate, 1)), true
	case key.Matches(msg, a.calKeys.Today):
		return a.setDate(a.svc.Today()), true
	}
	return nil, false
}

func (a *App) handleItemKey(msg tea.KeyMsg) tea.Cmd {
	list := a.activeList()
	switch {
	case key.Matches(msg, a.itemKeys.Add):
		a.state.FormOpen = true
		return tea.Batch(a.form.Open(a.state.SelectedDate, nil), a.saveState())

	case key.Matches(msg, a.itemKeys.Edit):
		it, ok := list.Selected()
		if !ok {
			a.SetStatus("No item selected", true)
			return nil
		}
		a.state.FormOpen = true
		return tea.Batch(a.form.Open(a.state.SelectedDate, &it), a.saveState())

	case key.Matches(msg, a.itemKeys.Progress):
		it, ok := list.Selected()
		if !ok {
			return nil
		}
		if !tracker.IsActionable(it, a.state.SelectedDate) {
			a.SetStatus(fmt.Sprintf("Not due on %s", a.state.SelectedDate), true)
			return nil
		}
		return progressCmd(a.svc, it, a.state.SelectedDate)

	case key.Matches(msg, a.itemKeys.Delete):
		it, ok := list.Selected()
		if !ok {
			a.SetStatus("No item selected", true)
			return nil
		}
		if _, err := a.svc.RequestDelete(it.ID); err != nil {
			a.SetStatus("Delete: "+err.Error(), true)
			return nil
		}
		id := it.ID
		a.confirm = &confirmState{
			title: "Delete item?",
			body:  truncateText(it.Title, 60),
			yes:   confirmDeleteCmd(a.svc, id),
			no:    func() { a.svc.CancelDelete(id) },
		}
		return nil
	}

	list.Update(msg)
	return nil
}

func (a *App) handleDemandKey(msg tea.KeyMsg) tea.Cmd {
	if a.demandsPane == nil {
		return nil
	}
	if key.Matches(msg, a.itemKeys.Delete) {
		if area, ok := a.demandsPane.SelectedArea(); ok {
			if _, err := a.board.RequestDeleteArea(area.ID); err != nil {
				a.SetStatus("Delete: "+err.Error(), true)
				return nil
			}
			id := area.ID
			a.confirm = &confirmState{
				title: "Delete area and all its demands?",
				body:  fmt.Sprintf("%s (%d)", truncateText(area.Name, 50), area.DemandCount),
				yes:   confirmDeleteAreaCmd(a.board, area),
				no:    func() { a.board.CancelDeleteArea(id) },
			}
			return nil
		}
	}
	return a.demandsPane.Update(msg)
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.confirm != nil || a.form.IsOpen() {
		return nil
	}
	if a.showHelp {
		if msg.Action == tea.MouseActionPress {
			a.showHelp = false
		}
		return nil
	}

	// Row 1 is the tab bar.
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == 1 {
		tabs := a.tabs()
		slot := a.width / len(tabs)
		if slot > 0 {
			return a.switchTab(tabs[min(msg.X/slot, len(tabs)-1)])
		}
	}

	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		if a.state.ActiveTab != TabDemands {
			a.activeList().Update(msg)
		}
	}
	return nil
}

func (a *App) tabs() []Tab {
	if a.demandsPane == nil {
		return []Tab{TabToday, TabRegistry}
	}
	return []Tab{TabToday, TabRegistry, TabDemands}
}

func (a *App) nextTab() Tab {
	tabs := a.tabs()
	for i, t := range tabs {
		if t == a.state.ActiveTab {
			return tabs[(i+1)%len(tabs)]
		}
	}
	return TabToday
}

func (a *App) switchTab(tab Tab) tea.Cmd {
	if tab == a.state.ActiveTab {
		return nil
	}
	a.setTab(tab)
	return a.saveState()
}

func (a *App) setTab(tab Tab) {
	a.state.ActiveTab = tab
	a.todayList.SetFocused(tab == TabToday)
	a.registryList.SetFocused(tab == TabRegistry)
	if a.demandsPane != nil {
		a.demandsPane.SetFocused(tab == TabDemands)
	}
}

func (a *App) activeList() *ItemList {
	if a.state.ActiveTab == TabRegistry {
		return a.registryList
	}
	return a.todayList
}

func (a *App) setDate(d tracker.Date) tea.Cmd {
	if !d.Valid() {
		return nil
	}
	a.state.SelectedDate = d
	a.state.ViewMonth = monthOf(d)
	a.refresh()
	return a.saveState()
}

// refresh rebuilds both lists from the service's in-memory collection.
func (a *App) refresh() {
	date := a.state.SelectedDate
	a.todayList.SetItems(a.svc.Agenda(date), date)
	a.registryList.SetItems(a.svc.Registry(), date)
}

func (a *App) saveState() tea.Cmd {
	return saveStateCmd(a.stateStore, a.state)
}

// updateLayout recalculates sizes based on terminal dimensions.
func (a *App) updateLayout() {
	// Title bar, tab bar and help bar.
	contentHeight := a.height - 4
	if contentHeight < 10 {
		contentHeight = 10
	}
	totalWidth := max(20, a.width-2)

	a.helpOverlay.SetSize(a.width, a.height)
	a.form.SetWidth(a.width)

	threshold := a.config.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = 80
	}

	listWidth, listHeight := totalWidth, contentHeight
	if a.width < threshold {
		a.layoutMode = LayoutNarrow
		if a.state.CalendarExpanded {
			listHeight = max(8, contentHeight-9)
		}
	} else {
		a.layoutMode = LayoutWide
		if a.state.CalendarExpanded {
			listWidth = totalWidth - calendarWidth - 1
		}
	}

	a.todayList.SetSize(listWidth, listHeight)
	a.registryList.SetSize(listWidth, listHeight)
	if a.demandsPane != nil {
		a.demandsPane.SetSize(totalWidth, contentHeight)
	}
}

// View renders the entire app.
func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}
	if a.confirm != nil {
		return a.renderConfirm()
	}
	if a.showHelp {
		return a.helpOverlay.View()
	}
	if a.form.IsOpen() {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.form.View())
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")
	b.WriteString(a.renderTabs())
	b.WriteString("\n")
	b.WriteString(a.renderContent())
	b.WriteString("\n")
	b.WriteString(a.renderHelpBar())
	return b.String()
}

func (a *App) renderContent() string {
	if a.state.ActiveTab == TabDemands && a.demandsPane != nil {
		return a.demandsPane.View()
	}
	list := a.activeList().View()
	if !a.state.CalendarExpanded {
		return list
	}

	cal := a.styles.PaneStyle.Width(calendarWidth).Render(renderCalendar(
		a.styles,
		a.state.ViewMonth,
		a.state.SelectedDate,
		a.svc.Today(),
		dueDates(a.svc.Items(), a.state.ViewMonth),
	))
	if a.layoutMode == LayoutNarrow {
		return lipgloss.JoinVertical(lipgloss.Left, cal, list)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cal, " ", list)
}

func (a *App) renderTabs() string {
	labels := map[Tab]string{TabToday: "Today", TabRegistry: "Registry", TabDemands: "Demands"}

	activeStyle := lipgloss.NewStyle().Foreground(a.styles.ColorAccent).Bold(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(a.styles.ColorTextMuted)

	var parts []string
	for _, tab := range a.tabs() {
		if tab == a.state.ActiveTab {
			parts = append(parts, activeStyle.Render("["+labels[tab]+"]"))
		} else {
			parts = append(parts, inactiveStyle.Render(" "+labels[tab]+" "))
		}
	}
	return strings.Join(parts, "  ")
}

func (a *App) renderConfirm() string {
	overlayWidth := 60
	if a.width > 0 {
		overlayWidth = min(60, max(20, a.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.styles.ColorDanger).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.styles.ColorDanger)

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.confirm.title))
	b.WriteString("\n\n")
	b.WriteString(a.styles.ItemPendingStyle.Render(a.confirm.body))
	b.WriteString("\n\n")
	b.WriteString(a.styles.HelpStyle.Render("[y/enter] delete    [n/esc] cancel"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlayStyle.Render(b.String()))
}

func (a *App) renderGoodbye() string {
	done, total := a.todayList.Stats()

	var b strings.Builder
	b.WriteString("\n  See you later!\n\n")
	if total > 0 {
		fmt.Fprintf(&b, "  %s: %d/%d done (%d%%)\n\n", a.state.SelectedDate, done, total, done*100/total)
	}
	return b.String()
}

func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" zenflow ")

	done, total := a.todayList.Stats()
	stats := ""
	if total > 0 {
		stats = a.styles.StatLabelStyle.Render(fmt.Sprintf("Agenda: %d/%d", done, total))
	}

	d := a.state.SelectedDate
	dateStr := string(d)
	if d.Valid() {
		dateStr = tracker.WeekdayName(d.Weekday()) + " " + dateStr
	}
	if d == a.svc.Today() {
		dateStr += " (today)"
	}
	date := a.styles.DateStyle.Render(dateStr)

	spacer := a.width - lipgloss.Width(title) - lipgloss.Width(stats) - lipgloss.Width(date) - 4
	if spacer < 2 {
		spacer = 2
	}
	parts := []string{title}
	if stats != "" {
		parts = append(parts, "  "+stats)
	}
	parts = append(parts, strings.Repeat(" ", spacer), date)
	return strings.Join(parts, "")
}

// renderHelpBar shows the status message or context-sensitive hints.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}

	if a.state.ActiveTab == TabDemands && a.demandsPane != nil {
		if a.demandsPane.IsAdding() {
			return a.styles.RenderHelp("enter", "save", "esc", "cancel")
		}
		if a.demandsPane.InArea() {
			return a.styles.RenderHelp("a", "add", "space", "toggle", "x", "del", "esc", "back", "?", "help")
		}
		return a.styles.RenderHelp("a", "add area", "enter", "open", "x", "del", "tab", "tab", "?", "help")
	}

	return a.styles.RenderHelp(
		"a", "add",
		"space", "progress",
		"e", "edit",
		"x", "del",
		"h/l", "day",
		"c", "calendar",
		"?", "help",
	)
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = time.Now().Add(ttl)
}

// Run starts the Bubble Tea program.
func Run(svc *tracker.Service, board *demands.Manager, stateStore StateStore, styles *Styles, cfg *AppConfig) error {
	app := NewApp(svc, board, stateStore, styles, cfg)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
