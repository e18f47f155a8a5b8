package ui

import (
	"strings"

	"zenflow/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// parseKeys splits a comma-separated binding from the config. The word
// "space" stands for the space bar. Empty input yields defaults.
func parseKeys(custom string, defaults ...string) []string {
	if strings.TrimSpace(custom) == "" {
		return defaults
	}
	var out []string
	for _, k := range strings.Split(custom, ",") {
		k = strings.TrimSpace(k)
		if k == "space" {
			k = " "
		}
		if k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}

// bind builds a binding from a config value and its defaults.
func bind(custom string, defaults ...string) key.Binding {
	return key.NewBinding(key.WithKeys(parseKeys(custom, defaults...)...))
}

func keysOrDefault(cfg *config.KeysConfig) *config.KeysConfig {
	if cfg == nil {
		return &config.KeysConfig{}
	}
	return cfg
}

// GlobalKeyMap holds the keys handled on every screen.
type GlobalKeyMap struct {
	Quit        key.Binding
	Help        key.Binding
	NextTab     key.Binding
	TabToday    key.Binding
	TabRegistry key.Binding
	TabDemands  key.Binding
	Undo        key.Binding
	Redo        key.Binding
}

func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	cfg = keysOrDefault(cfg)
	return GlobalKeyMap{
		Quit:        bind(cfg.Quit, "q", "ctrl+c"),
		Help:        bind(cfg.Help, "?"),
		NextTab:     bind(cfg.NextTab, "tab"),
		TabToday:    bind(cfg.TabToday, "1"),
		TabRegistry: bind(cfg.TabRegistry, "2"),
		TabDemands:  bind(cfg.TabDemands, "3"),
		Undo:        bind(cfg.Undo, "ctrl+z", "u"),
		Redo:        bind(cfg.Redo, "ctrl+y"),
	}
}

// NavigationKeyMap moves the cursor in a list.
type NavigationKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	cfg = keysOrDefault(cfg)
	return NavigationKeyMap{
		Up:     bind(cfg.Up, "k", "up"),
		Down:   bind(cfg.Down, "j", "down"),
		Top:    bind(cfg.Top, "g"),
		Bottom: bind(cfg.Bottom, "G"),
	}
}

// InputKeyMap is shared by the item form and the demand prompts.
type InputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func NewInputKeyMap(cfg *config.KeysConfig) InputKeyMap {
	cfg = keysOrDefault(cfg)
	return InputKeyMap{
		Confirm: bind(cfg.Confirm, "enter"),
		Cancel:  bind(cfg.Cancel, "esc"),
	}
}

// ItemKeyMap acts on the selected row of the Today and Registry tabs.
type ItemKeyMap struct {
	Add      key.Binding
	Edit     key.Binding
	Progress key.Binding
	Delete   key.Binding
	NavigationKeyMap
}

func NewItemKeyMap(cfg *config.KeysConfig) ItemKeyMap {
	cfg = keysOrDefault(cfg)
	return ItemKeyMap{
		Add:              bind(cfg.Add, "a"),
		Edit:             bind(cfg.Edit, "e"),
		Progress:         bind(cfg.Progress, " ", "enter", "d"),
		Delete:           bind(cfg.Delete, "x"),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// CalendarKeyMap moves the selected date and folds the month grid.
type CalendarKeyMap struct {
	Toggle    key.Binding
	PrevDay   key.Binding
	NextDay   key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Today     key.Binding
}

func NewCalendarKeyMap(cfg *config.KeysConfig) CalendarKeyMap {
	cfg = keysOrDefault(cfg)
	return CalendarKeyMap{
		Toggle:    bind(cfg.Calendar, "c"),
		PrevDay:   bind(cfg.PrevDay, "h", "left"),
		NextDay:   bind(cfg.NextDay, "l", "right"),
		PrevMonth: bind(cfg.PrevMonth, "["),
		NextMonth: bind(cfg.NextMonth, "]"),
		Today:     bind(cfg.Today, "t"),
	}
}

// HelpKeyMap closes the help overlay. It is not configurable.
type HelpKeyMap struct {
	Close key.Binding
}

func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{Close: bind("", "?", "esc", "q", "enter", " ")}
}
