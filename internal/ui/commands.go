// Package ui provides the zenflow terminal interface.
// This file contains tea.Cmd factories that wrap service and store calls so
// they run off the Bubble Tea event loop. Each command returns a message type
// defined in messages.go.
package ui

import (
	"context"
	"time"

	"zenflow/internal/demands"
	"zenflow/internal/tracker"

	tea "github.com/charmbracelet/bubbletea"
)

// cmdTimeout bounds every store round trip started from the UI.
const cmdTimeout = 20 * time.Second

// =============================================================================
// Item Commands
// =============================================================================

// loadItemsCmd reloads the service from its store.
func loadItemsCmd(svc *tracker.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		return itemsLoadedMsg{err: svc.Load(ctx)}
	}
}

// registerItemCmd stores a new item built from f.
func registerItemCmd(svc *tracker.Service, f tracker.Form) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		it, err := svc.Register(ctx, f)
		return itemSavedMsg{op: opAdd, after: it, err: err}
	}
}

// editItemCmd replaces the editable fields of before with f.
func editItemCmd(svc *tracker.Service, before tracker.Item, f tracker.Form) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		it, err := svc.Edit(ctx, before.ID, f)
		return itemSavedMsg{op: opEdit, before: &before, after: it, err: err}
	}
}

// progressCmd records one completion action on date.
func progressCmd(svc *tracker.Service, before tracker.Item, date tracker.Date) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		it, err := svc.RecordProgress(ctx, before.ID, date)
		return itemSavedMsg{op: opProgress, before: &before, after: it, err: err}
	}
}

// confirmDeleteCmd removes an item whose delete was already requested.
func confirmDeleteCmd(svc *tracker.Service, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		it, err := svc.ConfirmDelete(ctx, id)
		return itemDeletedMsg{item: it, err: err}
	}
}

// =============================================================================
// Demand Commands
// =============================================================================

func loadAreasCmd(m *demands.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		return areasLoadedMsg{err: m.Load(ctx)}
	}
}

func selectAreaCmd(m *demands.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		return demandsLoadedMsg{areaID: id, err: m.Select(ctx, id)}
	}
}

func createAreaCmd(m *demands.Manager, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		a, err := m.CreateArea(ctx, name)
		return demandChangedMsg{desc: "Added area: " + truncateText(a.Name, 20), err: err}
	}
}

func confirmDeleteAreaCmd(m *demands.Manager, area demands.Area) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		err := m.ConfirmDeleteArea(ctx, area.ID)
		return demandChangedMsg{desc: "Deleted area: " + truncateText(area.Name, 20), err: err}
	}
}

func createDemandCmd(m *demands.Manager, description string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		d, err := m.CreateDemand(ctx, description)
		return demandChangedMsg{desc: "Added: " + truncateText(d.Description, 20), err: err}
	}
}

func toggleDemandCmd(m *demands.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		d, err := m.ToggleDemand(ctx, id)
		desc := "Reopened: "
		if d.Status == demands.StatusDone {
			desc = "Done: "
		}
		return demandChangedMsg{desc: desc + truncateText(d.Description, 20), err: err}
	}
}

func deleteDemandCmd(m *demands.Manager, d demands.Demand) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		err := m.DeleteDemand(ctx, d.ID)
		return demandChangedMsg{desc: "Deleted: " + truncateText(d.Description, 20), err: err}
	}
}

// =============================================================================
// Undo/Redo Commands
// =============================================================================

func undoCmd(manager *UndoManager) tea.Cmd {
	return func() tea.Msg {
		desc, err := manager.Undo()
		return undoResultMsg{desc: desc, err: err}
	}
}

func redoCmd(manager *UndoManager) tea.Cmd {
	return func() tea.Msg {
		desc, err := manager.Redo()
		return redoResultMsg{desc: desc, err: err}
	}
}

// =============================================================================
// UI State Commands
// =============================================================================

// saveStateCmd persists v. A nil store makes it a no-op.
func saveStateCmd(store StateStore, v ViewState) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return stateSavedMsg{err: store.SaveUIState(v)}
	}
}
