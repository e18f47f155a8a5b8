// Package ui provides the zenflow terminal interface.
// This file implements undo/redo with item snapshots captured before and
// after each write.
package ui

import (
	"context"
	"sync"

	"zenflow/internal/tracker"

	"github.com/mattn/go-runewidth"
)

// maxHistorySize bounds the undo stack; the oldest entries fall off.
const maxHistorySize = 50

// UndoableAction is one reversible write. Redo may be nil, in which case the
// action leaves the history once undone.
type UndoableAction struct {
	Description string
	Undo        func() error
	Redo        func() error
}

// UndoManager holds the undo and redo stacks. Actions run without the lock
// held.
type UndoManager struct {
	mu     sync.Mutex
	done   []*UndoableAction
	undone []*UndoableAction
}

// NewUndoManager returns an empty history.
func NewUndoManager() *UndoManager {
	return &UndoManager{}
}

// Push records a completed action and forgets anything that could be redone.
func (m *UndoManager) Push(action *UndoableAction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undone = nil
	m.done = pushBounded(m.done, action)
}

// CanUndo reports whether Undo has anything to reverse.
func (m *UndoManager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.done) > 0
}

// CanRedo reports whether Redo has anything to reapply.
func (m *UndoManager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undone) > 0
}

// Undo reverses the latest action and returns its description. An empty
// history yields "" and nil. On failure the action stays on the undo stack.
func (m *UndoManager) Undo() (string, error) {
	return m.step(&m.done, &m.undone, func(a *UndoableAction) func() error { return a.Undo })
}

// Redo reapplies the latest undone action, mirroring Undo.
func (m *UndoManager) Redo() (string, error) {
	return m.step(&m.undone, &m.done, func(a *UndoableAction) func() error { return a.Redo })
}

// step pops from, runs the chosen half of the action, and moves it onto to.
// Actions without a redo half are not moved to the redo stack.
func (m *UndoManager) step(from, to *[]*UndoableAction, half func(*UndoableAction) func() error) (string, error) {
	m.mu.Lock()
	if len(*from) == 0 {
		m.mu.Unlock()
		return "", nil
	}
	action := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]
	m.mu.Unlock()

	if err := half(action)(); err != nil {
		m.mu.Lock()
		*from = append(*from, action)
		m.mu.Unlock()
		return "", err
	}

	if to == &m.undone && action.Redo == nil {
		return action.Description, nil
	}
	m.mu.Lock()
	*to = pushBounded(*to, action)
	m.mu.Unlock()
	return action.Description, nil
}

func pushBounded(stack []*UndoableAction, action *UndoableAction) []*UndoableAction {
	if len(stack) >= maxHistorySize {
		stack = append(stack[:0:0], stack[1:]...)
	}
	return append(stack, action)
}

// Clear drops the whole history.
func (m *UndoManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.done = nil
	m.undone = nil
}

// NewSnapshotAction undoes a progress action or an edit by writing back the
// full item as it was before, and redoes it by writing the result again.
func NewSnapshotAction(svc *tracker.Service, desc string, before, after tracker.Item) *UndoableAction {
	return &UndoableAction{
		Description: desc + truncateText(after.Title, 20),
		Undo: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
			defer cancel()
			_, err := svc.Replace(ctx, before)
			return err
		},
		Redo: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
			defer cancel()
			_, err := svc.Replace(ctx, after)
			return err
		},
	}
}

// NewAddAction undoes a registration by deleting the new item.
func NewAddAction(svc *tracker.Service, it tracker.Item) *UndoableAction {
	return &UndoableAction{
		Description: "Added: " + truncateText(it.Title, 20),
		Undo:        deleteItemFunc(svc, it.ID),
		Redo:        restoreItemFunc(svc, it),
	}
}

// NewDeleteAction undoes a delete by restoring the item with its history.
func NewDeleteAction(svc *tracker.Service, it tracker.Item) *UndoableAction {
	return &UndoableAction{
		Description: "Deleted: " + truncateText(it.Title, 20),
		Undo:        restoreItemFunc(svc, it),
		Redo:        deleteItemFunc(svc, it.ID),
	}
}

func restoreItemFunc(svc *tracker.Service, it tracker.Item) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		_, err := svc.Restore(ctx, it)
		return err
	}
}

// deleteItemFunc performs both delete steps; the user already confirmed the
// original action.
func deleteItemFunc(svc *tracker.Service, id string) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		if _, err := svc.RequestDelete(id); err != nil {
			return err
		}
		if _, err := svc.ConfirmDelete(ctx, id); err != nil {
			svc.CancelDelete(id)
			return err
		}
		return nil
	}
}

// truncateText shortens text to maxLen cells with an ellipsis if needed.
func truncateText(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	return runewidth.Truncate(text, maxLen, "..")
}
