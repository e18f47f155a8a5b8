// Package ui provides the zenflow terminal interface.
// This file defines message types for async I/O operations using the Bubble
// Tea command pattern. Every write returns one of these messages to keep the
// event loop non-blocking.
package ui

import (
	"zenflow/internal/tracker"
)

// =============================================================================
// Undo/Redo Messages
// =============================================================================

// undoResultMsg is sent when an undo operation completes.
type undoResultMsg struct {
	desc string
	err  error
}

// redoResultMsg is sent when a redo operation completes.
type redoResultMsg struct {
	desc string
	err  error
}

// =============================================================================
// Item Messages
// =============================================================================

// itemsLoadedMsg is sent when the service has reloaded from its store.
type itemsLoadedMsg struct {
	err error
}

// itemOp names the write behind an itemSavedMsg.
type itemOp string

const (
	opAdd      itemOp = "add"
	opEdit     itemOp = "edit"
	opProgress itemOp = "progress"
)

// itemSavedMsg is sent when an item write completes. before is nil for adds.
type itemSavedMsg struct {
	op     itemOp
	before *tracker.Item
	after  tracker.Item
	err    error
}

// itemDeletedMsg is sent when a confirmed delete completes.
type itemDeletedMsg struct {
	item tracker.Item
	err  error
}

// =============================================================================
// Demand Messages
// =============================================================================

// areasLoadedMsg is sent when the area list has been fetched.
type areasLoadedMsg struct {
	err error
}

// demandsLoadedMsg is sent when an area has been opened.
type demandsLoadedMsg struct {
	areaID string
	err    error
}

// demandChangedMsg is sent when an area or demand write completes.
type demandChangedMsg struct {
	desc string
	err  error
}

// =============================================================================
// UI State Messages
// =============================================================================

// stateSavedMsg is sent when the view state has been written.
type stateSavedMsg struct {
	err error
}
