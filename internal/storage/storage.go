// Package storage is the JSON file backend. Items live in items.json inside
// the data directory; every write is atomic and keeps a .bak copy that is used
// to recover from a corrupt file.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"zenflow/internal/fsutil"

	"github.com/gofrs/flock"
)

// SaveContext describes a completed write. It is passed to the callback
// registered with SetOnSaveWithContext.
type SaveContext struct {
	Filename  string // e.g. "items.json"
	Operation string // "insert", "update", "delete", "restore"
	ItemType  string // "item", "ui_state"
	ItemName  string // truncated item title
}

// Storage handles all file I/O operations.
type Storage struct {
	dataDir           string
	onSaveWithContext func(ctx SaveContext)
	now               func() time.Time

	mu   sync.Mutex   // guards read-modify-write of items.json in this process
	lock *flock.Flock // guards it across processes sharing the data dir
}

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600

	itemsFile   = "items.json"
	uiStateFile = "ui_state.json"
	lockFile    = ".items.lock"
)

// New creates a Storage rooted at dataDir, creating the directory and an
// empty items file if needed.
func New(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{dataDir: dataDir, now: time.Now}
	s.lock = flock.New(s.path(lockFile))
	if !fileExists(s.path(itemsFile)) {
		if err := s.saveItems(&itemFile{Version: itemFileVersion, Items: []itemRecord{}}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SetNowFunc overrides the clock used for corrupt-file timestamps.
// Passing nil resets it to time.Now.
func (s *Storage) SetNowFunc(now func() time.Time) {
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// SetOnSaveWithContext registers a callback invoked after each successful write.
func (s *Storage) SetOnSaveWithContext(fn func(ctx SaveContext)) {
	s.onSaveWithContext = fn
}

// GetDataDir returns the path to the data directory.
func (s *Storage) GetDataDir() string {
	return s.dataDir
}

func (s *Storage) path(filename string) string {
	return filepath.Join(s.dataDir, filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

func (s *Storage) writeJSONAtomic(filename string, v any) error {
	path := s.path(filename)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", filename, err)
	}

	fsutil.BestEffortBackup(path, dataFilePerm)

	if err := fsutil.WriteFileAtomic(path, data, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

func (s *Storage) notifySaveWithContext(ctx SaveContext) {
	if s.onSaveWithContext != nil {
		s.onSaveWithContext(ctx)
	}
}

// truncateName shortens s to at most maxLen runes for log and callback use.
func truncateName(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}

// loadJSONWithRecovery decodes filename into v. A missing file is created from
// v's current value; an empty or unparsable one goes through recovery, and
// the returned error says what happened even when v was filled.
func (s *Storage) loadJSONWithRecovery(filename string, v any) error {
	path := s.path(filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.writeJSONAtomic(filename, v)
		}
		return fmt.Errorf("read %s: %w", filename, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s.recoverCorruptJSON(filename, v, fmt.Errorf("%s is empty", filename))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return s.recoverCorruptJSON(filename, v, fmt.Errorf("parse %s: %w", filename, err))
	}
	return nil
}

func (s *Storage) recoverCorruptJSON(filename string, v any, cause error) error {
	path := s.path(filename)
	corruptPath := fmt.Sprintf("%s.corrupt.%s", path, s.now().Format("20060102-150405"))

	bakData, bakErr := os.ReadFile(path + ".bak")
	if bakErr == nil && len(bytes.TrimSpace(bakData)) > 0 {
		if err := json.Unmarshal(bakData, v); err == nil {
			_ = os.Rename(path, corruptPath)
			_ = fsutil.WriteFileAtomic(path, bakData, dataFilePerm)
			return &RecoveredError{Cause: cause, Detail: "recovered from " + filename + ".bak"}
		}
	}

	_ = os.Rename(path, corruptPath)
	_ = s.writeJSONAtomic(filename, v)
	return &RecoveredError{Cause: cause, Detail: "reset to empty; original moved to " + corruptPath}
}

// RecoveredError reports that a data file was unreadable and has been
// restored from backup or reset. The loaded data is usable.
type RecoveredError struct {
	Cause  error
	Detail string
}

func (e *RecoveredError) Error() string {
	return fmt.Sprintf("%v (%s)", e.Cause, e.Detail)
}

func (e *RecoveredError) Unwrap() error { return e.Cause }

// LoadUIState decodes the persisted UI state into v. A missing file leaves v
// untouched.
func (s *Storage) LoadUIState(v any) error {
	data, err := os.ReadFile(s.path(uiStateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", uiStateFile, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", uiStateFile, err)
	}
	return nil
}

// SaveUIState persists v as the UI state.
func (s *Storage) SaveUIState(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", uiStateFile, err)
	}
	if err := fsutil.WriteFileAtomic(s.path(uiStateFile), data, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", uiStateFile, err)
	}
	s.notifySaveWithContext(SaveContext{Filename: uiStateFile, Operation: "update", ItemType: "ui_state"})
	return nil
}
