package ui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"zenflow/internal/config"
	"zenflow/internal/database"
	"zenflow/internal/demands"
	"zenflow/internal/storage"
	"zenflow/internal/tracker"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// testNow is a Monday.
var testNow = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

// setupTest prepares the test environment for deterministic rendering.
func setupTest(t *testing.T) {
	t.Helper()
	// Use ASCII profile to disable all color codes in output
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestStorage creates a Storage instance with a temporary directory.
func createTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	store.SetNowFunc(func() time.Time { return testNow })
	return store
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

// createTestService returns a loaded service over store with the clock
// pinned to testNow.
func createTestService(t *testing.T, store *storage.Storage) *tracker.Service {
	t.Helper()
	svc := tracker.NewService(store)
	svc.SetNowFunc(func() time.Time { return testNow })
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("failed to load service: %v", err)
	}
	return svc
}

// createTestBoard returns a demands manager backed by a fresh SQLite file.
func createTestBoard(t *testing.T) *demands.Manager {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "zenflow.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	m := demands.NewManager(database.NewDemandStore(db))
	m.SetNowFunc(func() time.Time { return testNow })
	return m
}

func testConfig() *AppConfig {
	return &AppConfig{
		Keys:                  &config.KeysConfig{},
		CalendarExpanded:      true,
		NarrowLayoutThreshold: 80,
	}
}

// createTestApp builds an app without a demands board and sizes it.
func createTestApp(t *testing.T) (*App, *tracker.Service, *storage.Storage) {
	t.Helper()
	store := createTestStorage(t)
	svc := createTestService(t, store)
	app := NewApp(svc, nil, store, createTestStyles(), testConfig())
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app, svc, store
}

func registerTestItem(t *testing.T, svc *tracker.Service, f tracker.Form) tracker.Item {
	t.Helper()
	if f.TargetRepetitions == 0 {
		f.TargetRepetitions = 1
	}
	it, err := svc.Register(context.Background(), f)
	if err != nil {
		t.Fatalf("Register(%q): %v", f.Title, err)
	}
	return it
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
)

// press sends msg to the app and runs the returned command once, feeding its
// message back. Batched commands are not expanded.
func press(app *App, msg tea.Msg) {
	_, cmd := app.Update(msg)
	if cmd == nil {
		return
	}
	if out := cmd(); out != nil {
		if _, isBatch := out.(tea.BatchMsg); isBatch {
			return
		}
		app.Update(out)
	}
}
