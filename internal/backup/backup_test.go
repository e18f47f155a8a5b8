package backup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newTestManager returns a manager whose clock advances one second per
// backup so names never collide.
func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dataDir := t.TempDir()
	m := NewManager(dataDir, "test")
	clock := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	m.SetNowFunc(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	return m, dataDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

const itemsV1 = `{"version":1,"items":[{"id":"a","title":"Read"},{"id":"b","title":"Walk"}]}`

func TestCreate(t *testing.T) {
	m, dataDir := newTestManager(t)
	writeFile(t, filepath.Join(dataDir, "items.json"), itemsV1)
	writeFile(t, filepath.Join(dataDir, "ui_state.json"), `{"active_tab":"today"}`)

	name, err := m.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if name != "2024-03-04_090001_000" {
		t.Errorf("name = %q", name)
	}

	info, err := m.Get(name)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if info.Stats["items"] != 2 {
		t.Errorf("stats = %v, want 2 items", info.Stats)
	}
	if got := readFile(t, filepath.Join(info.Path, "items.json")); got != itemsV1 {
		t.Errorf("copied items = %q", got)
	}
	if _, err := os.Stat(filepath.Join(info.Path, "zenflow.db")); !errors.Is(err, os.ErrNotExist) {
		t.Error("missing database should not be copied")
	}
}

func TestListNewestFirst(t *testing.T) {
	m, dataDir := newTestManager(t)
	writeFile(t, filepath.Join(dataDir, "items.json"), itemsV1)

	if list, err := m.List(); err != nil || len(list) != 0 {
		t.Fatalf("List before any backup = %v, %v", list, err)
	}

	first, _ := m.Create()
	second, _ := m.Create()
	if err := os.Mkdir(filepath.Join(m.backupDir, "not-a-backup"), 0o700); err != nil {
		t.Fatal(err)
	}

	list, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != second || list[1].Name != first {
		t.Errorf("List = %+v", list)
	}
}

func TestRestore(t *testing.T) {
	m, dataDir := newTestManager(t)
	items := filepath.Join(dataDir, "items.json")
	db := filepath.Join(dataDir, "zenflow.db")
	writeFile(t, items, itemsV1)
	writeFile(t, db, "SQLite format 3\x00page data")

	name, err := m.Create()
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, items, `{"version":1,"items":[]}`)
	if err := m.Restore(name); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := readFile(t, items); got != itemsV1 {
		t.Errorf("items after restore = %q", got)
	}

	// The emptied file was kept as a safety backup.
	list, _ := m.List()
	if len(list) != 2 || list[0].Stats["items"] != 0 {
		t.Errorf("safety backup missing: %+v", list)
	}
}

func TestRestoreRejectsCorruptBackup(t *testing.T) {
	m, dataDir := newTestManager(t)
	items := filepath.Join(dataDir, "items.json")
	writeFile(t, items, itemsV1)
	writeFile(t, filepath.Join(dataDir, "zenflow.db"), "SQLite format 3\x00")

	name, _ := m.Create()
	info, _ := m.Get(name)

	for file, content := range map[string]string{
		"items.json": `{"items":[`,
		"zenflow.db": "plain text",
	} {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(info.Path, file)
			original := readFile(t, path)
			writeFile(t, path, content)
			defer writeFile(t, path, original)

			err := m.Restore(name)
			if err == nil || !strings.Contains(err.Error(), file) {
				t.Errorf("Restore = %v, want an error naming %s", err, file)
			}
			if got := readFile(t, items); got != itemsV1 {
				t.Error("data directory touched by a failed restore")
			}
		})
	}
}

func TestRestoreLatest(t *testing.T) {
	m, dataDir := newTestManager(t)
	if _, err := m.RestoreLatest(); !errors.Is(err, ErrNoBackups) {
		t.Errorf("RestoreLatest with no backups = %v", err)
	}

	items := filepath.Join(dataDir, "items.json")
	writeFile(t, items, itemsV1)
	want, _ := m.Create()
	writeFile(t, items, `{"version":1,"items":[]}`)

	got, err := m.RestoreLatest()
	if err != nil || got != want {
		t.Fatalf("RestoreLatest = %q, %v; want %q", got, err, want)
	}
	if readFile(t, items) != itemsV1 {
		t.Error("latest backup not restored")
	}
}

func TestPrune(t *testing.T) {
	m, dataDir := newTestManager(t)
	writeFile(t, filepath.Join(dataDir, "items.json"), itemsV1)
	for range 5 {
		if _, err := m.Create(); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := m.Prune(2)
	if err != nil || deleted != 3 {
		t.Fatalf("Prune = %d, %v", deleted, err)
	}
	list, _ := m.List()
	if len(list) != 2 || list[0].Name != "2024-03-04_090005_000" {
		t.Errorf("remaining = %+v", list)
	}
	if _, err := m.Prune(-1); err == nil {
		t.Error("negative keep accepted")
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"2024-03-04_090001", "2024-03-04_090001_123"}
	invalid := []string{"", "../2024-03-04_090001", "2024-03-04", "2024-03-04_090001_abc", "backups"}

	for _, name := range valid {
		if err := validateName(name); err != nil {
			t.Errorf("validateName(%q) = %v", name, err)
		}
	}
	for _, name := range invalid {
		if err := validateName(name); err == nil {
			t.Errorf("validateName(%q) accepted", name)
		}
	}
	if err := (NewManager(t.TempDir(), "")).Delete("2024-03-04_090001"); err == nil {
		t.Error("Delete of a missing backup succeeded")
	}
}
