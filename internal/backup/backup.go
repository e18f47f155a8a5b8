// Package backup keeps timestamped snapshots of the zenflow data directory:
// the JSON item file, the saved view state, and the SQLite database when it
// lives in the data directory.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"zenflow/internal/fsutil"

	"github.com/tidwall/gjson"
)

const (
	ManifestVersion = "2"
	ManifestFile    = "manifest.json"
	BackupsDir      = "backups"

	nameLayout = "2006-01-02_150405"
)

// DataFiles are the files copied into each backup, when present.
var DataFiles = []string{"items.json", "ui_state.json", "zenflow.db"}

var sqliteHeader = []byte("SQLite format 3\x00")

// ErrNoBackups is returned by RestoreLatest when nothing has been saved yet.
var ErrNoBackups = errors.New("no backups available")

// Manager creates, lists, restores and prunes backups.
type Manager struct {
	dataDir    string
	backupDir  string
	appVersion string
	now        func() time.Time
}

// Manifest is written next to the copied files.
type Manifest struct {
	Version    string         `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Files      []string       `json:"files"`
	Stats      map[string]int `json:"stats"`
}

// Info summarises one backup.
type Info struct {
	Name      string
	Path      string
	CreatedAt time.Time
	Stats     map[string]int
}

// NewManager creates a manager for dataDir. Backups go to dataDir/backups.
func NewManager(dataDir, appVersion string) *Manager {
	return &Manager{
		dataDir:    dataDir,
		backupDir:  filepath.Join(dataDir, BackupsDir),
		appVersion: appVersion,
		now:        time.Now,
	}
}

// SetNowFunc overrides the clock used to name backups.
func (m *Manager) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	m.now = now
}

// Create copies the data files into a new backup and returns its name.
func (m *Manager) Create() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0o700); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	now := m.now()
	name := fmt.Sprintf("%s_%03d", now.Format(nameLayout), now.Nanosecond()/1e6)
	dir := filepath.Join(m.backupDir, name)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating backup %s: %w", name, err)
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Stats:      map[string]int{},
	}
	for _, file := range DataFiles {
		src := filepath.Join(m.dataDir, file)
		data, err := os.ReadFile(src)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err == nil {
			err = fsutil.WriteFileAtomic(filepath.Join(dir, file), data, 0o600)
		}
		if err != nil {
			_ = os.RemoveAll(dir)
			return "", fmt.Errorf("copying %s: %w", file, err)
		}
		manifest.Files = append(manifest.Files, file)
		if file == "items.json" {
			manifest.Stats["items"] = int(gjson.GetBytes(data, "items.#").Int())
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err == nil {
		err = fsutil.WriteFileAtomic(filepath.Join(dir, ManifestFile), data, 0o600)
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return name, nil
}

// List returns the backups, newest first. Directories that are neither
// described by a manifest nor named like a backup are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := m.info(e.Name())
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Get returns one backup by name.
func (m *Manager) Get(name string) (Info, error) {
	if err := validateName(name); err != nil {
		return Info{}, err
	}
	return m.info(name)
}

func (m *Manager) info(name string) (Info, error) {
	dir := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(dir); err != nil {
		return Info{}, fmt.Errorf("backup not found: %s", name)
	}
	manifest, err := readManifest(dir)
	if err != nil {
		created, perr := parseName(name)
		if perr != nil {
			return Info{}, fmt.Errorf("invalid backup: %s", name)
		}
		manifest = Manifest{CreatedAt: created, Stats: map[string]int{}}
	}
	return Info{Name: name, Path: dir, CreatedAt: manifest.CreatedAt, Stats: manifest.Stats}, nil
}

// Restore copies a backup's files over the data directory. A safety backup
// of the current files is taken first and named in any error.
func (m *Manager) Restore(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	dir := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("backup not found: %s", name)
	}

	files := DataFiles
	if manifest, err := readManifest(dir); err == nil {
		files = manifest.Files
	}

	// Check everything before touching the data directory.
	for _, file := range files {
		if err := validateFile(filepath.Join(dir, file)); err != nil {
			return fmt.Errorf("backup %s: %s is invalid: %w", name, file, err)
		}
	}

	safety, err := m.Create()
	if err != nil {
		return fmt.Errorf("creating safety backup: %w", err)
	}

	for _, file := range files {
		data, err := os.ReadFile(filepath.Join(dir, file))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err == nil {
			err = fsutil.WriteFileAtomic(filepath.Join(m.dataDir, file), data, 0o600)
		}
		if err != nil {
			return fmt.Errorf("restoring %s (safety backup: %s): %w", file, safety, err)
		}
	}
	return nil
}

// RestoreLatest restores the newest backup and returns its name.
func (m *Manager) RestoreLatest() (string, error) {
	list, err := m.List()
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", ErrNoBackups
	}
	return list[0].Name, m.Restore(list[0].Name)
}

// Delete removes one backup.
func (m *Manager) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	dir := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("backup not found: %s", name)
	}
	return os.RemoveAll(dir)
}

// Prune keeps the newest keep backups and deletes the rest.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative, got %d", keep)
	}
	list, err := m.List()
	if err != nil || len(list) <= keep {
		return 0, err
	}
	deleted := 0
	for _, b := range list[keep:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func readManifest(dir string) (Manifest, error) {
	var manifest Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return manifest, err
	}
	err = json.Unmarshal(data, &manifest)
	return manifest, err
}

// validateFile checks that a JSON file parses and that a database file
// carries the SQLite header. Missing files are fine.
func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if filepath.Ext(path) == ".db" {
		if !bytes.HasPrefix(data, sqliteHeader) {
			return errors.New("not a SQLite database")
		}
		return nil
	}
	if !gjson.ValidBytes(data) {
		return errors.New("not valid JSON")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return errors.New("backup name is required")
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

// parseName reads the timestamp out of a backup name, with or without the
// millisecond suffix.
func parseName(name string) (time.Time, error) {
	if len(name) == len(nameLayout)+4 && name[len(nameLayout)] == '_' {
		base, err := time.Parse(nameLayout, name[:len(nameLayout)])
		if err != nil {
			return time.Time{}, err
		}
		ms, err := strconv.Atoi(name[len(nameLayout)+1:])
		if err != nil || ms < 0 {
			return time.Time{}, fmt.Errorf("invalid milliseconds in %q", name)
		}
		return base.Add(time.Duration(ms) * time.Millisecond), nil
	}
	return time.Parse(nameLayout, name)
}
