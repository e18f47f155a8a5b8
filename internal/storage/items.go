package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"zenflow/internal/tracker"
)

var _ tracker.Repository = (*Storage)(nil)

func (s *Storage) loadItems() (*itemFile, error) {
	file := itemFile{Version: itemFileVersion, Items: []itemRecord{}}
	err := s.loadJSONWithRecovery(itemsFile, &file)
	var recovered *RecoveredError
	if err != nil && !errors.As(err, &recovered) {
		return nil, err
	}
	if file.Items == nil {
		file.Items = []itemRecord{}
	}
	return &file, err
}

func (s *Storage) saveItems(file *itemFile) error {
	file.Version = itemFileVersion
	return s.writeJSONAtomic(itemsFile, file)
}

// LoadItems reads every item from disk. A recovered file yields its items
// together with a *RecoveredError.
func (s *Storage) LoadItems() ([]tracker.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.loadItems()
	if file == nil {
		return nil, err
	}
	items := make([]tracker.Item, 0, len(file.Items))
	for _, rec := range file.Items {
		items = append(items, rec.toItem())
	}
	return items, err
}

// List implements tracker.Repository. Recovery from a corrupt file is not
// treated as a failure.
func (s *Storage) List(ctx context.Context) ([]tracker.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := s.LoadItems()
	var recovered *RecoveredError
	if errors.As(err, &recovered) {
		err = nil
	}
	return items, err
}

// Insert implements tracker.Repository.
func (s *Storage) Insert(ctx context.Context, it tracker.Item) (tracker.Item, error) {
	if err := ctx.Err(); err != nil {
		return tracker.Item{}, err
	}
	if strings.TrimSpace(it.ID) == "" {
		return tracker.Item{}, fmt.Errorf("item id is required")
	}

	err := s.mutate(func(file *itemFile) error {
		for _, existing := range file.Items {
			if existing.ID == it.ID {
				return fmt.Errorf("item already exists: %s", it.ID)
			}
		}
		file.Items = append(file.Items, toRecord(it))
		return nil
	})
	if err != nil {
		return tracker.Item{}, err
	}

	s.notifySaveWithContext(SaveContext{
		Filename:  itemsFile,
		Operation: "insert",
		ItemType:  "item",
		ItemName:  truncateName(it.Title, 50),
	})
	return it, nil
}

// Update implements tracker.Repository.
func (s *Storage) Update(ctx context.Context, it tracker.Item) (tracker.Item, error) {
	if err := ctx.Err(); err != nil {
		return tracker.Item{}, err
	}

	err := s.mutate(func(file *itemFile) error {
		for i := range file.Items {
			if file.Items[i].ID == it.ID {
				file.Items[i] = toRecord(it)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", tracker.ErrNotFound, it.ID)
	})
	if err != nil {
		return tracker.Item{}, err
	}

	s.notifySaveWithContext(SaveContext{
		Filename:  itemsFile,
		Operation: "update",
		ItemType:  "item",
		ItemName:  truncateName(it.Title, 50),
	})
	return it, nil
}

// Delete implements tracker.Repository.
func (s *Storage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var title string
	err := s.mutate(func(file *itemFile) error {
		for i := range file.Items {
			if file.Items[i].ID == id {
				title = file.Items[i].Title
				file.Items = append(file.Items[:i], file.Items[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", tracker.ErrNotFound, id)
	})
	if err != nil {
		return err
	}

	s.notifySaveWithContext(SaveContext{
		Filename:  itemsFile,
		Operation: "delete",
		ItemType:  "item",
		ItemName:  truncateName(title, 50),
	})
	return nil
}

func (s *Storage) mutate(fn func(file *itemFile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", itemsFile, err)
	}
	defer s.lock.Unlock()

	file, err := s.loadItems()
	if file == nil {
		return err
	}
	if err := fn(file); err != nil {
		return err
	}
	return s.saveItems(file)
}

// ============================================================================
// Data Export
// ============================================================================

// ExportJSON returns items.json contents as indented JSON.
func (s *Storage) ExportJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.loadItems()
	if file == nil {
		return nil, err
	}
	return json.MarshalIndent(file, "", "  ")
}

// EncodeItems renders items in the items.json file format. It lets other
// backends export in the same shape as the JSON store.
func EncodeItems(items []tracker.Item) ([]byte, error) {
	file := itemFile{Version: itemFileVersion, Items: make([]itemRecord, 0, len(items))}
	for _, it := range items {
		file.Items = append(file.Items, toRecord(it))
	}
	return json.MarshalIndent(file, "", "  ")
}

// ExportHistoryCSV flattens every history entry into one CSV row.
func (s *Storage) ExportHistoryCSV() (string, error) {
	items, err := s.LoadItems()
	if items == nil && err != nil {
		return "", err
	}
	return HistoryCSV(items)
}

// HistoryCSV writes one row per history entry, items newest first and
// dates ascending.
func HistoryCSV(items []tracker.Item) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"item_id", "title", "kind", "date", "repetitions", "target", "status"})
	for _, it := range tracker.Registry(items) {
		dates := make([]string, 0, len(it.History))
		for d := range it.History {
			dates = append(dates, string(d))
		}
		sort.Strings(dates)
		for _, d := range dates {
			st := it.History[tracker.Date(d)]
			_ = w.Write([]string{
				it.ID, it.Title, string(it.Kind), d,
				strconv.Itoa(st.RepetitionsDone), strconv.Itoa(it.TargetRepetitions), string(st.DayStatus),
			})
		}
	}
	w.Flush()
	return b.String(), w.Error()
}
