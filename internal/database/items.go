package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"zenflow/internal/tracker"
)

// ItemStore keeps tracker items in the items table. Recurrence days and
// history are stored as JSON text.
type ItemStore struct {
	database *sql.DB
}

var _ tracker.Repository = (*ItemStore)(nil)

// NewItemStore returns an ItemStore over an opened database.
func NewItemStore(database *sql.DB) *ItemStore {
	return &ItemStore{database: database}
}

type historyEntry struct {
	Reps   int    `json:"reps"`
	Status string `json:"status"`
}

// List implements tracker.Repository.
func (store *ItemStore) List(ctx context.Context) ([]tracker.Item, error) {
	rows, err := store.database.QueryContext(ctx,
		`SELECT id, title, kind, start_date, recurrence_days, target_repetitions,
			global_status, history, category, icon, icon_color, created_at
		FROM items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []tracker.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanItem(rows *sql.Rows) (tracker.Item, error) {
	var (
		it                     tracker.Item
		kind, start, status    string
		days, history, created string
		category, icon         string
	)
	if err := rows.Scan(&it.ID, &it.Title, &kind, &start, &days, &it.TargetRepetitions,
		&status, &history, &category, &icon, &it.IconColor, &created); err != nil {
		return tracker.Item{}, fmt.Errorf("scanning item: %w", err)
	}
	it.Kind = tracker.Kind(kind)
	it.StartDate = tracker.Date(start)
	it.GlobalStatus = tracker.Status(status)
	it.Category = tracker.Category(category)
	it.Icon = tracker.Icon(icon)

	if err := json.Unmarshal([]byte(days), &it.RecurrenceDays); err != nil {
		return tracker.Item{}, fmt.Errorf("decoding recurrence days of %s: %w", it.ID, err)
	}
	if len(it.RecurrenceDays) == 0 {
		it.RecurrenceDays = nil
	}

	var entries map[string]historyEntry
	if err := json.Unmarshal([]byte(history), &entries); err != nil {
		return tracker.Item{}, fmt.Errorf("decoding history of %s: %w", it.ID, err)
	}
	it.History = make(map[tracker.Date]tracker.DayState, len(entries))
	for d, e := range entries {
		it.History[tracker.Date(d)] = tracker.DayState{RepetitionsDone: e.Reps, DayStatus: tracker.Status(e.Status)}
	}

	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return tracker.Item{}, fmt.Errorf("parsing created_at of %s: %w", it.ID, err)
	}
	it.CreatedAt = t
	return it, nil
}

func encodeItem(it tracker.Item) (days, history string, err error) {
	d := it.RecurrenceDays
	if d == nil {
		d = []string{}
	}
	daysJSON, err := json.Marshal(d)
	if err != nil {
		return "", "", fmt.Errorf("encoding recurrence days: %w", err)
	}
	entries := make(map[string]historyEntry, len(it.History))
	for date, st := range it.History {
		entries[string(date)] = historyEntry{Reps: st.RepetitionsDone, Status: string(st.DayStatus)}
	}
	historyJSON, err := json.Marshal(entries)
	if err != nil {
		return "", "", fmt.Errorf("encoding history: %w", err)
	}
	return string(daysJSON), string(historyJSON), nil
}

// Insert implements tracker.Repository.
func (store *ItemStore) Insert(ctx context.Context, it tracker.Item) (tracker.Item, error) {
	days, history, err := encodeItem(it)
	if err != nil {
		return tracker.Item{}, err
	}
	_, err = store.database.ExecContext(ctx,
		`INSERT INTO items (id, title, kind, start_date, recurrence_days, target_repetitions,
			global_status, history, category, icon, icon_color, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.Title, string(it.Kind), string(it.StartDate), days, it.TargetRepetitions,
		string(it.GlobalStatus), history, string(it.Category), string(it.Icon), it.IconColor,
		it.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return tracker.Item{}, fmt.Errorf("creating item: %w", err)
	}
	return it, nil
}

// Update implements tracker.Repository.
func (store *ItemStore) Update(ctx context.Context, it tracker.Item) (tracker.Item, error) {
	days, history, err := encodeItem(it)
	if err != nil {
		return tracker.Item{}, err
	}
	result, err := store.database.ExecContext(ctx,
		`UPDATE items SET title = ?, kind = ?, start_date = ?, recurrence_days = ?,
			target_repetitions = ?, global_status = ?, history = ?,
			category = ?, icon = ?, icon_color = ?
		WHERE id = ?`,
		it.Title, string(it.Kind), string(it.StartDate), days,
		it.TargetRepetitions, string(it.GlobalStatus), history,
		string(it.Category), string(it.Icon), it.IconColor,
		it.ID,
	)
	if err != nil {
		return tracker.Item{}, fmt.Errorf("updating item: %w", err)
	}
	if err := requireRow(result, it.ID); err != nil {
		return tracker.Item{}, err
	}
	return it, nil
}

// Delete implements tracker.Repository.
func (store *ItemStore) Delete(ctx context.Context, id string) error {
	result, err := store.database.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return requireRow(result, id)
}

func requireRow(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", tracker.ErrNotFound, id)
	}
	return nil
}
