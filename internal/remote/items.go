package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"zenflow/internal/tracker"

	"github.com/tidwall/gjson"
)

// ItemStore keeps tracker items in a remote table.
type ItemStore struct {
	client *Client
	table  string
}

var _ tracker.Repository = (*ItemStore)(nil)

// Items returns the item store of c.
func (c *Client) Items() *ItemStore {
	return &ItemStore{client: c, table: c.cfg.ItemsTable}
}

type historyRow struct {
	Reps   int    `json:"reps"`
	Status string `json:"status"`
}

type itemRow struct {
	ID                string                `json:"id"`
	Title             string                `json:"title"`
	Kind              string                `json:"kind"`
	StartDate         string                `json:"start_date"`
	RecurrenceDays    []string              `json:"recurrence_days"`
	TargetRepetitions int                   `json:"target_repetitions"`
	GlobalStatus      string                `json:"global_status"`
	History           map[string]historyRow `json:"history"`
	Category          string                `json:"category"`
	Icon              string                `json:"icon"`
	IconColor         string                `json:"icon_color"`
	CreatedAt         string                `json:"created_at"`
}

func toRow(it tracker.Item) itemRow {
	row := itemRow{
		ID:                it.ID,
		Title:             it.Title,
		Kind:              string(it.Kind),
		StartDate:         string(it.StartDate),
		RecurrenceDays:    append([]string{}, it.RecurrenceDays...),
		TargetRepetitions: it.TargetRepetitions,
		GlobalStatus:      string(it.GlobalStatus),
		History:           make(map[string]historyRow, len(it.History)),
		Category:          string(it.Category),
		Icon:              string(it.Icon),
		IconColor:         it.IconColor,
		CreatedAt:         it.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	for d, st := range it.History {
		row.History[string(d)] = historyRow{Reps: st.RepetitionsDone, Status: string(st.DayStatus)}
	}
	return row
}

func itemFromJSON(r gjson.Result) tracker.Item {
	it := tracker.Item{
		ID:                r.Get("id").String(),
		Title:             r.Get("title").String(),
		Kind:              tracker.Kind(r.Get("kind").String()),
		StartDate:         tracker.Date(r.Get("start_date").String()),
		TargetRepetitions: int(r.Get("target_repetitions").Int()),
		GlobalStatus:      tracker.Status(r.Get("global_status").String()),
		History:           map[tracker.Date]tracker.DayState{},
		CreatedAt:         parseTime(r.Get("created_at").String()),
		Category:          tracker.Category(r.Get("category").String()),
		Icon:              tracker.Icon(r.Get("icon").String()),
		IconColor:         r.Get("icon_color").String(),
	}
	for _, d := range r.Get("recurrence_days").Array() {
		it.RecurrenceDays = append(it.RecurrenceDays, d.String())
	}
	r.Get("history").ForEach(func(key, value gjson.Result) bool {
		it.History[tracker.Date(key.String())] = tracker.DayState{
			RepetitionsDone: int(value.Get("reps").Int()),
			DayStatus:       tracker.Status(value.Get("status").String()),
		}
		return true
	})
	return it
}

// List implements tracker.Repository.
func (s *ItemStore) List(ctx context.Context) ([]tracker.Item, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	body, err := s.client.request(ctx, http.MethodGet, s.table, q, nil)
	if err != nil {
		return nil, err
	}
	rows := gjson.ParseBytes(body).Array()
	items := make([]tracker.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromJSON(row))
	}
	return items, nil
}

// Insert implements tracker.Repository.
func (s *ItemStore) Insert(ctx context.Context, it tracker.Item) (tracker.Item, error) {
	body, err := s.client.request(ctx, http.MethodPost, s.table, nil, []itemRow{toRow(it)})
	if err != nil {
		return tracker.Item{}, err
	}
	return firstItem(body, it)
}

// Update implements tracker.Repository.
func (s *ItemStore) Update(ctx context.Context, it tracker.Item) (tracker.Item, error) {
	q := url.Values{}
	q.Set("id", eq(it.ID))
	body, err := s.client.request(ctx, http.MethodPatch, s.table, q, toRow(it))
	if err != nil {
		return tracker.Item{}, err
	}
	if len(gjson.ParseBytes(body).Array()) == 0 {
		return tracker.Item{}, fmt.Errorf("%w: %s", tracker.ErrNotFound, it.ID)
	}
	return firstItem(body, it)
}

// Delete implements tracker.Repository.
func (s *ItemStore) Delete(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", eq(id))
	body, err := s.client.request(ctx, http.MethodDelete, s.table, q, nil)
	if err != nil {
		return err
	}
	if len(gjson.ParseBytes(body).Array()) == 0 {
		return fmt.Errorf("%w: %s", tracker.ErrNotFound, id)
	}
	return nil
}

// firstItem decodes the first returned row, falling back to sent when the
// backend returned no representation.
func firstItem(body []byte, sent tracker.Item) (tracker.Item, error) {
	rows := gjson.ParseBytes(body).Array()
	if len(rows) == 0 {
		return sent, nil
	}
	return itemFromJSON(rows[0]), nil
}
