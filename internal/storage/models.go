package storage

import (
	"time"

	"zenflow/internal/tracker"
)

const itemFileVersion = 1

// itemFile is the on-disk layout of items.json.
type itemFile struct {
	Version int          `json:"version"`
	Items   []itemRecord `json:"items"`
}

// itemRecord mirrors tracker.Item with an explicit, stable JSON shape so the
// file format does not drift with the core type.
type itemRecord struct {
	ID                string               `json:"id"`
	Title             string               `json:"title"`
	Kind              string               `json:"kind"`
	StartDate         string               `json:"start_date"`
	RecurrenceDays    []string             `json:"recurrence_days,omitempty"`
	TargetRepetitions int                  `json:"target_repetitions"`
	GlobalStatus      string               `json:"global_status"`
	History           map[string]dayRecord `json:"history,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	Category          string               `json:"category,omitempty"`
	Icon              string               `json:"icon,omitempty"`
	IconColor         string               `json:"icon_color,omitempty"`
}

type dayRecord struct {
	Reps   int    `json:"reps"`
	Status string `json:"status"`
}

func toRecord(it tracker.Item) itemRecord {
	rec := itemRecord{
		ID:                it.ID,
		Title:             it.Title,
		Kind:              string(it.Kind),
		StartDate:         string(it.StartDate),
		RecurrenceDays:    append([]string(nil), it.RecurrenceDays...),
		TargetRepetitions: it.TargetRepetitions,
		GlobalStatus:      string(it.GlobalStatus),
		CreatedAt:         it.CreatedAt,
		Category:          string(it.Category),
		Icon:              string(it.Icon),
		IconColor:         it.IconColor,
	}
	if len(it.History) > 0 {
		rec.History = make(map[string]dayRecord, len(it.History))
		for d, st := range it.History {
			rec.History[string(d)] = dayRecord{Reps: st.RepetitionsDone, Status: string(st.DayStatus)}
		}
	}
	return rec
}

func (rec itemRecord) toItem() tracker.Item {
	it := tracker.Item{
		ID:                rec.ID,
		Title:             rec.Title,
		Kind:              tracker.Kind(rec.Kind),
		StartDate:         tracker.Date(rec.StartDate),
		RecurrenceDays:    append([]string(nil), rec.RecurrenceDays...),
		TargetRepetitions: rec.TargetRepetitions,
		GlobalStatus:      tracker.Status(rec.GlobalStatus),
		History:           make(map[tracker.Date]tracker.DayState, len(rec.History)),
		CreatedAt:         rec.CreatedAt,
		Category:          tracker.Category(rec.Category),
		Icon:              tracker.Icon(rec.Icon),
		IconColor:         rec.IconColor,
	}
	if len(rec.RecurrenceDays) == 0 {
		it.RecurrenceDays = nil
	}
	for d, st := range rec.History {
		it.History[tracker.Date(d)] = tracker.DayState{RepetitionsDone: st.Reps, DayStatus: tracker.Status(st.Status)}
	}
	return it
}
