package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"zenflow/internal/demands"
	"zenflow/internal/tracker"
)

func newTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func testItem(id string, created time.Time) tracker.Item {
	return tracker.Item{
		ID:                id,
		Title:             "Read " + id,
		Kind:              tracker.KindDaily,
		StartDate:         "2024-03-01",
		RecurrenceDays:    []string{"Seg", "Ter", "Qua", "Qui", "Sex"},
		TargetRepetitions: 2,
		GlobalStatus:      tracker.StatusPending,
		History: map[tracker.Date]tracker.DayState{
			"2024-03-04": {RepetitionsDone: 1, DayStatus: tracker.StatusPending},
		},
		CreatedAt: created,
		Category:  "Estudo",
		Icon:      tracker.IconBook,
		IconColor: "#8b5cf6",
	}
}

func TestOpen_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "zenflow.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	// Reopening must not fail on existing tables and columns.
	db.Close()
	db2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	db2.Close()
}

func TestItemStore_RoundTrip(t *testing.T) {
	store := NewItemStore(newTestDatabase(t))
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	want := testItem("a", created)
	if _, err := store.Insert(ctx, want); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	got := items[0]
	if got.Title != want.Title || got.Kind != want.Kind || got.Icon != want.Icon || got.Category != want.Category {
		t.Errorf("item = %+v", got)
	}
	if len(got.RecurrenceDays) != 5 {
		t.Errorf("RecurrenceDays = %v", got.RecurrenceDays)
	}
	if got.History["2024-03-04"].RepetitionsDone != 1 {
		t.Errorf("History = %v", got.History)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestItemStore_UpdateDelete(t *testing.T) {
	store := NewItemStore(newTestDatabase(t))
	ctx := context.Background()

	it := testItem("a", time.Now())
	if _, err := store.Insert(ctx, it); err != nil {
		t.Fatal(err)
	}

	it = tracker.Apply(it, "2024-03-04")
	if _, err := store.Update(ctx, it); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	items, _ := store.List(ctx)
	if !items[0].CompletedOn("2024-03-04") {
		t.Errorf("history after update = %v", items[0].History)
	}

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "a"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := store.Update(ctx, it); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("Update() of deleted item error = %v, want ErrNotFound", err)
	}
}

func TestItemStore_WithService(t *testing.T) {
	store := NewItemStore(newTestDatabase(t))
	ctx := context.Background()

	svc := tracker.NewService(store)
	svc.SetNowFunc(func() time.Time { return time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC) })
	if err := svc.Load(ctx); err != nil {
		t.Fatal(err)
	}

	one, err := svc.Register(ctx, tracker.Form{Title: "Pay rent", Kind: tracker.KindOneOff, TargetRepetitions: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordProgress(ctx, one.ID, "2024-03-09"); err != nil {
		t.Fatalf("completing floating one-off: %v", err)
	}

	fresh := tracker.NewService(store)
	if err := fresh.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if got := fresh.Agenda("2024-03-09"); len(got) != 1 {
		t.Errorf("agenda on completion date = %d items, want 1", len(got))
	}
	if got := fresh.Agenda("2024-03-10"); len(got) != 0 {
		t.Errorf("agenda after completion date = %d items, want 0", len(got))
	}
}

func TestDemandStore(t *testing.T) {
	store := NewDemandStore(newTestDatabase(t))
	ctx := context.Background()
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	for i, name := range []string{"Vendas", "compras"} {
		if _, err := store.CreateArea(ctx, demands.Area{ID: name, Name: name, CreatedAt: now.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("CreateArea() error = %v", err)
		}
	}
	for i, desc := range []string{"Cotar papel", "Cotar toner"} {
		d := demands.Demand{ID: desc, AreaID: "compras", Description: desc, Status: demands.StatusPending, CreatedAt: now.Add(time.Duration(i) * time.Hour)}
		if _, err := store.CreateDemand(ctx, d); err != nil {
			t.Fatalf("CreateDemand() error = %v", err)
		}
	}

	areas, err := store.ListAreas(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(areas) != 2 || areas[0].Name != "compras" || areas[0].DemandCount != 2 || areas[1].DemandCount != 0 {
		t.Errorf("areas = %+v", areas)
	}

	list, err := store.ListDemands(ctx, "compras")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Description != "Cotar toner" {
		t.Errorf("demands = %+v, want newest first", list)
	}

	if err := store.SetDemandStatus(ctx, "Cotar papel", demands.StatusDone); err != nil {
		t.Fatal(err)
	}
	list, _ = store.ListDemands(ctx, "compras")
	if list[1].Status != demands.StatusDone {
		t.Errorf("status = %s, want CONCLUIDA", list[1].Status)
	}

	if err := store.DeleteArea(ctx, "compras"); err != nil {
		t.Fatal(err)
	}
	list, _ = store.ListDemands(ctx, "compras")
	if len(list) != 0 {
		t.Errorf("demands after area delete = %d, want 0 (cascade)", len(list))
	}
	if err := store.DeleteDemand(ctx, "Cotar toner"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("DeleteDemand() after cascade error = %v, want ErrNotFound", err)
	}
}

func TestDemandStore_RejectsUnknownArea(t *testing.T) {
	store := NewDemandStore(newTestDatabase(t))
	d := demands.Demand{ID: "x", AreaID: "nope", Description: "x", Status: demands.StatusPending, CreatedAt: time.Now()}
	if _, err := store.CreateDemand(context.Background(), d); err == nil {
		t.Error("CreateDemand() for missing area should fail the foreign key")
	}
}
