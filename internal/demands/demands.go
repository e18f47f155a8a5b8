// Package demands tracks work requests grouped by area. Areas are listed by
// name; the demands of an area are listed newest first and toggle between
// pending and done.
package demands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"zenflow/internal/confirm"
	"zenflow/internal/tracker"

	"github.com/google/uuid"
)

// Status is the state of a single demand.
type Status string

const (
	StatusPending Status = "PENDENTE"
	StatusDone    Status = "CONCLUIDA"
)

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusDone {
		return StatusPending
	}
	return StatusDone
}

// Area groups demands.
type Area struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	DemandCount int       `json:"demand_count"`
}

// Demand is one request inside an area.
type Demand struct {
	ID          string    `json:"id"`
	AreaID      string    `json:"area_id"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists areas and demands. DeleteArea removes the area's demands too.
type Store interface {
	ListAreas(ctx context.Context) ([]Area, error)
	CreateArea(ctx context.Context, area Area) (Area, error)
	DeleteArea(ctx context.Context, id string) error
	ListDemands(ctx context.Context, areaID string) ([]Demand, error)
	CreateDemand(ctx context.Context, demand Demand) (Demand, error)
	SetDemandStatus(ctx context.Context, id string, status Status) error
	DeleteDemand(ctx context.Context, id string) error
}

const (
	maxAreaNameLen    = 80
	maxDescriptionLen = 500
)

// ErrNoAreaSelected is returned by demand operations while no area is open.
var ErrNoAreaSelected = fmt.Errorf("%w: no area selected", tracker.ErrInvalidOperation)

// Manager holds the loaded areas and the demands of the selected area. Like
// tracker.Service it writes to the store first and updates memory only on
// success.
type Manager struct {
	store Store
	now   func() time.Time

	mu       sync.RWMutex
	areas    []Area
	selected string
	demands  []Demand

	deletes confirm.Pending
}

// NewManager returns a Manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// SetNowFunc overrides the clock. Passing nil resets it to time.Now.
func (m *Manager) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	m.now = now
}

// Load fetches all areas and clears the selection.
func (m *Manager) Load(ctx context.Context) error {
	areas, err := m.store.ListAreas(ctx)
	if err != nil {
		return &tracker.PersistenceError{Op: "list areas", Err: err}
	}
	sortAreas(areas)

	m.mu.Lock()
	m.areas = areas
	m.selected = ""
	m.demands = nil
	m.mu.Unlock()
	return nil
}

// Areas returns the areas ordered by name.
func (m *Manager) Areas() []Area {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Area(nil), m.areas...)
}

// Area returns the area with the given id.
func (m *Manager) Area(id string) (Area, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.areas {
		if a.ID == id {
			return a, true
		}
	}
	return Area{}, false
}

// Selected returns the open area, if any.
func (m *Manager) Selected() (Area, bool) {
	m.mu.RLock()
	id := m.selected
	m.mu.RUnlock()
	if id == "" {
		return Area{}, false
	}
	return m.Area(id)
}

// Demands returns the demands of the selected area, newest first.
func (m *Manager) Demands() []Demand {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Demand(nil), m.demands...)
}

// Select opens area id and loads its demands.
func (m *Manager) Select(ctx context.Context, id string) error {
	if _, ok := m.Area(id); !ok {
		return fmt.Errorf("area %s: %w", id, tracker.ErrNotFound)
	}
	list, err := m.store.ListDemands(ctx, id)
	if err != nil {
		return &tracker.PersistenceError{Op: "list demands", Err: err}
	}
	sortDemands(list)

	m.mu.Lock()
	m.selected = id
	m.demands = list
	m.setCountLocked(id, len(list))
	m.mu.Unlock()
	return nil
}

// Deselect closes the open area.
func (m *Manager) Deselect() {
	m.mu.Lock()
	m.selected = ""
	m.demands = nil
	m.mu.Unlock()
}

// CreateArea stores a new area named name.
func (m *Manager) CreateArea(ctx context.Context, name string) (Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Area{}, &tracker.ValidationError{Field: "name", Reason: "area name is required"}
	}
	if len([]rune(name)) > maxAreaNameLen {
		return Area{}, &tracker.ValidationError{Field: "name", Reason: fmt.Sprintf("area name too long (max %d)", maxAreaNameLen)}
	}

	area := Area{ID: uuid.New().String(), Name: name, CreatedAt: m.now().UTC()}
	stored, err := m.store.CreateArea(ctx, area)
	if err != nil {
		return Area{}, &tracker.PersistenceError{Op: "create area", Err: err}
	}

	m.mu.Lock()
	m.areas = append(m.areas, stored)
	sortAreas(m.areas)
	m.mu.Unlock()
	return stored, nil
}

// RequestDeleteArea marks area id as awaiting delete confirmation.
func (m *Manager) RequestDeleteArea(id string) (Area, error) {
	a, ok := m.Area(id)
	if !ok {
		return Area{}, fmt.Errorf("area %s: %w", id, tracker.ErrNotFound)
	}
	m.deletes.Request(id)
	return a, nil
}

// CancelDeleteArea withdraws a pending delete request.
func (m *Manager) CancelDeleteArea(id string) bool {
	return m.deletes.Cancel(id)
}

// ConfirmDeleteArea deletes area id and all of its demands.
func (m *Manager) ConfirmDeleteArea(ctx context.Context, id string) error {
	if !m.deletes.Has(id) {
		return tracker.ErrDeleteNotRequested
	}
	if err := m.store.DeleteArea(ctx, id); err != nil {
		return &tracker.PersistenceError{Op: "delete area", Err: err}
	}
	m.deletes.Cancel(id)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.areas {
		if m.areas[i].ID == id {
			m.areas = append(m.areas[:i], m.areas[i+1:]...)
			break
		}
	}
	if m.selected == id {
		m.selected = ""
		m.demands = nil
	}
	return nil
}

// CreateDemand adds a pending demand to the selected area.
func (m *Manager) CreateDemand(ctx context.Context, description string) (Demand, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Demand{}, &tracker.ValidationError{Field: "description", Reason: "description is required"}
	}
	if len([]rune(description)) > maxDescriptionLen {
		return Demand{}, &tracker.ValidationError{Field: "description", Reason: fmt.Sprintf("description too long (max %d)", maxDescriptionLen)}
	}
	area, ok := m.Selected()
	if !ok {
		return Demand{}, ErrNoAreaSelected
	}

	d := Demand{
		ID:          uuid.New().String(),
		AreaID:      area.ID,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   m.now().UTC(),
	}
	stored, err := m.store.CreateDemand(ctx, d)
	if err != nil {
		return Demand{}, &tracker.PersistenceError{Op: "create demand", Err: err}
	}

	m.mu.Lock()
	if m.selected == area.ID {
		m.demands = append([]Demand{stored}, m.demands...)
		m.setCountLocked(area.ID, len(m.demands))
	}
	m.mu.Unlock()
	return stored, nil
}

// ToggleDemand flips demand id between pending and done.
func (m *Manager) ToggleDemand(ctx context.Context, id string) (Demand, error) {
	m.mu.RLock()
	idx := m.demandIndexLocked(id)
	var current Demand
	if idx >= 0 {
		current = m.demands[idx]
	}
	m.mu.RUnlock()
	if idx < 0 {
		return Demand{}, fmt.Errorf("demand %s: %w", id, tracker.ErrNotFound)
	}

	next := current
	next.Status = current.Status.Toggle()
	if err := m.store.SetDemandStatus(ctx, id, next.Status); err != nil {
		return Demand{}, &tracker.PersistenceError{Op: "update demand", Err: err}
	}

	m.mu.Lock()
	if i := m.demandIndexLocked(id); i >= 0 {
		m.demands[i] = next
	}
	m.mu.Unlock()
	return next, nil
}

// DeleteDemand removes demand id from the selected area.
func (m *Manager) DeleteDemand(ctx context.Context, id string) error {
	if err := m.store.DeleteDemand(ctx, id); err != nil {
		return &tracker.PersistenceError{Op: "delete demand", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.demandIndexLocked(id); i >= 0 {
		m.demands = append(m.demands[:i], m.demands[i+1:]...)
		m.setCountLocked(m.selected, len(m.demands))
	}
	return nil
}

func (m *Manager) demandIndexLocked(id string) int {
	for i := range m.demands {
		if m.demands[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) setCountLocked(areaID string, n int) {
	for i := range m.areas {
		if m.areas[i].ID == areaID {
			m.areas[i].DemandCount = n
			return
		}
	}
}

func sortAreas(areas []Area) {
	sort.SliceStable(areas, func(i, j int) bool {
		return strings.ToLower(areas[i].Name) < strings.ToLower(areas[j].Name)
	})
}

func sortDemands(list []Demand) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
