package tracker

import (
	"context"
	"sync"
	"time"

	"zenflow/internal/confirm"

	"github.com/google/uuid"
)

// Repository is the record store behind a Service. Implementations must be
// safe for concurrent use; the last write wins.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Insert(ctx context.Context, it Item) (Item, error)
	Update(ctx context.Context, it Item) (Item, error)
	Delete(ctx context.Context, id string) error
}

// Service owns the in-memory item collection. Every mutation is validated,
// written to the Repository, and only then applied in memory, so a failed
// write leaves the collection exactly as it was.
type Service struct {
	repo Repository
	now  func() time.Time

	writeMu sync.Mutex // serialises persist-then-apply sequences
	mu      sync.RWMutex
	items   []Item

	deletes confirm.Pending
}

// NewService returns a Service backed by repo. Call Load to populate it.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetNowFunc overrides the clock. Passing nil resets it to time.Now.
func (s *Service) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Now returns the current time according to the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Today returns the current calendar date according to the service clock.
func (s *Service) Today() Date { return DateOf(s.now()) }

// Load replaces the in-memory collection with the store's contents.
func (s *Service) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	items, err := s.repo.List(ctx)
	if err != nil {
		return &PersistenceError{Op: "list items", Err: err}
	}
	loaded := make([]Item, 0, len(items))
	for _, it := range items {
		loaded = append(loaded, withDefaults(it))
	}

	s.mu.Lock()
	s.items = loaded
	s.mu.Unlock()
	return nil
}

// Items returns a copy of every item in store order.
func (s *Service) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out
}

// Get returns a copy of the item with the given id.
func (s *Service) Get(id string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Item{}, ErrNotFound
	}
	return s.items[i].Clone(), nil
}

// Agenda returns the items to show on date.
func (s *Service) Agenda(date Date) []Item {
	return AgendaFor(s.Items(), date)
}

// Registry returns all items, newest first.
func (s *Service) Registry() []Item {
	return Registry(s.Items())
}

// Register validates f and stores a new pending item. A zero target means
// the default of one repetition.
func (s *Service) Register(ctx context.Context, f Form) (Item, error) {
	if f.TargetRepetitions == 0 {
		f.TargetRepetitions = defaultTarget
	}
	nf, cat, icon, err := f.normalize(s.Today())
	if err != nil {
		return Item{}, err
	}
	it := Item{
		ID:                uuid.New().String(),
		Title:             nf.Title,
		Kind:              nf.Kind,
		StartDate:         nf.StartDate,
		RecurrenceDays:    nf.RecurrenceDays,
		TargetRepetitions: nf.TargetRepetitions,
		GlobalStatus:      StatusPending,
		History:           map[Date]DayState{},
		CreatedAt:         s.now().UTC(),
		Category:          cat,
		Icon:              icon,
		IconColor:         nf.IconColor,
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stored, err := s.repo.Insert(ctx, it)
	if err != nil {
		return Item{}, &PersistenceError{Op: "insert item", Err: err}
	}
	stored = withDefaults(stored)

	s.mu.Lock()
	s.items = append(s.items, stored)
	s.mu.Unlock()
	return stored.Clone(), nil
}

// Edit replaces the editable fields of item id with f. The id, creation time,
// and history are kept; history entries are clamped to the new target.
func (s *Service) Edit(ctx context.Context, id string, f Form) (Item, error) {
	current, err := s.Get(id)
	if err != nil {
		return Item{}, err
	}
	nf, cat, icon, err := f.normalize(current.StartDate)
	if err != nil {
		return Item{}, err
	}

	next := current.Clone()
	next.Title = nf.Title
	next.Kind = nf.Kind
	next.StartDate = nf.StartDate
	next.RecurrenceDays = nf.RecurrenceDays
	next.TargetRepetitions = nf.TargetRepetitions
	next.Category = cat
	next.Icon = icon
	next.IconColor = nf.IconColor
	next.History = reconcileHistory(current.History, nf.TargetRepetitions)
	if next.Kind == KindOneOff {
		next.History = singleCompletion(next.History)
		next.GlobalStatus = oneOffStatus(next.History)
	}
	return s.update(ctx, "update item", next)
}

// RecordProgress applies one completion action to item id on date.
func (s *Service) RecordProgress(ctx context.Context, id string, date Date) (Item, error) {
	if !date.Valid() {
		return Item{}, &ValidationError{Field: "date", Reason: "invalid date " + string(date)}
	}
	current, err := s.Get(id)
	if err != nil {
		return Item{}, err
	}
	if !IsActionable(current, date) {
		return Item{}, ErrNotDue
	}
	return s.update(ctx, "record progress", Apply(current, date))
}

// Replace overwrites an existing item with a full snapshot. It backs undo and
// redo, so the snapshot must already satisfy the item invariants.
func (s *Service) Replace(ctx context.Context, it Item) (Item, error) {
	if err := CheckInvariants(it); err != nil {
		return Item{}, err
	}
	if _, err := s.Get(it.ID); err != nil {
		return Item{}, err
	}
	return s.update(ctx, "replace item", it.Clone())
}

// Restore re-inserts a previously deleted item with its original id.
func (s *Service) Restore(ctx context.Context, it Item) (Item, error) {
	if err := CheckInvariants(it); err != nil {
		return Item{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.Get(it.ID); err == nil {
		return Item{}, ErrInvalidOperation
	}

	stored, err := s.repo.Insert(ctx, it.Clone())
	if err != nil {
		return Item{}, &PersistenceError{Op: "restore item", Err: err}
	}
	stored = withDefaults(stored)

	s.mu.Lock()
	s.items = append(s.items, stored)
	s.mu.Unlock()
	return stored.Clone(), nil
}

// RequestDelete marks item id as awaiting delete confirmation.
func (s *Service) RequestDelete(id string) (Item, error) {
	it, err := s.Get(id)
	if err != nil {
		return Item{}, err
	}
	s.deletes.Request(id)
	return it, nil
}

// CancelDelete withdraws a pending delete request. It reports whether one
// was pending.
func (s *Service) CancelDelete(id string) bool {
	return s.deletes.Cancel(id)
}

// PendingDelete reports whether item id is awaiting delete confirmation.
func (s *Service) PendingDelete(id string) bool {
	return s.deletes.Has(id)
}

// ConfirmDelete removes item id. RequestDelete must have been called first.
func (s *Service) ConfirmDelete(ctx context.Context, id string) (Item, error) {
	if !s.deletes.Has(id) {
		return Item{}, ErrDeleteNotRequested
	}
	it, err := s.Get(id)
	if err != nil {
		s.deletes.Cancel(id)
		return Item{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return Item{}, &PersistenceError{Op: "delete item", Err: err}
	}
	s.deletes.Cancel(id)

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.mu.Unlock()
	return it, nil
}

func (s *Service) update(ctx context.Context, op string, next Item) (Item, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stored, err := s.repo.Update(ctx, next)
	if err != nil {
		return Item{}, &PersistenceError{Op: op, Err: err}
	}
	stored = withDefaults(stored)

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(stored.ID); i >= 0 {
		s.items[i] = stored
	} else {
		s.items = append(s.items, stored)
	}
	return stored.Clone(), nil
}

func (s *Service) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// withDefaults fills presentation fields that older records may lack.
func withDefaults(it Item) Item {
	if it.TargetRepetitions < 1 {
		it.TargetRepetitions = defaultTarget
	}
	if it.GlobalStatus == "" {
		it.GlobalStatus = StatusPending
	}
	if it.Category == "" {
		it.Category = Categories[0]
	}
	if it.Icon == "" {
		it.Icon = IconList
	}
	if it.IconColor == "" {
		it.IconColor = defaultColor
	}
	return it
}
