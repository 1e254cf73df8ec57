package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fittrack/internal/models"
)

// MockEntryRepository is an in-memory implementation of EntryRepository.
type MockEntryRepository[T models.Entry] struct {
	entries map[string]T
	order   map[string]int // insertion sequence, newest wins ties on date
	seq     int
	kind    string
	mu      sync.RWMutex
}

// NewMockEntryRepository creates a new in-memory entry repository.
func NewMockEntryRepository[T models.Entry](kind string) *MockEntryRepository[T] {
	return &MockEntryRepository[T]{
		entries: make(map[string]T),
		order:   make(map[string]int),
		kind:    kind,
	}
}

func NewMockStepRepository() *MockEntryRepository[models.StepEntry] {
	return NewMockEntryRepository[models.StepEntry]("step entry")
}

func NewMockWeightRepository() *MockEntryRepository[models.WeightEntry] {
	return NewMockEntryRepository[models.WeightEntry]("weight entry")
}

func NewMockWorkoutRepository() *MockEntryRepository[models.WorkoutEntry] {
	return NewMockEntryRepository[models.WorkoutEntry]("workout")
}

// List returns the user's entries, newest date first.
func (r *MockEntryRepository[T]) List(_ context.Context, userID string, filter ListFilter) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]T, 0, len(r.entries))
	for _, e := range r.entries {
		if e.OwnerID() == userID && filter.includes(e.EntryDate()) {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].EntryDate() != list[j].EntryDate() {
			return list[i].EntryDate() > list[j].EntryDate()
		}
		return r.order[list[i].EntryID()] > r.order[list[j].EntryID()]
	})
	return list, nil
}

// GetByID returns one of the user's entries.
func (r *MockEntryRepository[T]) GetByID(_ context.Context, userID, id string) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok || e.OwnerID() != userID {
		return nil, fmt.Errorf("%s with ID %s: %w", r.kind, id, ErrNotFound)
	}
	return &e, nil
}

// Create adds a new entry.
func (r *MockEntryRepository[T]) Create(_ context.Context, entry *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ensureID(entry)
	stampCreate(entry, time.Now())
	e := *entry
	if _, exists := r.entries[e.EntryID()]; exists {
		return fmt.Errorf("%s with ID %s: %w", r.kind, e.EntryID(), ErrDuplicate)
	}
	r.seq++
	r.entries[e.EntryID()] = e
	r.order[e.EntryID()] = r.seq
	return nil
}

// Update replaces an existing entry owned by the same user. The stored
// creation time is kept.
func (r *MockEntryRepository[T]) Update(_ context.Context, entry *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := *entry
	existing, ok := r.entries[e.EntryID()]
	if !ok || existing.OwnerID() != e.OwnerID() {
		return fmt.Errorf("%s with ID %s not found for update: %w", r.kind, e.EntryID(), ErrNotFound)
	}
	if stored, ok := any(existing).(interface{ EntryCreatedAt() time.Time }); ok {
		stampUpdate(entry, stored.EntryCreatedAt(), time.Now())
		e = *entry
	}
	r.entries[e.EntryID()] = e
	return nil
}

// Delete removes one of the user's entries.
func (r *MockEntryRepository[T]) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || e.OwnerID() != userID {
		return fmt.Errorf("%s with ID %s not found for deletion: %w", r.kind, id, ErrNotFound)
	}
	delete(r.entries, id)
	delete(r.order, id)
	return nil
}
