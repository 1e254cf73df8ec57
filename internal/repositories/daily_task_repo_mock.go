package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fittrack/internal/models"
)

type dailyTaskKey struct {
	userID, date, task string
}

// MockDailyTaskRepository is an in-memory implementation of DailyTaskRepository.
type MockDailyTaskRepository struct {
	entries map[dailyTaskKey]models.DailyTaskEntry
	mu      sync.RWMutex
}

// NewMockDailyTaskRepository creates a new instance of MockDailyTaskRepository.
func NewMockDailyTaskRepository() *MockDailyTaskRepository {
	return &MockDailyTaskRepository{
		entries: make(map[dailyTaskKey]models.DailyTaskEntry),
	}
}

func (r *MockDailyTaskRepository) collect(match func(models.DailyTaskEntry) bool) []models.DailyTaskEntry {
	list := []models.DailyTaskEntry{}
	for _, e := range r.entries {
		if match(e) {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date > list[j].Date
		}
		return list[i].TaskName < list[j].TaskName
	})
	return list
}

// List returns the user's checklist entries in the filter range, newest date first.
func (r *MockDailyTaskRepository) List(_ context.Context, userID string, filter ListFilter) ([]models.DailyTaskEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(e models.DailyTaskEntry) bool {
		return e.UserID == userID && filter.includes(e.Date)
	}), nil
}

// ListForDate returns the user's checklist entries for a single date.
func (r *MockDailyTaskRepository) ListForDate(_ context.Context, userID, date string) ([]models.DailyTaskEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(e models.DailyTaskEntry) bool {
		return e.UserID == userID && e.Date == date
	}), nil
}

// Upsert inserts or overwrites the entry keyed by (user_id, date, task_name).
func (r *MockDailyTaskRepository) Upsert(_ context.Context, entry *models.DailyTaskEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := dailyTaskKey{entry.UserID, entry.Date, entry.TaskName}
	now := time.Now()
	if existing, ok := r.entries[key]; ok {
		existing.Value = entry.Value
		existing.UpdatedAt = now
		r.entries[key] = existing
		*entry = existing
		return nil
	}
	ensureID(entry)
	entry.CreatedAt, entry.UpdatedAt = now, now
	r.entries[key] = *entry
	return nil
}

// Delete removes one of the user's checklist entries.
func (r *MockDailyTaskRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, e := range r.entries {
		if e.ID == id && e.UserID == userID {
			delete(r.entries, key)
			return nil
		}
	}
	return fmt.Errorf("daily task with ID %s not found for deletion: %w", id, ErrNotFound)
}
