package repositories

import (
	"context"
	"errors"
	"fmt"

	"fittrack/internal/models"

	"gorm.io/gorm"
)

// GORMEntryRepository is a GORM implementation of EntryRepository.
type GORMEntryRepository[T models.Entry] struct {
	db   *gorm.DB
	kind string
}

// NewGORMEntryRepository creates a repository for one entry kind. kind is only
// used in error messages.
func NewGORMEntryRepository[T models.Entry](db *gorm.DB, kind string) *GORMEntryRepository[T] {
	return &GORMEntryRepository[T]{db: db, kind: kind}
}

func NewGORMStepRepository(db *gorm.DB) *GORMEntryRepository[models.StepEntry] {
	return NewGORMEntryRepository[models.StepEntry](db, "step entry")
}

func NewGORMWeightRepository(db *gorm.DB) *GORMEntryRepository[models.WeightEntry] {
	return NewGORMEntryRepository[models.WeightEntry](db, "weight entry")
}

func NewGORMWorkoutRepository(db *gorm.DB) *GORMEntryRepository[models.WorkoutEntry] {
	return NewGORMEntryRepository[models.WorkoutEntry](db, "workout")
}

// List returns the user's entries, newest date first.
func (r *GORMEntryRepository[T]) List(ctx context.Context, userID string, filter ListFilter) ([]T, error) {
	entries := []T{}
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.From != "" {
		q = q.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("date <= ?", filter.To)
	}
	if err := q.Order("date desc").Order("created_at desc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", r.kind, err)
	}
	return entries, nil
}

// GetByID retrieves one of the user's entries.
func (r *GORMEntryRepository[T]) GetByID(ctx context.Context, userID, id string) (*T, error) {
	var entry T
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s with ID %s: %w", r.kind, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s by ID %s: %w", r.kind, id, err)
	}
	return &entry, nil
}

// Create inserts a new entry, assigning an ID if it has none.
func (r *GORMEntryRepository[T]) Create(ctx context.Context, entry *T) error {
	ensureID(entry)
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", r.kind, err)
	}
	return nil
}

// Update overwrites every mutable column of an existing entry, including
// optional columns being cleared to NULL. The entry's owner must match.
func (r *GORMEntryRepository[T]) Update(ctx context.Context, entry *T) error {
	e := *entry
	if e.EntryID() == "" {
		return fmt.Errorf("%s without ID cannot be updated: %w", r.kind, ErrNotFound)
	}
	res := r.db.WithContext(ctx).
		Model(entry).
		Where("id = ? AND user_id = ?", e.EntryID(), e.OwnerID()).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(entry)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", r.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s with ID %s not found for update: %w", r.kind, e.EntryID(), ErrNotFound)
	}
	return nil
}

// Delete removes one of the user's entries.
func (r *GORMEntryRepository[T]) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", r.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s with ID %s not found for deletion: %w", r.kind, id, ErrNotFound)
	}
	return nil
}
