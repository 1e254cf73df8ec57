package repositories

import (
	"context"

	"fittrack/internal/models"
)

// ListFilter narrows a list query to an inclusive date range. Empty bounds are open.
type ListFilter struct {
	From string
	To   string
}

func (f ListFilter) includes(date string) bool {
	if f.From != "" && date < f.From {
		return false
	}
	if f.To != "" && date > f.To {
		return false
	}
	return true
}

// EntryRepository is the record store surface shared by every entry kind.
// Every call is scoped to a single user.
type EntryRepository[T models.Entry] interface {
	List(ctx context.Context, userID string, filter ListFilter) ([]T, error)
	GetByID(ctx context.Context, userID, id string) (*T, error)
	Create(ctx context.Context, entry *T) error
	Update(ctx context.Context, entry *T) error
	Delete(ctx context.Context, userID, id string) error
}

type (
	StepRepository    = EntryRepository[models.StepEntry]
	WeightRepository  = EntryRepository[models.WeightEntry]
	WorkoutRepository = EntryRepository[models.WorkoutEntry]
)
