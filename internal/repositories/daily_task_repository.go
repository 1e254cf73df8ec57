package repositories

import (
	"context"

	"fittrack/internal/models"
)

// DailyTaskRepository stores checklist entries. Writes go through Upsert so
// that (user_id, date, task_name) stays unique.
type DailyTaskRepository interface {
	List(ctx context.Context, userID string, filter ListFilter) ([]models.DailyTaskEntry, error)
	ListForDate(ctx context.Context, userID, date string) ([]models.DailyTaskEntry, error)
	Upsert(ctx context.Context, entry *models.DailyTaskEntry) error
	Delete(ctx context.Context, userID, id string) error
}
