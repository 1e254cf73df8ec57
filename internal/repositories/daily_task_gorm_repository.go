package repositories

import (
	"context"
	"fmt"
	"time"

	"fittrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMDailyTaskRepository is a GORM implementation of DailyTaskRepository.
type GORMDailyTaskRepository struct {
	db *gorm.DB
}

// NewGORMDailyTaskRepository creates a new instance of GORMDailyTaskRepository.
func NewGORMDailyTaskRepository(db *gorm.DB) *GORMDailyTaskRepository {
	return &GORMDailyTaskRepository{db: db}
}

// List returns the user's checklist entries in the filter range, newest date first.
func (r *GORMDailyTaskRepository) List(ctx context.Context, userID string, filter ListFilter) ([]models.DailyTaskEntry, error) {
	entries := []models.DailyTaskEntry{}
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.From != "" {
		q = q.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("date <= ?", filter.To)
	}
	if err := q.Order("date desc").Order("task_name").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list daily tasks: %w", err)
	}
	return entries, nil
}

// ListForDate returns the user's checklist entries for a single date.
func (r *GORMDailyTaskRepository) ListForDate(ctx context.Context, userID, date string) ([]models.DailyTaskEntry, error) {
	entries := []models.DailyTaskEntry{}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("task_name").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list daily tasks for %s: %w", date, err)
	}
	return entries, nil
}

// Upsert inserts the entry or, when a row for the same (user_id, date,
// task_name) exists, overwrites its value.
func (r *GORMDailyTaskRepository) Upsert(ctx context.Context, entry *models.DailyTaskEntry) error {
	ensureID(entry)
	entry.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}, {Name: "task_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert daily task %q for %s: %w", entry.TaskName, entry.Date, err)
	}

	// On conflict the stored row keeps its original ID; reload it so callers see it.
	stored := models.DailyTaskEntry{}
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND task_name = ?", entry.UserID, entry.Date, entry.TaskName).
		First(&stored).Error
	if err != nil {
		return fmt.Errorf("failed to reload daily task %q for %s: %w", entry.TaskName, entry.Date, err)
	}
	*entry = stored
	return nil
}

// Delete removes one of the user's checklist entries.
func (r *GORMDailyTaskRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.DailyTaskEntry{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete daily task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("daily task with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}
