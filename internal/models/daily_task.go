package models

import "time"

// Daily task keys. Add new checklist items here.
const (
	TaskProteinShake = "protein shake"
	TaskDailyVitamin = "daily vitamin"
)

// DailyTasks lists the enumerated checklist keys in display order.
var DailyTasks = []string{TaskProteinShake, TaskDailyVitamin}

// IsDailyTask reports whether name is one of the enumerated checklist keys.
func IsDailyTask(name string) bool {
	for _, t := range DailyTasks {
		if t == name {
			return true
		}
	}
	return false
}

// DailyTaskEntry records whether a checklist task was done on a date.
// At most one row exists per (user_id, date, task_name).
type DailyTaskEntry struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_daily_tasks_user_date_task"`
	Date      string    `json:"date" gorm:"type:varchar(10);not null;uniqueIndex:idx_daily_tasks_user_date_task"`
	TaskName  string    `json:"task_name" gorm:"type:varchar(64);not null;uniqueIndex:idx_daily_tasks_user_date_task"`
	Value     bool      `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DailyTaskEntry) TableName() string { return "daily_tasks" }

func (d DailyTaskEntry) EntryID() string   { return d.ID }
func (d DailyTaskEntry) OwnerID() string   { return d.UserID }
func (d DailyTaskEntry) EntryDate() string { return d.Date }

func (d *DailyTaskEntry) SetID(id string) { d.ID = id }

func (d DailyTaskEntry) EntryCreatedAt() time.Time { return d.CreatedAt }

// SetTimestamps is used by stores that do not stamp rows themselves.
func (d *DailyTaskEntry) SetTimestamps(created, updated time.Time) {
	d.CreatedAt, d.UpdatedAt = created, updated
}
