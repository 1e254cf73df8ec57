package models

import "time"

// WorkoutEntry is a single logged exercise. Every measurement is optional.
type WorkoutEntry struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `json:"user_id" gorm:"index;type:varchar(36);not null"`
	Date        string    `json:"date" gorm:"index;type:varchar(10);not null"`
	WorkoutName string    `json:"workout_name" gorm:"type:varchar(255);not null"`
	Reps        *int      `json:"reps"`
	Weight      *float64  `json:"weight"`
	Time        *string   `json:"time"` // duration as typed by the user, e.g. "32:10"
	Distance    *float64  `json:"distance"`
	Calories    *float64  `json:"calories"`
	Notes       *string   `json:"notes"`
	NotesHTML   string    `json:"notes_html,omitempty" gorm:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (WorkoutEntry) TableName() string { return "workouts" }

func (w WorkoutEntry) EntryID() string   { return w.ID }
func (w WorkoutEntry) OwnerID() string   { return w.UserID }
func (w WorkoutEntry) EntryDate() string { return w.Date }

func (w *WorkoutEntry) SetID(id string) { w.ID = id }

func (w WorkoutEntry) EntryCreatedAt() time.Time { return w.CreatedAt }

// SetTimestamps is used by stores that do not stamp rows themselves.
func (w *WorkoutEntry) SetTimestamps(created, updated time.Time) {
	w.CreatedAt, w.UpdatedAt = created, updated
}
