package models

import "time"

// StepEntry is a daily step count.
type StepEntry struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"index;type:varchar(36);not null"`
	Date      string    `json:"date" gorm:"index;type:varchar(10);not null"`
	Steps     int       `json:"steps"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StepEntry) TableName() string { return "steps" }

func (s StepEntry) EntryID() string   { return s.ID }
func (s StepEntry) OwnerID() string   { return s.UserID }
func (s StepEntry) EntryDate() string { return s.Date }

func (s *StepEntry) SetID(id string) { s.ID = id }

func (s StepEntry) EntryCreatedAt() time.Time { return s.CreatedAt }

// SetTimestamps is used by stores that do not stamp rows themselves.
func (s *StepEntry) SetTimestamps(created, updated time.Time) {
	s.CreatedAt, s.UpdatedAt = created, updated
}
