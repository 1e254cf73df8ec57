package models

import "time"

// WeightEntry is a body-weight measurement in pounds.
type WeightEntry struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `json:"user_id" gorm:"index;type:varchar(36);not null"`
	Date       string    `json:"date" gorm:"index;type:varchar(10);not null"`
	Weight     float64   `json:"weight" gorm:"column:weight_lbs"`
	MeasuredAt *string   `json:"measured_at"` // free-text location label, e.g. "gym"
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (WeightEntry) TableName() string { return "weights" }

func (w WeightEntry) EntryID() string   { return w.ID }
func (w WeightEntry) OwnerID() string   { return w.UserID }
func (w WeightEntry) EntryDate() string { return w.Date }

func (w *WeightEntry) SetID(id string) { w.ID = id }

func (w WeightEntry) EntryCreatedAt() time.Time { return w.CreatedAt }

// SetTimestamps is used by stores that do not stamp rows themselves.
func (w *WeightEntry) SetTimestamps(created, updated time.Time) {
	w.CreatedAt, w.UpdatedAt = created, updated
}
