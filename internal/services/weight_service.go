package services

import (
	"fittrack/internal/events"
	"fittrack/internal/models"
	"fittrack/internal/repositories"
)

// WeightDraft is the weights form. Weight is in pounds.
type WeightDraft struct {
	Date       string   `json:"date" validate:"required,calendar_date"`
	Weight     *float64 `json:"weight" validate:"required"`
	MeasuredAt *string  `json:"measured_at"`
}

func (WeightDraft) RequiredMessage() string { return "Date and weight required" }

func (d WeightDraft) Entry(userID, id string) models.WeightEntry {
	e := models.WeightEntry{ID: id, UserID: userID, Date: d.Date, MeasuredAt: optionalText(d.MeasuredAt)}
	if d.Weight != nil {
		e.Weight = *d.Weight
	}
	return e
}

// WeightService manages weight entries.
type WeightService = EntryService[models.WeightEntry, WeightDraft]

// NewWeightService creates a new WeightService.
func NewWeightService(repo repositories.WeightRepository, emitter *events.Emitter) *WeightService {
	return newEntryService[models.WeightEntry, WeightDraft](repo, "weights", emitter)
}
