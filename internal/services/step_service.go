package services

import (
	"fittrack/internal/events"
	"fittrack/internal/models"
	"fittrack/internal/repositories"
)

// StepDraft is the steps form.
type StepDraft struct {
	Date  string `json:"date" validate:"required,calendar_date"`
	Steps *int   `json:"steps" validate:"required,gte=0"`
}

func (StepDraft) RequiredMessage() string { return "Date and steps required" }

func (d StepDraft) Entry(userID, id string) models.StepEntry {
	e := models.StepEntry{ID: id, UserID: userID, Date: d.Date}
	if d.Steps != nil {
		e.Steps = *d.Steps
	}
	return e
}

// StepService manages step entries.
type StepService = EntryService[models.StepEntry, StepDraft]

// NewStepService creates a new StepService.
func NewStepService(repo repositories.StepRepository, emitter *events.Emitter) *StepService {
	return newEntryService[models.StepEntry, StepDraft](repo, "steps", emitter)
}
