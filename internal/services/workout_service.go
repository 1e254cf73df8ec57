package services

import (
	"bytes"
	"log"
	"strings"

	"fittrack/internal/events"
	"fittrack/internal/models"
	"fittrack/internal/repositories"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in notes is escaped; WithUnsafe is deliberately not set.
var notesRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// WorkoutDraft is the workouts form. Everything except date and name is optional.
type WorkoutDraft struct {
	Date        string   `json:"date" validate:"required,calendar_date"`
	WorkoutName string   `json:"workout_name" validate:"required,notblank"`
	Reps        *int     `json:"reps"`
	Weight      *float64 `json:"weight"`
	Time        *string  `json:"time"`
	Distance    *float64 `json:"distance"`
	Calories    *float64 `json:"calories"`
	Notes       *string  `json:"notes"`
}

func (WorkoutDraft) RequiredMessage() string { return "Date and workout name required" }

func (d WorkoutDraft) Entry(userID, id string) models.WorkoutEntry {
	return models.WorkoutEntry{
		ID:          id,
		UserID:      userID,
		Date:        d.Date,
		WorkoutName: strings.TrimSpace(d.WorkoutName),
		Reps:        d.Reps,
		Weight:      d.Weight,
		Time:        optionalText(d.Time),
		Distance:    d.Distance,
		Calories:    d.Calories,
		Notes:       optionalText(d.Notes),
	}
}

// WorkoutService manages workout entries.
type WorkoutService = EntryService[models.WorkoutEntry, WorkoutDraft]

// NewWorkoutService creates a new WorkoutService. Returned workouts carry
// their notes rendered from Markdown.
func NewWorkoutService(repo repositories.WorkoutRepository, emitter *events.Emitter) *WorkoutService {
	s := newEntryService[models.WorkoutEntry, WorkoutDraft](repo, "workouts", emitter)
	s.decorate = renderNotes
	return s
}

func renderNotes(w *models.WorkoutEntry) {
	w.NotesHTML = ""
	if w.Notes == nil {
		return
	}
	var buf bytes.Buffer
	if err := notesRenderer.Convert([]byte(*w.Notes), &buf); err != nil {
		log.Printf("Failed to render notes for workout %s: %v", w.ID, err)
		return
	}
	w.NotesHTML = buf.String()
}
