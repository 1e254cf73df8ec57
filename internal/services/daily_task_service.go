package services

import (
	"context"
	"time"

	"fittrack/internal/events"
	"fittrack/internal/models"
	"fittrack/internal/repositories"
	"fittrack/internal/window"

	"github.com/go-playground/validator/v10"
)

// DailyTaskDraft toggles one checklist task on one date.
type DailyTaskDraft struct {
	Date     string `json:"date" validate:"required,calendar_date"`
	TaskName string `json:"task_name" validate:"required,task_name"`
	Value    *bool  `json:"value" validate:"required"`
}

// DailySummary is the trailing window rendered by the daily-tasks table.
type DailySummary struct {
	Today string       `json:"today"`
	Tasks []string     `json:"tasks"`
	Dates []string     `json:"dates"`
	Rows  []window.Row `json:"rows"`
}

// DailyTaskService manages checklist entries and the 7-day summary.
type DailyTaskService struct {
	repo     repositories.DailyTaskRepository
	validate *validator.Validate
	emitter  *events.Emitter
	loc      *time.Location
	now      func() time.Time
}

// NewDailyTaskService creates a new DailyTaskService. "Today" is evaluated in loc.
func NewDailyTaskService(repo repositories.DailyTaskRepository, emitter *events.Emitter, loc *time.Location) *DailyTaskService {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyTaskService{
		repo:     repo,
		validate: NewValidator(),
		emitter:  emitter,
		loc:      loc,
		now:      time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (s *DailyTaskService) SetClock(now func() time.Time) {
	s.now = now
}

// Tasks returns the enumerated checklist keys.
func (s *DailyTaskService) Tasks() []string {
	return append([]string(nil), models.DailyTasks...)
}

func (s *DailyTaskService) today() time.Time {
	return s.now().In(s.loc)
}

// Today returns the current calendar date.
func (s *DailyTaskService) Today() string {
	return window.Day(s.today())
}

// ForDate returns task -> value for every task recorded on date. An empty
// date means today.
func (s *DailyTaskService) ForDate(ctx context.Context, userID, date string) (map[string]bool, error) {
	if date == "" {
		date = s.Today()
	}
	if !window.IsDate(date) {
		return nil, &ValidationError{Message: "Invalid date", Fields: map[string]string{"date": "must be a YYYY-MM-DD date"}}
	}
	entries, err := s.repo.ListForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	states := make(map[string]bool, len(entries))
	for _, e := range entries {
		states[e.TaskName] = e.Value
	}
	return states, nil
}

// Set stores the value of one task on one date, replacing any earlier value.
func (s *DailyTaskService) Set(ctx context.Context, userID string, draft DailyTaskDraft) (*models.DailyTaskEntry, error) {
	if err := s.validate.Struct(draft); err != nil {
		return nil, newValidationError(err, "Date, task and value required")
	}
	entry := &models.DailyTaskEntry{
		UserID:   userID,
		Date:     draft.Date,
		TaskName: draft.TaskName,
		Value:    *draft.Value,
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	s.emitter.Emit(events.Entry("daily-tasks", events.Upserted, userID, entry.ID, entry.Date))
	return entry, nil
}

// Summary loads the last window.Size days and buckets them per date and task.
func (s *DailyTaskService) Summary(ctx context.Context, userID string) (*DailySummary, error) {
	today := s.today()
	entries, err := s.repo.List(ctx, userID, repositories.ListFilter{From: window.Start(today, window.Size)})
	if err != nil {
		return nil, err
	}
	tasks := s.Tasks()
	sum := window.Build(today, window.Size, tasks, entries)
	return &DailySummary{
		Today: window.Day(today),
		Tasks: tasks,
		Dates: sum.Dates,
		Rows:  sum.Rows(tasks),
	}, nil
}

// Delete removes one of the user's checklist entries.
func (s *DailyTaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.emitter.Emit(events.Entry("daily-tasks", events.Deleted, userID, id, ""))
	return nil
}
