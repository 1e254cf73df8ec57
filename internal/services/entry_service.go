package services

import (
	"context"
	"strings"

	"fittrack/internal/events"
	"fittrack/internal/models"
	"fittrack/internal/repositories"
	"fittrack/internal/window"

	"github.com/go-playground/validator/v10"
)

// Draft is the user-submitted form for an entry kind.
type Draft[T models.Entry] interface {
	// RequiredMessage is shown when a required field is missing.
	RequiredMessage() string
	// Entry builds the record to store. id is empty for creates.
	Entry(userID, id string) T
}

// EntryService implements list, create, update and delete for one entry kind.
// Create and Update are separate operations; nothing is inferred from the draft.
type EntryService[T models.Entry, D Draft[T]] struct {
	repo     repositories.EntryRepository[T]
	kind     string
	validate *validator.Validate
	emitter  *events.Emitter
	decorate func(*T)
}

func newEntryService[T models.Entry, D Draft[T]](repo repositories.EntryRepository[T], kind string, emitter *events.Emitter) *EntryService[T, D] {
	return &EntryService[T, D]{
		repo:     repo,
		kind:     kind,
		validate: NewValidator(),
		emitter:  emitter,
		decorate: func(*T) {},
	}
}

// Kind names the entry kind, e.g. "steps".
func (s *EntryService[T, D]) Kind() string {
	return s.kind
}

// List returns the user's entries, newest date first.
func (s *EntryService[T, D]) List(ctx context.Context, userID string, filter repositories.ListFilter) ([]T, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	entries, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		s.decorate(&entries[i])
	}
	return entries, nil
}

// Get returns one of the user's entries.
func (s *EntryService[T, D]) Get(ctx context.Context, userID, id string) (*T, error) {
	entry, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.decorate(entry)
	return entry, nil
}

// Create validates the draft and inserts a new entry. A draft missing a
// required field never reaches the repository.
func (s *EntryService[T, D]) Create(ctx context.Context, userID string, draft D) (*T, error) {
	if err := s.check(draft); err != nil {
		return nil, err
	}
	entry := draft.Entry(userID, "")
	if err := s.repo.Create(ctx, &entry); err != nil {
		return nil, err
	}
	s.emitter.Emit(events.Entry(s.kind, events.Created, userID, entry.EntryID(), entry.EntryDate()))
	s.decorate(&entry)
	return &entry, nil
}

// Update validates the draft and replaces the entry with the given id.
func (s *EntryService[T, D]) Update(ctx context.Context, userID, id string, draft D) (*T, error) {
	if err := s.check(draft); err != nil {
		return nil, err
	}
	entry := draft.Entry(userID, id)
	if err := s.repo.Update(ctx, &entry); err != nil {
		return nil, err
	}
	s.emitter.Emit(events.Entry(s.kind, events.Updated, userID, id, entry.EntryDate()))
	return s.Get(ctx, userID, id)
}

// Delete removes one of the user's entries.
func (s *EntryService[T, D]) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.emitter.Emit(events.Entry(s.kind, events.Deleted, userID, id, ""))
	return nil
}

func (s *EntryService[T, D]) check(draft D) error {
	if err := s.validate.Struct(draft); err != nil {
		return newValidationError(err, draft.RequiredMessage())
	}
	return nil
}

func checkFilter(f repositories.ListFilter) error {
	fields := map[string]string{}
	if f.From != "" && !window.IsDate(f.From) {
		fields["from"] = "must be a YYYY-MM-DD date"
	}
	if f.To != "" && !window.IsDate(f.To) {
		fields["to"] = "must be a YYYY-MM-DD date"
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "Invalid date range", Fields: fields}
	}
	return nil
}

// optionalText maps blank strings to nil so they are stored as NULL.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	if trimmed := strings.TrimSpace(*s); trimmed != "" {
		return &trimmed
	}
	return nil
}
