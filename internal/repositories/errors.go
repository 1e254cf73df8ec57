package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to another user.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
)

type identifiable interface {
	EntryID() string
	SetID(id string)
}

// ensureID assigns a fresh UUID to records created without one.
func ensureID(record interface{}) {
	if r, ok := record.(identifiable); ok && r.EntryID() == "" {
		r.SetID(uuid.New().String())
	}
}

type timestamped interface {
	EntryCreatedAt() time.Time
	SetTimestamps(created, updated time.Time)
}

// stampCreate sets both timestamps the way GORM does on insert.
func stampCreate(record interface{}, now time.Time) {
	if r, ok := record.(timestamped); ok {
		created := r.EntryCreatedAt()
		if created.IsZero() {
			created = now
		}
		r.SetTimestamps(created, now)
	}
}

// stampUpdate keeps the stored creation time, as GORM's Update omits created_at.
func stampUpdate(record interface{}, created, now time.Time) {
	if r, ok := record.(timestamped); ok {
		r.SetTimestamps(created, now)
	}
}
