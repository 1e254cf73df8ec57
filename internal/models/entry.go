package models

// Entry is implemented by every user-scoped record kind kept in the record store.
type Entry interface {
	EntryID() string
	OwnerID() string
	EntryDate() string
}

// DateLayout is the calendar-date format used for every entry's date column.
const DateLayout = "2006-01-02"

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&RevokedToken{},
		&StepEntry{},
		&WeightEntry{},
		&WorkoutEntry{},
		&DailyTaskEntry{},
	}
}
