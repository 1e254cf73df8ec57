// Package window builds the trailing calendar window shown in the daily-tasks
// summary and buckets checklist entries into it.
package window

import (
	"time"

	"fittrack/internal/models"
)

// Size is the number of days in the daily-tasks summary.
const Size = 7

// Status is the tri-state value of one (date, task) cell.
type Status int

const (
	Unset Status = iota
	True
	False
)

func (s Status) String() string {
	switch s {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unset"
	}
}

// MarshalText renders the status as "unset", "true" or "false".
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func statusOf(v bool) Status {
	if v {
		return True
	}
	return False
}

// Summary is the result of Build. Cells only holds (date, task) pairs that
// had a matching entry; every other pair in Dates is Unset.
type Summary struct {
	Dates []string                   `json:"dates"`
	Cells map[string]map[string]bool `json:"cells"`
}

// Row is one rendered line of the summary table.
type Row struct {
	Date  string            `json:"date"`
	Tasks map[string]Status `json:"tasks"`
}

// IsDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func IsDate(s string) bool {
	if len(s) != len(models.DateLayout) {
		return false
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return false
	}
	return t.Format(models.DateLayout) == s
}

// Day formats t as a calendar date in t's own location.
func Day(t time.Time) string {
	return t.Format(models.DateLayout)
}

// Dates returns n calendar dates from today back to today-(n-1), newest first.
func Dates(today time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	y, m, d := today.Date()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		// time.Date normalises day underflow across month and year boundaries.
		out[i] = time.Date(y, m, d-i, 0, 0, 0, 0, today.Location()).Format(models.DateLayout)
	}
	return out
}

// Start returns the oldest date of an n-day window ending today.
func Start(today time.Time, n int) string {
	if n <= 0 {
		return Day(today)
	}
	y, m, d := today.Date()
	return time.Date(y, m, d-(n-1), 0, 0, 0, 0, today.Location()).Format(models.DateLayout)
}

// Build computes the n-day window ending today and the status of every task
// key in keys for each date of the window.
//
// Entries dated outside the window, with malformed dates, or naming a task not
// in keys are ignored. If two entries share a (date, task) pair the later one
// wins; callers must not rely on that, the store keeps such pairs unique.
func Build(today time.Time, n int, keys []string, entries []models.DailyTaskEntry) Summary {
	dates := Dates(today, n)
	inWindow := make(map[string]bool, len(dates))
	cells := make(map[string]map[string]bool, len(dates))
	for _, d := range dates {
		inWindow[d] = true
		cells[d] = map[string]bool{}
	}
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}

	for _, e := range entries {
		if !IsDate(e.Date) || !inWindow[e.Date] || !known[e.TaskName] {
			continue
		}
		cells[e.Date][e.TaskName] = e.Value
	}
	return Summary{Dates: dates, Cells: cells}
}

// Status returns the tri-state value for a (date, task) pair.
func (s Summary) Status(date, key string) Status {
	v, ok := s.Cells[date][key]
	if !ok {
		return Unset
	}
	return statusOf(v)
}

// Rows expands the summary into one row per date carrying every key's status.
func (s Summary) Rows(keys []string) []Row {
	rows := make([]Row, 0, len(s.Dates))
	for _, d := range s.Dates {
		tasks := make(map[string]Status, len(keys))
		for _, k := range keys {
			tasks[k] = s.Status(d, k)
		}
		rows = append(rows, Row{Date: d, Tasks: tasks})
	}
	return rows
}
