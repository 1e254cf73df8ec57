// Package events publishes entry and session changes to the message broker.
package events

import (
	"encoding/json"
	"log"
	"time"
)

// Publisher sends a message body under a routing key. *rabbitmq.Client implements it.
type Publisher interface {
	Publish(routingKey string, body []byte) error
}

// Event actions.
const (
	Created   = "created"
	Updated   = "updated"
	Deleted   = "deleted"
	Upserted  = "upserted"
	SignedUp  = "signed_up"
	SignedIn  = "signed_in"
	SignedOut = "signed_out"
)

// Event is the JSON envelope published for every change.
type Event struct {
	Scope   string    `json:"scope"` // "entry" or "session"
	Kind    string    `json:"kind,omitempty"`
	Action  string    `json:"action"`
	UserID  string    `json:"user_id"`
	EntryID string    `json:"entry_id,omitempty"`
	Date    string    `json:"date,omitempty"`
	At      time.Time `json:"at"`
}

// RoutingKey returns e.g. "entry.steps.created" or "session.signed_in".
func (e Event) RoutingKey() string {
	if e.Kind == "" {
		return e.Scope + "." + e.Action
	}
	return e.Scope + "." + e.Kind + "." + e.Action
}

// Emitter publishes events and never fails the caller: a broken broker only
// produces a log line. A nil Emitter or one without a Publisher is a no-op.
type Emitter struct {
	pub Publisher
	now func() time.Time
}

// NewEmitter wraps pub. pub may be nil when no broker is configured.
func NewEmitter(pub Publisher) *Emitter {
	return &Emitter{pub: pub, now: time.Now}
}

// Emit publishes ev, stamping At when unset.
func (e *Emitter) Emit(ev Event) {
	if e == nil || e.pub == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = e.now()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to marshal event %s: %v", ev.RoutingKey(), err)
		return
	}
	if err := e.pub.Publish(ev.RoutingKey(), body); err != nil {
		log.Printf("Warning: failed to publish event %s for user %s: %v", ev.RoutingKey(), ev.UserID, err)
	}
}

// Entry builds an entry-scoped event.
func Entry(kind, action, userID, entryID, date string) Event {
	return Event{Scope: "entry", Kind: kind, Action: action, UserID: userID, EntryID: entryID, Date: date}
}

// Session builds a session-scoped event such as "session.signed_in".
func Session(action, userID string, at time.Time) Event {
	return Event{Scope: "session", Action: action, UserID: userID, At: at}
}
