package schedule

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Kind identifies what an event represents.
type Kind string

const (
	KindFlight        Kind = "flight"
	KindHotel         Kind = "hotel"
	KindCommuteBefore Kind = "commute_before"
	KindCommuteAfter  Kind = "commute_after"
)

// IsCommute reports whether k is a synthesized commute.
func (k Kind) IsCommute() bool {
	return k == KindCommuteBefore || k == KindCommuteAfter
}

// EventSpec describes an event before it is frozen by NewEvent.
// Start and End must carry the zone the event is shown in.
type EventSpec struct {
	Kind        Kind
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Color       ColorID
	Transparent bool
	// Reminder is how long before Start to alert. Zero means no reminder.
	Reminder time.Duration
	// ReminderNote is the text shown with the alert. Sinks fall back to the
	// title when it is empty.
	ReminderNote string
}

// Event is a finished calendar entry. It has no setters; sinks read it through
// accessors.
type Event struct {
	spec EventSpec
	uid  string
}

// NewEvent freezes spec into an Event.
func NewEvent(spec EventSpec) Event {
	return Event{spec: spec, uid: eventUID(spec)}
}

// eventUID is stable across runs for identical input.
func eventUID(spec EventSpec) string {
	sum := sha256.Sum256([]byte(string(spec.Kind) + "\x00" + spec.Title + "\x00" + spec.Start.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(sum[:16]) + "@travelcal"
}

func (e Event) Kind() Kind              { return e.spec.Kind }
func (e Event) Title() string           { return e.spec.Title }
func (e Event) Description() string     { return e.spec.Description }
func (e Event) Location() string        { return e.spec.Location }
func (e Event) Start() time.Time        { return e.spec.Start }
func (e Event) End() time.Time          { return e.spec.End }
func (e Event) Color() ColorID          { return e.spec.Color }
func (e Event) Transparent() bool       { return e.spec.Transparent }
func (e Event) UID() string             { return e.uid }
func (e Event) Duration() time.Duration { return e.spec.End.Sub(e.spec.Start) }

// Busy reports whether the event blocks free/busy availability.
func (e Event) Busy() bool { return !e.spec.Transparent }

// StartTimeZone is the IANA zone name the start is expressed in.
func (e Event) StartTimeZone() string { return e.spec.Start.Location().String() }

// EndTimeZone is the IANA zone name the end is expressed in.
func (e Event) EndTimeZone() string { return e.spec.End.Location().String() }

// Reminder returns the alert offset before Start, if the event has one.
func (e Event) Reminder() (time.Duration, bool) {
	return e.spec.Reminder, e.spec.Reminder > 0
}

// ReminderNote returns the alert text, or the title when none was set.
func (e Event) ReminderNote() string {
	if e.spec.ReminderNote != "" {
		return e.spec.ReminderNote
	}
	return e.spec.Title
}

type eventJSON struct {
	UID           string    `json:"uid"`
	Kind          Kind      `json:"kind"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Location      string    `json:"location,omitempty"`
	Start         time.Time `json:"start"`
	StartTimeZone string    `json:"start_time_zone"`
	End           time.Time `json:"end"`
	EndTimeZone   string    `json:"end_time_zone"`
	Color         ColorID   `json:"color"`
	Busy          bool      `json:"busy"`
	ReminderMin   int       `json:"reminder_minutes,omitempty"`
}

// MarshalJSON exposes the event's read-only view.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		UID:           e.uid,
		Kind:          e.spec.Kind,
		Title:         e.spec.Title,
		Description:   e.spec.Description,
		Location:      e.spec.Location,
		Start:         e.spec.Start,
		StartTimeZone: e.StartTimeZone(),
		End:           e.spec.End,
		EndTimeZone:   e.EndTimeZone(),
		Color:         e.spec.Color,
		Busy:          e.Busy(),
		ReminderMin:   int(e.spec.Reminder / time.Minute),
	})
}
