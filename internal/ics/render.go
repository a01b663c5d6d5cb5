package ics

import (
	"bytes"
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/teemow/travelcal/internal/schedule"
)

// Calendar level properties.
const (
	ProductID = "-//Travel to ICS Converter//EN"
	Version   = "2.0"
	Calscale  = "GREGORIAN"
)

// Color properties. COLOR carries the palette ID; the Google extensions carry
// the RGB value and the ID.
const (
	PropertyColor        = ical.ComponentProperty("COLOR")
	PropertyContentColor = ical.ComponentProperty("X-GOOGLE-CALENDAR-CONTENT-COLOR")
	PropertyEventColor   = ical.ComponentProperty("X-GOOGLE-CALENDAR-EVENT-COLOR")
)

const localTimeLayout = "20060102T150405"

// Renderer builds iCalendar documents. The zero value stamps events with
// the current time.
type Renderer struct {
	// Now supplies DTSTAMP. Nil means time.Now.
	Now func() time.Time
}

func (r Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Calendar builds the calendar object holding one VEVENT per event, in order.
func (r Renderer) Calendar(events []schedule.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetVersion(Version)
	cal.SetCalscale(Calscale)
	cal.SetMethod(ical.MethodPublish)

	stamp := r.now().UTC()
	for _, e := range events {
		addEvent(cal, e, stamp)
	}
	return cal
}

// Render returns the serialized calendar.
func (r Renderer) Render(events []schedule.Event) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf, events); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes the serialized calendar to w.
func (r Renderer) Encode(w io.Writer, events []schedule.Event) error {
	if err := r.Calendar(events).SerializeTo(w); err != nil {
		return fmt.Errorf("failed to serialize calendar: %w", err)
	}
	return nil
}

// Render serializes events with the current time as DTSTAMP.
func Render(events []schedule.Event) ([]byte, error) {
	return Renderer{}.Render(events)
}

// Encode writes events to w with the current time as DTSTAMP.
func Encode(w io.Writer, events []schedule.Event) error {
	return Renderer{}.Encode(w, events)
}

func addEvent(cal *ical.Calendar, e schedule.Event, stamp time.Time) {
	ev := cal.AddEvent(e.UID())
	ev.SetDtStampTime(stamp)
	ev.SetSummary(e.Title())
	if d := e.Description(); d != "" {
		ev.SetDescription(d)
	}
	if l := e.Location(); l != "" {
		ev.SetLocation(l)
	}

	setTime(ev, ical.ComponentPropertyDtStart, e.Start())
	setTime(ev, ical.ComponentPropertyDtEnd, e.End())

	ev.SetStatus(ical.ObjectStatusConfirmed)
	if e.Transparent() {
		ev.SetTimeTransparency(ical.TransparencyTransparent)
	} else {
		ev.SetTimeTransparency(ical.TransparencyOpaque)
	}

	color := e.Color()
	ev.SetProperty(PropertyColor, string(color))
	ev.SetProperty(PropertyContentColor, color.RGB())
	ev.SetProperty(PropertyEventColor, string(color))

	if offset, ok := e.Reminder(); ok {
		alarm := ev.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger(Trigger(offset))
		alarm.SetProperty(ical.ComponentPropertyDescription, e.ReminderNote())
	}
}

// setTime writes a local wall time with a TZID parameter, or the UTC form for
// UTC instants.
func setTime(ev *ical.VEvent, prop ical.ComponentProperty, t time.Time) {
	if isUTC(t.Location()) {
		ev.SetProperty(prop, t.UTC().Format(localTimeLayout+"Z"))
		return
	}
	ev.SetProperty(prop, t.Format(localTimeLayout), &ical.KeyValues{
		Key:   string(ical.ParameterTzid),
		Value: []string{t.Location().String()},
	})
}

func isUTC(loc *time.Location) bool {
	return loc == time.UTC || loc.String() == "UTC"
}

// Trigger formats a reminder offset as a negative RFC 5545 duration, in hours
// when the offset is a whole number of hours and in minutes otherwise.
//
//	Trigger(48 * time.Hour)   // "-PT48H"
//	Trigger(90 * time.Minute) // "-PT90M"
func Trigger(offset time.Duration) string {
	if offset < 0 {
		offset = -offset
	}
	if offset%time.Hour == 0 {
		return fmt.Sprintf("-PT%dH", int64(offset/time.Hour))
	}
	return fmt.Sprintf("-PT%dM", int64(offset/time.Minute))
}
