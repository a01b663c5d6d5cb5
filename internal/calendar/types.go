package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Transparency values accepted by the Calendar API.
const (
	TransparencyOpaque      = "opaque"
	TransparencyTransparent = "transparent"
)

// ReminderMethodPopup is the only reminder method travelcal sets.
const ReminderMethodPopup = "popup"

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time

	// IANA zone names; start and end may differ for flights.
	StartTimeZone string
	EndTimeZone   string

	ColorID      string
	Transparency string // "opaque" or "transparent"

	// Popup reminders as offsets before the start. Empty keeps the
	// calendar's defaults.
	Reminders []time.Duration

	// Kind labels spans; it is not sent to the API.
	Kind string
}

// EventSummary represents a created calendar event
type EventSummary struct {
	ID       string    `json:"id"`
	Summary  string    `json:"summary"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Status   string    `json:"status"`
	ColorID  string    `json:"color_id,omitempty"`
	HTMLLink string    `json:"html_link,omitempty"`
}

func toAPIEvent(input EventInput) *calendar.Event {
	event := &calendar.Event{
		Summary:      input.Summary,
		Description:  input.Description,
		Location:     input.Location,
		ColorId:      input.ColorID,
		Transparency: input.Transparency,
		Start:        eventDateTime(input.Start, input.StartTimeZone),
		End:          eventDateTime(input.End, input.EndTimeZone),
	}

	if len(input.Reminders) > 0 {
		overrides := make([]*calendar.EventReminder, 0, len(input.Reminders))
		for _, r := range input.Reminders {
			overrides = append(overrides, &calendar.EventReminder{
				Method:  ReminderMethodPopup,
				Minutes: int64(r / time.Minute),
			})
		}
		event.Reminders = &calendar.EventReminders{
			UseDefault: false,
			Overrides:  overrides,
			// UseDefault=false is the zero value and would be dropped otherwise
			ForceSendFields: []string{"UseDefault"},
		}
	}

	return event
}

func eventDateTime(t time.Time, zone string) *calendar.EventDateTime {
	if zone == "" {
		zone = "UTC"
	}
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: zone,
	}
}

// toEventSummary converts a Google Calendar event to EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:       event.Id,
		Summary:  event.Summary,
		Status:   event.Status,
		ColorID:  event.ColorId,
		HTMLLink: event.HtmlLink,
	}
	if event.Start != nil {
		summary.Start, _ = time.Parse(time.RFC3339, event.Start.DateTime)
	}
	if event.End != nil {
		summary.End, _ = time.Parse(time.RFC3339, event.End.DateTime)
	}
	return summary
}
