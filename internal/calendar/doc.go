// Package calendar pushes synthesized itinerary events to Google Calendar.
//
// Client wraps the Calendar v3 API and creates one event per call with a
// bounded request timeout. Sink walks an event list against the user's
// primary calendar, keeps going past failed inserts and reports every
// outcome with an error class telling whether a retry could succeed.
//
// Example:
//
//	client, err := calendar.NewClientForAccount(ctx, conf, provider, "default", calendar.Options{})
//	if err != nil {
//	    return err
//	}
//	result, err := calendar.NewSink(client, metrics, logger).Push(ctx, events)
package calendar
