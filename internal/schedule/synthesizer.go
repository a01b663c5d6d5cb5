package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/teemow/travelcal/internal/itinerary"
)

const (
	// ConnectionWindow is the longest layover still treated as a connection.
	ConnectionWindow = 12 * time.Hour
	// FlightReminder is how long before departure flight events alert.
	FlightReminder = 48 * time.Hour
)

// Synthesizer derives calendar events from an itinerary.
// The zero value uses the built-in commute defaults and default colors.
type Synthesizer struct {
	Commutes    CommuteTable
	FlightColor ColorID
	HotelColor  ColorID
}

func (s Synthesizer) flightColor() ColorID {
	if s.FlightColor.Valid() {
		return s.FlightColor
	}
	return DefaultFlightColor
}

func (s Synthesizer) hotelColor() ColorID {
	if s.HotelColor.Valid() {
		return s.HotelColor
	}
	return DefaultHotelColor
}

// Schedule returns the flight events in chronological order followed by the
// hotel events in document order.
func (s Synthesizer) Schedule(it itinerary.Itinerary) []Event {
	events := s.Flights(it.Flights)
	return append(events, s.Hotels(it.Hotels)...)
}

// Flights sorts flights by departure and emits, per leg, an optional commute
// before, the flight itself and an optional commute after. The input slice is
// not modified.
func (s Synthesizer) Flights(flights []itinerary.FlightRecord) []Event {
	legs := slices.Clone(flights)
	slices.SortStableFunc(legs, func(a, b itinerary.FlightRecord) int {
		return a.DepartureTime().Compare(b.DepartureTime())
	})

	events := make([]Event, 0, len(legs)*3)
	for i, f := range legs {
		connectedBefore := i > 0 && isConnection(legs[i-1], f)
		connectedAfter := i+1 < len(legs) && isConnection(f, legs[i+1])

		if !connectedBefore {
			events = append(events, s.commuteBefore(f))
		}
		events = append(events, s.flight(f))
		if !connectedAfter {
			events = append(events, s.commuteAfter(f))
		}
	}
	return events
}

// isConnection reports whether next continues from prev at the same airport
// within ConnectionWindow. Overlapping legs are not connections.
func isConnection(prev, next itinerary.FlightRecord) bool {
	if !strings.EqualFold(prev.Destination, next.Origin) {
		return false
	}
	gap := next.DepartureTime().Sub(prev.ArrivalTime())
	return gap >= 0 && gap < ConnectionWindow
}

func (s Synthesizer) flight(f itinerary.FlightRecord) Event {
	desc := "Reservation Code: " + f.ReservationCode
	if f.TicketNumber != "" {
		desc += "\nTicket Number: " + f.TicketNumber
	}
	route := fmt.Sprintf("%s → %s", f.Origin, f.Destination)

	return NewEvent(EventSpec{
		Kind:         KindFlight,
		Title:        fmt.Sprintf("Flight %s: %s", f.FlightNumber, route),
		Description:  desc,
		Location:     route,
		Start:        f.DepartureTime(),
		End:          f.ArrivalTime(),
		Color:        s.flightColor(),
		Reminder:     FlightReminder,
		ReminderNote: fmt.Sprintf("Flight %s in %d hours", f.FlightNumber, int(FlightReminder/time.Hour)),
	})
}

func (s Synthesizer) commuteBefore(f itinerary.FlightRecord) Event {
	departure := f.DepartureTime()
	return NewEvent(EventSpec{
		Kind:        KindCommuteBefore,
		Title:       fmt.Sprintf("Commute to %s Airport", f.Origin),
		Description: "Travel to airport for flight " + f.FlightNumber,
		Start:       departure.Add(-s.Commutes.Duration(f.Origin, Before)),
		End:         departure,
		Color:       s.flightColor(),
	})
}

func (s Synthesizer) commuteAfter(f itinerary.FlightRecord) Event {
	arrival := f.ArrivalTime()
	return NewEvent(EventSpec{
		Kind:        KindCommuteAfter,
		Title:       fmt.Sprintf("Commute from %s Airport", f.Destination),
		Description: "Travel from airport after flight " + f.FlightNumber,
		Start:       arrival,
		End:         arrival.Add(s.Commutes.Duration(f.Destination, After)),
		Color:       s.flightColor(),
	})
}

// Hotels emits one free event per stay, in input order.
func (s Synthesizer) Hotels(hotels []itinerary.HotelRecord) []Event {
	events := make([]Event, 0, len(hotels))
	for _, h := range hotels {
		var lines []string
		if h.ConfirmationNumber != "" {
			lines = append(lines, "Confirmation: "+h.ConfirmationNumber)
		}
		if h.Address != "" {
			lines = append(lines, "Address: "+h.Address)
		}
		if h.Phone != "" {
			lines = append(lines, "Phone: "+h.Phone)
		}
		if h.Details != "" {
			lines = append(lines, "Details: "+h.Details)
		}

		events = append(events, NewEvent(EventSpec{
			Kind:        KindHotel,
			Title:       h.Name,
			Description: strings.Join(lines, "\n"),
			Location:    h.Address,
			Start:       h.CheckInTime(),
			End:         h.CheckOutTime(),
			Color:       s.hotelColor(),
			Transparent: true,
		}))
	}
	return events
}

// Counts tallies events by kind.
func Counts(events []Event) map[Kind]int {
	counts := make(map[Kind]int, 4)
	for _, e := range events {
		counts[e.Kind()]++
	}
	return counts
}
