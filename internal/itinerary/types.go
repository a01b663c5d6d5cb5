package itinerary

import (
	"fmt"
	"time"
)

// Wallclock is a local date and time with no timezone attached.
// Zones are attached downstream once the airport or hotel location is known.
type Wallclock struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

// In returns the instant the wall clock denotes in loc.
func (w Wallclock) In(loc *time.Location) time.Time {
	return time.Date(w.Year, w.Month, w.Day, w.Hour, w.Minute, 0, 0, loc)
}

// IsZero reports whether w was never set.
func (w Wallclock) IsZero() bool {
	return w == Wallclock{}
}

// String formats w as "2006-01-02 15:04".
func (w Wallclock) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", w.Year, int(w.Month), w.Day, w.Hour, w.Minute)
}

// MarshalText renders w in its String form so JSON output stays readable.
func (w Wallclock) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// FlightRecord is a validated flight booking.
type FlightRecord struct {
	FlightNumber    string    `json:"flight_number"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	Departure       Wallclock `json:"departure"`
	Arrival         Wallclock `json:"arrival"`
	ReservationCode string    `json:"reservation_code"`
	TicketNumber    string    `json:"ticket_number,omitempty"`
}

// DepartureTime returns the departure instant in the origin airport's zone.
func (f FlightRecord) DepartureTime() time.Time {
	return f.Departure.In(AirportLocation(f.Origin))
}

// ArrivalTime returns the arrival instant in the destination airport's zone.
func (f FlightRecord) ArrivalTime() time.Time {
	return f.Arrival.In(AirportLocation(f.Destination))
}

// HotelRecord is a validated hotel stay.
type HotelRecord struct {
	Name               string    `json:"name"`
	CheckIn            Wallclock `json:"check_in"`
	CheckOut           Wallclock `json:"check_out"`
	ConfirmationNumber string    `json:"confirmation_number,omitempty"`
	Address            string    `json:"address,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	Details            string    `json:"details,omitempty"`
	TimeZone           string    `json:"time_zone"`
}

// Location returns the hotel's resolved zone, falling back to UTC.
func (h HotelRecord) Location() *time.Location {
	return loadLocation(h.TimeZone)
}

// CheckInTime returns the check-in instant in the hotel's zone.
func (h HotelRecord) CheckInTime() time.Time {
	return h.CheckIn.In(h.Location())
}

// CheckOutTime returns the check-out instant in the hotel's zone.
func (h HotelRecord) CheckOutTime() time.Time {
	return h.CheckOut.In(h.Location())
}

// Itinerary holds the validated records of one document, in document order.
type Itinerary struct {
	Flights []FlightRecord `json:"flights"`
	Hotels  []HotelRecord  `json:"hotels"`
}

// Empty reports whether no flight and no hotel survived validation.
func (it Itinerary) Empty() bool {
	return len(it.Flights) == 0 && len(it.Hotels) == 0
}

// Record kinds used in diagnostics.
const (
	KindFlight = "flight"
	KindHotel  = "hotel"
)

// Field names reported by diagnostics.
const (
	FieldFlightNumber    = "flight_number"
	FieldOrigin          = "origin"
	FieldDestination     = "destination"
	FieldDeparture       = "departure"
	FieldArrival         = "arrival"
	FieldReservationCode = "reservation_code"
	FieldName            = "name"
	FieldCheckIn         = "check_in"
	FieldCheckOut        = "check_out"
	FieldSpan            = "span"
)

// Diagnostic explains why a candidate record was discarded.
type Diagnostic struct {
	Kind   string `json:"kind"`
	Anchor string `json:"anchor"`
	Field  string `json:"field"`
}

func (d Diagnostic) String() string {
	if d.Field == FieldSpan {
		return fmt.Sprintf("%s %s: end is not after start", d.Kind, d.Anchor)
	}
	return fmt.Sprintf("%s %s: missing %s", d.Kind, d.Anchor, d.Field)
}
