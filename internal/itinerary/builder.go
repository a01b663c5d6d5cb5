package itinerary

import "time"

// Build keeps the candidates whose required fields all resolved, preserving
// document order, and reports a diagnostic for every missing field of every
// discarded candidate.
func Build(flights []FlightRecord, hotels []HotelRecord) (Itinerary, []Diagnostic) {
	var (
		it    Itinerary
		diags []Diagnostic
	)

	for _, f := range flights {
		missing := missingFlightFields(f)
		if len(missing) == 0 && !f.DepartureTime().Before(f.ArrivalTime()) {
			missing = []string{FieldSpan}
		}
		if len(missing) > 0 {
			for _, field := range missing {
				diags = append(diags, Diagnostic{Kind: KindFlight, Anchor: f.FlightNumber, Field: field})
			}
			continue
		}
		it.Flights = append(it.Flights, f)
	}

	for _, h := range hotels {
		missing := missingHotelFields(h)
		if len(missing) == 0 && !h.CheckInTime().Before(h.CheckOutTime()) {
			missing = []string{FieldSpan}
		}
		if len(missing) > 0 {
			for _, field := range missing {
				diags = append(diags, Diagnostic{Kind: KindHotel, Anchor: h.Name, Field: field})
			}
			continue
		}
		it.Hotels = append(it.Hotels, h)
	}

	return it, diags
}

// Parse segments text and builds the validated itinerary in one step.
// now supplies the fallback year when text carries no year anchor.
func Parse(text string, now func() time.Time) (Itinerary, []Diagnostic) {
	seg := NewSegmenter(text, NewResolver(text, now))
	return Build(seg.Flights(), seg.Hotels())
}

func missingFlightFields(f FlightRecord) []string {
	var missing []string
	if f.FlightNumber == "" {
		missing = append(missing, FieldFlightNumber)
	}
	if f.Departure.IsZero() {
		missing = append(missing, FieldDeparture)
	}
	if f.Arrival.IsZero() {
		missing = append(missing, FieldArrival)
	}
	if f.Origin == "" {
		missing = append(missing, FieldOrigin)
	}
	if f.Destination == "" {
		missing = append(missing, FieldDestination)
	}
	if f.ReservationCode == "" {
		missing = append(missing, FieldReservationCode)
	}
	return missing
}

func missingHotelFields(h HotelRecord) []string {
	var missing []string
	if h.Name == "" {
		missing = append(missing, FieldName)
	}
	if h.CheckIn.IsZero() {
		missing = append(missing, FieldCheckIn)
	}
	if h.CheckOut.IsZero() {
		missing = append(missing, FieldCheckOut)
	}
	return missing
}
