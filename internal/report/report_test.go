package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/travelcal/internal/batch"
	"github.com/teemow/travelcal/internal/itinerary"
	"github.com/teemow/travelcal/internal/schedule"
)

func sample() (itinerary.Itinerary, []schedule.Event) {
	wc := func(day, hour int) itinerary.Wallclock {
		return itinerary.Wallclock{Year: 2026, Month: time.March, Day: day, Hour: hour}
	}
	it := itinerary.Itinerary{
		Flights: []itinerary.FlightRecord{{
			FlightNumber: "LA2696", Origin: "SCL", Destination: "LIM",
			Departure: wc(23, 10), Arrival: wc(23, 13), ReservationCode: "QX7P2M",
		}},
	}
	return it, schedule.Synthesizer{}.Schedule(it)
}

func TestConversion(t *testing.T) {
	it, events := sample()
	diags := []itinerary.Diagnostic{{Kind: "hotel", Anchor: "HOTEL CENTRAL", Field: "check_out"}}

	out := Conversion("/home/jane/trip.pdf", "/home/jane/trip.ics", it, diags, events)

	assert.Contains(t, out, "trip.pdf → trip.ics")
	assert.Contains(t, out, "Found 1 flights and 0 hotels.")
	assert.Contains(t, out, "Commute to SCL Airport")
	assert.Contains(t, out, "(2h30m0s)")
	assert.Contains(t, out, "Flight LA2696: SCL → LIM")
	assert.Contains(t, out, "Mon 23 Mar 10:00")
	assert.Contains(t, out, "Discarded 1 booking(s):")
	assert.Contains(t, out, "hotel HOTEL CENTRAL: missing check_out")
	assert.NotContains(t, out, "/home/jane")
}

func TestConversion_NoOutput(t *testing.T) {
	out := Conversion("trip.pdf", "", itinerary.Itinerary{}, nil, nil)
	assert.Contains(t, out, "trip.pdf")
	assert.NotContains(t, out, "→")
	assert.NotContains(t, out, "Discarded")
}

func TestPush(t *testing.T) {
	assert.Contains(t, Push(nil), "Nothing pushed.")

	ok := Push(batch.Summarize([]batch.Result{batch.NewSuccessResult("a", "link")}))
	assert.Contains(t, ok, "1 of 1 events created")
	assert.NotContains(t, ok, "failed")

	failed := Push(batch.Summarize([]batch.Result{
		batch.NewSuccessResult("a", "link"),
		{ID: "b", Title: "Flight LA2696: SCL → LIM", Status: batch.StatusError, Class: "retryable", Error: "rate limited"},
	}))
	assert.Contains(t, failed, "1 of 2 events created, 1 failed")
	assert.Contains(t, failed, "Flight LA2696: SCL → LIM [retryable]: rate limited")
}
