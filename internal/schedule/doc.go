// Package schedule turns validated itinerary records into calendar events.
//
// Flights are sorted by departure and walked once. A boundary between two legs
// is a connection when the arriving and departing airports match and the
// layover is shorter than twelve hours; every other boundary gets a synthetic
// commute event sized by a CommuteTable. Hotels become one free (transparent)
// event per stay.
//
// Events are immutable. Color, transparency and reminder are fixed when the
// event is built and sinks only read them.
package schedule
