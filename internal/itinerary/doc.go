// Package itinerary extracts flight and hotel bookings from the text of a
// travel-agency itinerary.
//
// Extraction is anchor based. Every booking ends in a confirmation line
// ("LATAM AIRLINES LA 2696 CONFIRMADO", "CASA ANDINA PREMIUM CONFIRMADO") and
// the text around that line holds the booking's fields:
//
//   - flights: everything between the previous flight anchor and this one
//   - hotels: dates before the anchor, contact and rate details after it
//
// Dates are written in Spanish abbreviations ("lu., mar. 23") without a year;
// a single year anchor (", 2026") found anywhere in the document applies to
// every date.
//
// Parsing never fails. Candidates with unresolved fields are dropped and
// reported as Diagnostic values:
//
//	it, diags := itinerary.Parse(text, time.Now)
//	for _, d := range diags {
//	    logger.Warn("discarded booking", "diagnostic", d.String())
//	}
package itinerary
