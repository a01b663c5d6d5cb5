// Package ics renders synthesized itinerary events as an iCalendar document
// and writes it to disk.
//
// Flight, hotel and commute events become VEVENTs carrying their palette color
// both as the RFC 7986 COLOR property and as the X-GOOGLE-CALENDAR-* extension
// properties Google Calendar reads on import. Events with a reminder get a
// DISPLAY alarm.
//
// Wall times are written with a TZID parameter naming the IANA zone of the
// airport or hotel; events that live in UTC use the Z form.
package ics
