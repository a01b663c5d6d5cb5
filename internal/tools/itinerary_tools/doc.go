// Package itinerary_tools provides MCP tools for converting travel agency
// itinerary PDFs into calendar events.
//
// # Available Tools
//
// Read-only:
//   - itinerary_parse: Extract flights, hotel stays, diagnostics and the
//     synthesized events from one or more PDFs
//   - itinerary_render_ics: Return the iCalendar text for a PDF
//
// Local files:
//   - itinerary_export_ics: Write an .ics file next to each PDF, or to an
//     explicit output path for a single PDF
//
// Calendar (only registered with --allow-write):
//   - itinerary_push_calendar: Create the events of a PDF in the primary
//     Google Calendar of an account
//
// # Multi-Account Support
//
// itinerary_push_calendar accepts an optional 'account' parameter naming the
// stored Google account to use. If not provided, the 'default' account is used.
//
// # Authentication
//
// Tokens are loaded from the token directory written by `travelcal auth`.
// If no token exists for the account, the tool returns an error with
// authorization instructions.
package itinerary_tools
