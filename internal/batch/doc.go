// Package batch collects per-item outcomes of operations that continue past
// individual failures.
//
// Pushing an itinerary to Google Calendar creates one event at a time and
// keeps going when one insert fails; the MCP tools accept one document path
// or several. Both report through BatchResult so the web page, the CLI
// summary and the tool output show the same counts.
package batch
