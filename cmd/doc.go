// Package cmd implements the command-line interface for travelcal.
//
// This package provides the following commands:
//   - convert: Convert an itinerary PDF into an .ics calendar file
//   - push: Add the events of an itinerary PDF to Google Calendar
//   - auth: Authorize access to Google Calendar for an account
//   - check-setup: Check whether the Google Calendar integration is configured
//   - serve: Start the itinerary upload web application
//   - mcp: Start the MCP server on stdio for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
package cmd
