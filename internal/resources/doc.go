// Package resources provides MCP resources describing how itineraries are
// turned into events: the configured colors and commute durations.
//
// # Available Resources
//
//   - travelcal://settings: Event colors, the color palette and the commute
//     overrides from the config file
//   - travelcal://commute/{airport}: The resolved commute durations before
//     departing from and after arriving at an airport
package resources
