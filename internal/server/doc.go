// Package server provides the travelcal web application.
//
// # Key Components
//
// App serves the upload form. A posted itinerary PDF is converted through the
// pipeline and either offered as an ICS download or pushed to the uploader's
// Google Calendar:
//   - GET / and GET /about render the form and the instructions page
//   - POST /upload converts the document (PDF only, bounded size)
//   - GET /download/{id} serves a rendered calendar until it expires
//   - GET /oauth2callback finishes the Google consent flow and pushes
//     the events that were waiting for it
//
// SessionStore keeps rendered downloads and pending pushes for a limited time
// and sweeps expired entries on a ticker. Pending pushes are keyed by the OAuth
// state value, so an unknown or replayed state is rejected.
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed for probes;
// /health keeps the plain status document older deployments poll.
//
// MetricsServer exposes Prometheus metrics on a dedicated port.
//
// ListenWithFallback binds the configured address, or the first free port of
// 5000, 8080 and 8888 when none is configured.
package server
