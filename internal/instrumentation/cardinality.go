package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// These functions fold free-form values (request paths, record kinds, field
// names pulled from documents) into a closed set of label values.
//
// Always use these helpers when a label value is derived from input.

const labelOther = "other"

var (
	recordKinds = map[string]struct{}{
		"flight": {},
		"hotel":  {},
	}

	eventKinds = map[string]struct{}{
		"flight":         {},
		"hotel":          {},
		"commute_before": {},
		"commute_after":  {},
	}

	diagnosticFields = map[string]struct{}{
		"flight_number":    {},
		"origin":           {},
		"destination":      {},
		"departure":        {},
		"arrival":          {},
		"reservation_code": {},
		"name":             {},
		"check_in":         {},
		"check_out":        {},
		"span":             {},
	}

	// routePrefixes maps path prefixes carrying an identifier to their route pattern.
	routePrefixes = []struct{ prefix, route string }{
		{"/download/", "/download/{id}"},
		{"/static/", "/static/*"},
	}
)

// RecordKindLabel returns kind if it is a known record kind, otherwise "other".
func RecordKindLabel(kind string) string {
	return closedLabel(recordKinds, kind)
}

// EventKindLabel returns kind if it is a known calendar event kind, otherwise "other".
func EventKindLabel(kind string) string {
	return closedLabel(eventKinds, kind)
}

// DiagnosticFieldLabel returns field if it is a known record field, otherwise "other".
func DiagnosticFieldLabel(field string) string {
	return closedLabel(diagnosticFields, field)
}

// RouteLabel collapses request paths carrying identifiers into their route
// pattern.
//
// Example:
//
//	RouteLabel("/download/3f2a...")  // "/download/{id}"
//	RouteLabel("/upload")            // "/upload"
//	RouteLabel("")                   // "/"
func RouteLabel(path string) string {
	if path == "" {
		return "/"
	}
	for _, rp := range routePrefixes {
		if strings.HasPrefix(path, rp.prefix) {
			return rp.route
		}
	}
	return path
}

func closedLabel(set map[string]struct{}, v string) string {
	if _, ok := set[v]; ok {
		return v
	}
	return labelOther
}

// Operation types for Google API metrics.
// Status, OAuth, and Service constants are defined in config.go.
const (
	OperationCreate   = "create"
	OperationExchange = "exchange"
	OperationRefresh  = "refresh"
)
