// Package instrumentation provides OpenTelemetry metrics and tracing for
// travelcal.
//
// # Metrics
//
// Conversion metrics:
//   - conversions_total: Counter of conversions by source (cli, web, mcp) and result
//   - conversion_duration_seconds: Histogram of conversion durations
//   - itinerary_records_total: Counter of validated records by kind
//   - itinerary_diagnostics_total: Counter of discarded-record diagnostics by kind and field
//   - calendar_events_emitted_total: Counter of events handed to a sink by kind
//   - calendar_push_failures_total: Counter of failed remote event creations by error class
//
// Server/HTTP metrics:
//   - http_requests_total: Counter of HTTP requests by method, route, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_sessions: Gauge of pending calendar push sessions
//
// Google API and OAuth metrics:
//   - google_api_operations_total / google_api_operation_duration_seconds
//   - oauth_auth_total: authorization code exchanges by result
//   - oauth_token_refresh_total: token refreshes by result
//
// MCP tool metrics:
//   - mcp_tool_invocations_total / mcp_tool_duration_seconds
//
// Label values derived from input (paths, diagnostic fields) go through the
// helpers in cardinality.go.
//
// # Tracing
//
// Spans are created for conversions (pipeline.convert), PDF text extraction
// (pdftext.extract), Google API calls (google.<service>.<operation>) and MCP
// tool invocations (tool.<name>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: travelcal)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordConversion(ctx, "cli", instrumentation.ConversionSuccess, time.Since(start))
package instrumentation
