package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/logging"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a span, invocation
// metrics and a log line per call. A result flagged IsError counts as a
// failed invocation.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", tc, handler))
func InstrumentedToolHandler(toolName string, tc *ToolContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		account := GetAccountFromArgs(request.GetArguments())

		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			attribute.String(instrumentation.SpanAttrAccount, account))
		defer span.End()

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			span.SetAttributes(attribute.Bool("mcp.result.error", true))
		default:
			instrumentation.SetSpanSuccess(span)
		}

		tc.Metrics().RecordToolInvocation(ctx, toolName, status, account, duration)

		logger := logging.WithTool(tc.Logger(), toolName)
		attrs := []any{
			logging.Account(account),
			logging.Status(status),
			"duration_ms", duration.Milliseconds(),
		}
		if err != nil {
			logger.Warn("tool invocation failed", append(attrs, logging.Err(err))...)
		} else {
			logger.Info("tool invocation", attrs...)
		}

		return result, err
	}
}
