package common

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/teemow/travelcal/internal/instrumentation"
)

func TestInstrumentedToolHandler_Success(t *testing.T) {
	ctx := context.Background()
	tc := NewToolContext(nil, nil, nil, nil)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandler("test_tool", tc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	ctx := context.Background()
	tc := NewToolContext(nil, nil, nil, nil)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := InstrumentedToolHandler("test_tool", tc, handler)

	_, err := wrapped(ctx, mcp.CallToolRequest{})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstrumentedToolHandler_ResultError(t *testing.T) {
	ctx := context.Background()
	tc := NewToolContext(nil, nil, nil, nil)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("tool error"), nil
	}

	wrapped := InstrumentedToolHandler("test_tool", tc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected error result to be passed through")
	}
}

func TestInstrumentedToolHandler_WithMetrics(t *testing.T) {
	ctx := context.Background()

	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := instrumentation.NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	tc := NewToolContext(nil, nil, metrics, nil)

	var gotCtx context.Context
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		gotCtx = ctx
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandler("test_tool", tc, handler)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"account": "work"}

	if _, err := wrapped(ctx, req); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if gotCtx == nil {
		t.Error("expected handler to receive the span context")
	}
}

func TestToolContext_NilSafe(t *testing.T) {
	var tc *ToolContext
	if tc.Metrics() != nil {
		t.Error("nil context should report nil metrics")
	}
	if tc.Logger() == nil {
		t.Error("nil context should fall back to the default logger")
	}
}

func TestToolContext_OpenCalendarDisabled(t *testing.T) {
	tc := NewToolContext(nil, nil, nil, nil)

	_, err := tc.OpenCalendar(context.Background(), "default")
	if !errors.Is(err, ErrCalendarDisabled) {
		t.Errorf("OpenCalendar() error = %v, want %v", err, ErrCalendarDisabled)
	}
}
