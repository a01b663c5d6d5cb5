package itinerary_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/travelcal/internal/batch"
	"github.com/teemow/travelcal/internal/ics"
	"github.com/teemow/travelcal/internal/pipeline"
	"github.com/teemow/travelcal/internal/report"
	"github.com/teemow/travelcal/internal/schedule"
	"github.com/teemow/travelcal/internal/tools/common"
)

// Tool names.
const (
	ToolParse        = "itinerary_parse"
	ToolRenderICS    = "itinerary_render_ics"
	ToolExportICS    = "itinerary_export_ics"
	ToolPushCalendar = "itinerary_push_calendar"
)

// documentResult is the itinerary_parse output for one PDF.
type documentResult struct {
	Path    string           `json:"path"`
	Summary string           `json:"summary,omitempty"`
	Result  *pipeline.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// RegisterItineraryTools registers the itinerary tools with the MCP server.
// The calendar push tool is only registered when allowWrite is set.
func RegisterItineraryTools(s *mcpserver.MCPServer, tc *common.ToolContext, allowWrite bool) error {
	if tc == nil || tc.Converter == nil {
		return errors.New("itinerary tools need a document converter")
	}

	parseTool := mcp.NewTool(ToolParse,
		mcp.WithDescription("Parse travel itinerary PDFs and return the flights, hotel stays, parse diagnostics and calendar events they produce"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the itinerary PDF. Can be a single path or an array of paths."),
		),
	)
	s.AddTool(parseTool, common.InstrumentedToolHandler(ToolParse, tc, ParseHandler(tc)))

	renderTool := mcp.NewTool(ToolRenderICS,
		mcp.WithDescription("Convert a travel itinerary PDF and return the iCalendar (.ics) text"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the itinerary PDF"),
		),
	)
	s.AddTool(renderTool, common.InstrumentedToolHandler(ToolRenderICS, tc, RenderICSHandler(tc)))

	exportTool := mcp.NewTool(ToolExportICS,
		mcp.WithDescription("Convert travel itinerary PDFs and write one .ics file per PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the itinerary PDF. Can be a single path or an array of paths."),
		),
		mcp.WithString("output",
			mcp.Description("Output .ics path. Only valid for a single PDF; defaults to the PDF path with an .ics extension."),
		),
	)
	s.AddTool(exportTool, common.InstrumentedToolHandler(ToolExportICS, tc, ExportICSHandler(tc)))

	if allowWrite {
		pushTool := mcp.NewTool(ToolPushCalendar,
			mcp.WithDescription("Convert a travel itinerary PDF and create its events in the primary Google Calendar"),
			mcp.WithString("account",
				mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
			),
			mcp.WithString("path",
				mcp.Required(),
				mcp.Description("Path of the itinerary PDF"),
			),
		)
		s.AddTool(pushTool, common.InstrumentedToolHandler(ToolPushCalendar, tc, PushCalendarHandler(tc)))
	}

	return nil
}

// convert runs the converter. A document without flights or hotels yields
// pipeline.ErrNothingFound together with the diagnostics.
func convert(ctx context.Context, tc *common.ToolContext, path string) (*pipeline.Result, error) {
	return tc.Converter.ConvertPDF(ctx, pipeline.SourceMCP, path)
}

// ParseHandler returns the itinerary_parse handler.
func ParseHandler(tc *common.ToolContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		paths, err := batch.ParseStringOrArray(args["path"], "path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		docs := make([]documentResult, 0, len(paths))
		failed := 0
		for _, path := range paths {
			doc := documentResult{Path: path}
			res, err := convert(ctx, tc, path)
			if res != nil {
				doc.Result = res
				doc.Summary = report.Found(res.Flights(), res.Hotels())
			}
			if err != nil {
				doc.Error = err.Error()
				failed++
			}
			docs = append(docs, doc)
		}

		out, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
		}
		if failed == len(paths) {
			return mcp.NewToolResultError(string(out)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

// RenderICSHandler returns the itinerary_render_ics handler.
func RenderICSHandler(tc *common.ToolContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, ok := common.GetStringArg(request.GetArguments(), "path")
		if !ok {
			return mcp.NewToolResultError("path is required"), nil
		}

		res, err := convert(ctx, tc, path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to convert %s: %v", path, err)), nil
		}

		data, err := tc.Renderer.Render(res.Events)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to render calendar: %v", err)), nil
		}
		for kind, n := range schedule.Counts(res.Events) {
			tc.Metrics().RecordEventsEmitted(ctx, string(kind), ics.SinkName, n)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// ExportICSHandler returns the itinerary_export_ics handler.
func ExportICSHandler(tc *common.ToolContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		paths, err := batch.ParseStringOrArray(args["path"], "path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		output, hasOutput := common.GetStringArg(args, "output")
		if hasOutput && len(paths) > 1 {
			return mcp.NewToolResultError("output can only be used with a single path"), nil
		}

		results := batch.ProcessBatch(ctx, paths, func(ctx context.Context, path string) (string, error) {
			res, err := convert(ctx, tc, path)
			if err != nil {
				return "", err
			}

			target := ics.OutputPath(path)
			if hasOutput {
				target = output
			}
			sink := ics.NewFileSink(target, tc.Metrics(), tc.Logger())
			sink.Renderer = tc.Renderer
			if err := sink.Write(ctx, res.Events); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s Wrote %d events to %s", report.Found(res.Flights(), res.Hotels()), len(res.Events), target), nil
		})

		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}
}

// PushCalendarHandler returns the itinerary_push_calendar handler.
func PushCalendarHandler(tc *common.ToolContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		account := common.GetAccountFromArgs(args)

		path, ok := common.GetStringArg(args, "path")
		if !ok {
			return mcp.NewToolResultError("path is required"), nil
		}

		res, err := convert(ctx, tc, path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to convert %s: %v", path, err)), nil
		}

		pusher, err := tc.OpenCalendar(ctx, account)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		br, err := pusher.Push(ctx, res.Events)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to push events: %v", err)), nil
		}
		return mcp.NewToolResultText(br.JSON()), nil
	}
}
