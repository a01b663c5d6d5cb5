package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/travelcal/internal/config"
	"github.com/teemow/travelcal/internal/schedule"
)

// Resource URIs.
const (
	SettingsURI        = "travelcal://settings"
	CommuteURIPrefix   = "travelcal://commute/"
	commuteURITemplate = CommuteURIPrefix + "{airport}"
)

var airportPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

type colorInfo struct {
	ID  string `json:"id"`
	RGB string `json:"rgb"`
}

type settingsData struct {
	FlightColor colorInfo            `json:"flight_color"`
	HotelColor  colorInfo            `json:"hotel_color"`
	Palette     []colorInfo          `json:"palette"`
	Commute     config.CommuteConfig `json:"commute"`
}

type commuteData struct {
	Airport       string  `json:"airport"`
	BeforeMinutes float64 `json:"before_minutes"`
	AfterMinutes  float64 `json:"after_minutes"`
}

// RegisterSettingsResources registers the settings resources with the MCP
// server.
func RegisterSettingsResources(s *mcpserver.MCPServer, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("settings resources need a config")
	}

	settingsResource := mcp.NewResource(
		SettingsURI,
		"Calendar Settings",
		mcp.WithResourceDescription("Event colors and commute overrides used when converting itineraries"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(settingsResource, SettingsHandler(cfg))

	commuteTemplate := mcp.NewResourceTemplate(
		commuteURITemplate,
		"Airport Commute",
		mcp.WithTemplateDescription("Commute durations before departing from and after arriving at an airport (IATA code)"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(commuteTemplate, CommuteHandler(cfg.CommuteTable()))

	return nil
}

// SettingsHandler returns the handler for travelcal://settings.
func SettingsHandler(cfg *config.Config) func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		flight, _ := schedule.ParseColorID(cfg.FlightColor)
		hotel, _ := schedule.ParseColorID(cfg.HotelColor)

		data := settingsData{
			FlightColor: colorInfo{ID: string(flight), RGB: flight.RGB()},
			HotelColor:  colorInfo{ID: string(hotel), RGB: hotel.RGB()},
			Commute:     cfg.Commute,
		}
		for _, id := range schedule.Palette() {
			data.Palette = append(data.Palette, colorInfo{ID: string(id), RGB: id.RGB()})
		}

		return jsonContents(request.Params.URI, data)
	}
}

// CommuteHandler returns the handler for travelcal://commute/{airport}.
func CommuteHandler(table schedule.CommuteTable) func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		airport := strings.TrimPrefix(request.Params.URI, CommuteURIPrefix)
		if !airportPattern.MatchString(airport) {
			return nil, fmt.Errorf("invalid airport code %q: want a three letter IATA code", airport)
		}
		airport = strings.ToUpper(airport)

		data := commuteData{
			Airport:       airport,
			BeforeMinutes: table.Duration(airport, schedule.Before).Minutes(),
			AfterMinutes:  table.Duration(airport, schedule.After).Minutes(),
		}
		return jsonContents(request.Params.URI, data)
	}
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
