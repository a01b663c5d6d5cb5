package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/travelcal/internal/config"
	"github.com/teemow/travelcal/internal/tools/common"
)

func TestCheckSetup(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Google.CredentialsFile = filepath.Join(dir, "credentials.json")

	var out bytes.Buffer
	if checkSetup(&out, cfg, "default", false) {
		t.Error("checkSetup() = true without a credentials file")
	}
	if !strings.Contains(out.String(), "NOT configured") {
		t.Errorf("report does not say the integration is missing:\n%s", out.String())
	}

	if err := os.WriteFile(cfg.Google.CredentialsFile, []byte(`{"installed":{}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if !checkSetup(&out, cfg, "work", false) {
		t.Error("checkSetup() = false with a credentials file")
	}
	if !strings.Contains(out.String(), "travelcal auth --account work") {
		t.Errorf("report does not explain how to authorize:\n%s", out.String())
	}

	out.Reset()
	checkSetup(&out, cfg, "work", true)
	if strings.Contains(out.String(), "travelcal auth") {
		t.Errorf("report asks to authorize an account that has a token:\n%s", out.String())
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "line", input: "4/abc\n", expected: "4/abc"},
		{name: "no newline", input: "  4/abc  ", expected: "4/abc"},
		{name: "only first line", input: "first\nsecond\n", expected: "first"},
		{name: "empty input", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readLine(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("readLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("readLine() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewMCPServerRegistersTools(t *testing.T) {
	cfg := config.DefaultConfig()
	tc := common.NewToolContext(newConverter(cfg, nil, nil), nil, nil, nil)

	readOnly, err := newMCPServer(tc, cfg, false)
	if err != nil {
		t.Fatalf("newMCPServer() error = %v", err)
	}
	if _, ok := readOnly.ListTools()["itinerary_push_calendar"]; ok {
		t.Error("push tool registered without --allow-write")
	}
	if _, ok := readOnly.ListTools()["itinerary_parse"]; !ok {
		t.Error("parse tool not registered")
	}

	writable, err := newMCPServer(tc, cfg, true)
	if err != nil {
		t.Fatalf("newMCPServer() error = %v", err)
	}
	if _, ok := writable.ListTools()["itinerary_push_calendar"]; !ok {
		t.Error("push tool not registered with --allow-write")
	}
}

func TestGenerateToolsMarkdown(t *testing.T) {
	tools := []mcp.Tool{
		mcp.NewTool("itinerary_parse",
			mcp.WithDescription("Parse itineraries"),
			mcp.WithString("path", mcp.Required(), mcp.Description("PDF path")),
		),
		mcp.NewTool("other_tool"),
	}

	md := generateToolsMarkdown(tools)

	for _, want := range []string{
		"# MCP Tools Reference",
		"## Itinerary Tools",
		"### itinerary_parse",
		"- `path` (required): PDF path",
		"## Other",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}
