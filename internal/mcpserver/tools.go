package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"lantern/internal/api"
	"lantern/internal/channel"
)

// Tools exposes the display API as MCP tools.
type Tools struct {
	display api.DisplayAPI
}

// NewTools creates the tool set for display.
func NewTools(display api.DisplayAPI) *Tools {
	return &Tools{display: display}
}

func directionNames() []string {
	names := make([]string, len(channel.AllDirections))
	for i, d := range channel.AllDirections {
		names[i] = string(d)
	}
	return names
}

// ServerTools returns every tool with its handler.
func (t *Tools) ServerTools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("lantern_status",
				mcp.WithDescription("Show the lantern's direction, visible channel and configured channels"),
			),
			Handler: t.handleStatus,
		},
		{
			Tool: mcp.NewTool("lantern_list_channel_types",
				mcp.WithDescription("List the channel types that can be assigned to a plane"),
			),
			Handler: t.handleListChannelTypes,
		},
		{
			Tool: mcp.NewTool("lantern_set_plane",
				mcp.WithDescription("Assign a channel to a plane, or clear it when type is empty"),
				mcp.WithString("direction",
					mcp.Required(),
					mcp.Description("Plane to configure"),
					mcp.Enum(directionNames()...),
				),
				mcp.WithString("type",
					mcp.Description("Channel type id from lantern_list_channel_types; empty clears the plane"),
				),
				mcp.WithObject("settings",
					mcp.Description("Channel settings as string key/value pairs"),
				),
			),
			Handler: t.handleSetPlane,
		},
		{
			Tool: mcp.NewTool("lantern_set_direction",
				mcp.WithDescription("Point the lantern at a direction, overriding the sensor"),
				mcp.WithString("direction",
					mcp.Required(),
					mcp.Description("Direction to face"),
					mcp.Enum(directionNames()...),
				),
			),
			Handler: t.handleSetDirection,
		},
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (t *Tools) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := t.display.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get status: %v", err)), nil
	}
	return jsonResult(st)
}

func (t *Tools) handleListChannelTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.display.ChannelTypes())
}

func (t *Tools) handleSetPlane(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError("direction parameter is required"), nil
	}
	d, err := channel.ParseDirection(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	kind, _ := args["type"].(string)
	if kind == "" {
		if err := t.display.ClearPlane(ctx, d); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to clear plane %s: %v", d, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Plane %s cleared", d)), nil
	}

	cfg := channel.Config{Type: kind}
	if rawSettings, ok := args["settings"].(map[string]interface{}); ok && len(rawSettings) > 0 {
		cfg.Settings = make(map[string]string, len(rawSettings))
		for k, v := range rawSettings {
			cfg.Settings[k] = fmt.Sprint(v)
		}
	}
	if err := t.display.SetPlane(ctx, d, cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to set plane %s: %v", d, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Plane %s now shows %s", d, cfg)), nil
}

func (t *Tools) handleSetDirection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError("direction parameter is required"), nil
	}
	d, err := channel.ParseDirection(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.display.SetDirection(ctx, d); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to set direction: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Lantern now faces %s", d)), nil
}
