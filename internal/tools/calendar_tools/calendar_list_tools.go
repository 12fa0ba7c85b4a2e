package calendar_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendart/internal/server"
	"github.com/teemow/calendart/internal/tools/common"
)

// RegisterCalendarListTools registers calendar list tools with the MCP server
func RegisterCalendarListTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listCalendarsTool := mcp.NewTool("calendar_list_calendars",
		mcp.WithDescription("List all calendars accessible to the user"),
	)

	s.AddTool(listCalendarsTool, common.InstrumentedToolHandler("calendar_list_calendars", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	permissionsTool := mcp.NewTool("calendar_get_permissions",
		mcp.WithDescription("List the users a calendar is shared with and their roles"),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (defaults to the configured calendar)"),
		),
	)

	s.AddTool(permissionsTool, common.InstrumentedToolHandler("calendar_get_permissions", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetPermissions(ctx, request, sc)
		}))

	return nil
}

func handleListCalendars(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	list, err := sc.CalendarAPI().List(ctx, nil)
	if err != nil {
		return common.ErrorResult("Failed to list calendars", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d calendar(s):\n\n", len(list.Calendars))
	for i, cal := range list.Calendars {
		fmt.Fprintf(&b, "%d. %s\n", i+1, cal.Summary)
		fmt.Fprintf(&b, "   ID: %s\n", cal.ID)
		if cal.AccessRole != "" {
			fmt.Fprintf(&b, "   Access Role: %s\n", cal.AccessRole)
		}
		if cal.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", cal.Description)
		}
		if cal.TimeZone != "" {
			fmt.Fprintf(&b, "   Time Zone: %s\n", cal.TimeZone)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleGetPermissions(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	calendarID := common.StringArg(args, "calendarId", sc.DefaultCalendar())

	cal, err := sc.CalendarAPI().Get(ctx, calendarID, nil)
	if err != nil {
		return common.ErrorResult("Failed to get calendar", err), nil
	}

	perms, err := sc.CalendarAPI().Permissions(ctx, cal, nil)
	if err != nil {
		return common.ErrorResult("Failed to get permissions", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Calendar %s is shared with %d user(s):\n\n", cal.ID, len(perms))
	for _, p := range perms {
		who := p.User.Email()
		if p.User == sc.User() {
			who += " (you)"
		}
		fmt.Fprintf(&b, "- %s: %s\n", who, p.Role)
	}

	return mcp.NewToolResultText(b.String()), nil
}
