package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendart/internal/server"
)

// RegisterUserResources registers resources describing the account the server
// acts for and its calendars.
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		"user://profile",
		"Current User Profile",
		mcp.WithResourceDescription("The Google account the server acts for and its default calendar"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	calendarsResource := mcp.NewResource(
		"calendar://calendars",
		"Calendar List",
		mcp.WithResourceDescription("Calendars of the user's calendar list with their access role"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(calendarsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCalendarList(ctx, request, sc)
	})

	return nil
}

type profile struct {
	Name            string   `json:"name,omitempty"`
	Emails          []string `json:"emails"`
	DefaultCalendar string   `json:"defaultCalendar"`
	WritesEnabled   bool     `json:"writesEnabled"`
}

type calendarEntry struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	AccessRole  string `json:"accessRole,omitempty"`
}

// handleUserProfile answers from the configuration; no request is sent.
func handleUserProfile(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	user := sc.User()
	emails := user.Emails
	if emails == nil {
		emails = []string{}
	}

	return jsonContents(request.Params.URI, profile{
		Name:            user.Name,
		Emails:          emails,
		DefaultCalendar: sc.DefaultCalendar(),
		WritesEnabled:   sc.AllowWrites(),
	})
}

func handleCalendarList(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	list, err := sc.CalendarAPI().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	entries := make([]calendarEntry, 0, len(list.Calendars))
	for _, cal := range list.Calendars {
		entries = append(entries, calendarEntry{
			ID:          cal.ID,
			Summary:     cal.Summary,
			Description: cal.Description,
			TimeZone:    cal.TimeZone,
			AccessRole:  cal.AccessRole,
		})
	}

	return jsonContents(request.Params.URI, entries)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
