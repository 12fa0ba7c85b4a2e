package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolCategory(t *testing.T) {
	assert.Equal(t, "Google Calendar Tools", toolCategory("calendar_list_events"))
	assert.Equal(t, "Gmail Tools", toolCategory("gmail_get_message"))
	assert.Equal(t, "Other", toolCategory("drive_list_files"))
	assert.Equal(t, "Other", toolCategory("ping"))
}

func TestRenderToolDocs(t *testing.T) {
	get := mcp.NewTool("calendar_get_event",
		mcp.WithDescription("Get an event"),
		mcp.WithString("eventId", mcp.Required(), mcp.Description("The ID of the event")),
		mcp.WithString("calendarId", mcp.Description("Calendar ID")),
	)
	create := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create an event"),
		mcp.WithString("summary", mcp.Required()),
	)
	message := mcp.NewTool("gmail_get_message",
		mcp.WithDescription("Get a message"),
		mcp.WithString("messageId", mcp.Required(), mcp.Description("The ID of the message")),
	)

	sections := buildDocSections([]mcp.Tool{message, get, create}, []mcp.Tool{message, get})
	require.Len(t, sections, 2)
	assert.Equal(t, "Gmail Tools", sections[0].Title)
	assert.Equal(t, []string{"calendar_create_event", "calendar_get_event"},
		[]string{sections[1].Tools[0].Name, sections[1].Tools[1].Name})
	assert.True(t, sections[1].Tools[0].Write)
	assert.False(t, sections[1].Tools[1].Write)

	var buf bytes.Buffer
	require.NoError(t, renderToolDocs(&buf, sections))
	md := buf.String()

	assert.Contains(t, md, "# MCP Tools Reference")
	assert.Contains(t, md, "- [Gmail Tools](#gmail-tools)")
	assert.Contains(t, md, "### calendar_create_event (write)")
	assert.Contains(t, md, "### calendar_get_event\n")
	assert.Contains(t, md, "- `eventId` (required): The ID of the event")
	assert.Contains(t, md, "- `calendarId` (optional): Calendar ID")
	assert.Contains(t, md, "- `summary` (required): string parameter")
	assert.Less(t, strings.Index(md, "## Gmail Tools"), strings.Index(md, "## Google Calendar Tools"))
}

func TestRegisteredTools_WriteToolsNeedYolo(t *testing.T) {
	read, err := registeredTools(false)
	require.NoError(t, err)
	all, err := registeredTools(true)
	require.NoError(t, err)

	var writes []string
	for _, s := range buildDocSections(all, read) {
		for _, d := range s.Tools {
			if d.Write {
				writes = append(writes, d.Name)
			}
		}
	}
	assert.ElementsMatch(t, []string{"calendar_create_event", "calendar_patch_event"}, writes)
}
