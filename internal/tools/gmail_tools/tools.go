package gmail_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendart/internal/gmail"
	"github.com/teemow/calendart/internal/server"
	"github.com/teemow/calendart/internal/tools/common"
)

// maxBodyLength truncates bodies returned to the client.
const maxBodyLength = 20000

// RegisterGmailTools registers Gmail tools with the MCP server
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listMessagesTool := mcp.NewTool("gmail_list_messages",
		mcp.WithDescription("Search Gmail messages. Returns the headers and a preview of each message."),
		mcp.WithString("query",
			mcp.Description("Gmail search query (e.g., 'from:alice is:unread newer_than:7d')"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token returned by a previous search to fetch the next page"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of messages to return (default: 10)"),
		),
	)

	s.AddTool(listMessagesTool, common.InstrumentedToolHandler("gmail_list_messages", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListMessages(ctx, request, sc)
		}))

	getMessageTool := mcp.NewTool("gmail_get_message",
		mcp.WithDescription("Get a Gmail message with its text body and attachment list"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message"),
		),
		mcp.WithBoolean("html",
			mcp.Description("Return the HTML body instead of the text body"),
		),
	)

	s.AddTool(getMessageTool, common.InstrumentedToolHandler("gmail_get_message", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessage(ctx, request, sc)
		}))

	return nil
}

func handleListMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	maxResults := 10
	if v, ok := args["maxResults"].(float64); ok && v > 0 {
		maxResults = min(int(v), 100)
	}

	set, err := sc.MailAPI().WithPageSize(maxResults).List(ctx,
		common.StringArg(args, "query", ""),
		common.StringArg(args, "pageToken", ""))
	if err != nil {
		return common.ErrorResult("Failed to list messages", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d messages (about %d matching):\n\n", len(set.Messages), set.ResultSizeEstimate)
	for i, m := range set.Messages {
		fmt.Fprintf(&b, "%d. %s\n", i+1, subjectOf(m))
		fmt.Fprintf(&b, "   ID: %s\n", m.ID)
		writeSender(&b, "   ", m)
		if !m.SentDate.IsZero() {
			fmt.Fprintf(&b, "   Date: %s\n", m.SentDate.Format(time.RFC3339))
		}
		if m.Preview != "" {
			fmt.Fprintf(&b, "   Preview: %s\n", m.Preview)
		}
		b.WriteString("\n")
	}
	if set.NextPageToken != "" {
		fmt.Fprintf(&b, "Next page token: %s\n", set.NextPageToken)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleGetMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID := common.StringArg(args, "messageId", "")
	if messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	m, err := sc.MailAPI().Get(ctx, messageID)
	if err != nil {
		return common.ErrorResult("Failed to get message", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", subjectOf(m))
	writeSender(&b, "", m)
	if to, ok := m.Header("To"); ok {
		fmt.Fprintf(&b, "To: %s\n", to)
	}
	if !m.SentDate.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", m.SentDate.Format(time.RFC3339))
	}
	if len(m.LabelIDs) > 0 {
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(m.LabelIDs, ", "))
	}

	body := m.TextBody
	if html, _ := common.BoolArg(args, "html"); html || body == "" {
		body = m.HTMLBody
	}
	if len(body) > maxBodyLength {
		body = body[:maxBodyLength] + "\n[truncated]"
	}
	fmt.Fprintf(&b, "\n%s\n", body)

	if atts := m.Attachments(); len(atts) > 0 {
		b.WriteString("\nAttachments:\n")
		for _, a := range atts {
			inline := ""
			if a.Inline {
				inline = ", inline"
			}
			fmt.Fprintf(&b, "- %s (%s, %d bytes%s, id %s)\n", a.SafeName(), a.MimeType, a.Size, inline, a.AttachmentID)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func subjectOf(m *gmail.Message) string {
	if m.Subject == "" {
		return "(no subject)"
	}
	return m.Subject
}

func writeSender(b *strings.Builder, indent string, m *gmail.Message) {
	if m.Sender == nil {
		return
	}
	if m.Sender.Name != "" {
		fmt.Fprintf(b, "%sFrom: %s <%s>\n", indent, m.Sender.Name, m.Sender.Email())
		return
	}
	fmt.Fprintf(b, "%sFrom: %s\n", indent, m.Sender.Email())
}
