package gmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/teemow/calendart/internal/criterion"
	"github.com/teemow/calendart/internal/google"
	"github.com/teemow/calendart/internal/instrumentation"
	"github.com/teemow/calendart/internal/logging"
)

const messagesPath = "/gmail/v1/users/me/messages"

// Requester sends a request to the Google APIs. *google.Adapter implements it.
type Requester interface {
	SendRequest(ctx context.Context, method, path string, req google.Request, out any) error
}

// MessageSet is one page of a message search.
type MessageSet struct {
	Messages           []*Message
	NextPageToken      string
	ResultSizeEstimate int64
}

// MailAPI reads the messages of the authenticated user.
type MailAPI struct {
	requester Requester
	logger    *slog.Logger
	// PageSize bounds the number of messages returned by List; 0 keeps the
	// server default.
	PageSize int
}

func NewMailAPI(r Requester, logger *slog.Logger) *MailAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return &MailAPI{requester: r, logger: logging.WithService(logger, instrumentation.ServiceGmail)}
}

// WithPageSize returns a copy of the API listing n messages per page.
func (a *MailAPI) WithPageSize(n int) *MailAPI {
	c := *a
	c.PageSize = n
	return &c
}

// Get fetches and hydrates a full message.
func (a *MailAPI) Get(ctx context.Context, id string) (*Message, error) {
	return a.get(ctx, id, "full")
}

func (a *MailAPI) get(ctx context.Context, id, format string) (*Message, error) {
	var data gmailv1.Message
	req := google.Request{Query: criterion.Query{"format": format}, Operation: instrumentation.OperationGet}
	if err := a.requester.SendRequest(ctx, http.MethodGet, messagesPath+"/"+url.PathEscape(id), req, &data); err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return HydrateMessage(&data), nil
}

// List searches messages with a Gmail query such as "from:bob is:unread" and
// returns one page. Messages are fetched with their headers and snippet only;
// use Get for the bodies.
func (a *MailAPI) List(ctx context.Context, search, pageToken string) (*MessageSet, error) {
	query := criterion.Query{}
	if search != "" {
		query["q"] = search
	}
	if pageToken != "" {
		query["pageToken"] = pageToken
	}
	if a.PageSize > 0 {
		query["maxResults"] = strconv.Itoa(a.PageSize)
	}

	var page gmailv1.ListMessagesResponse
	req := google.Request{Query: query, Operation: instrumentation.OperationList}
	if err := a.requester.SendRequest(ctx, http.MethodGet, messagesPath, req, &page); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	set := &MessageSet{
		Messages:           make([]*Message, 0, len(page.Messages)),
		NextPageToken:      page.NextPageToken,
		ResultSizeEstimate: page.ResultSizeEstimate,
	}
	for _, ref := range page.Messages {
		if ref == nil || ref.Id == "" {
			continue
		}
		m, err := a.get(ctx, ref.Id, "metadata")
		if err != nil {
			return nil, err
		}
		set.Messages = append(set.Messages, m)
	}

	a.logger.DebugContext(ctx, "messages listed",
		logging.Operation("messages.list"),
		slog.Int("count", len(set.Messages)),
		slog.Bool("has_next", set.NextPageToken != ""))

	return set, nil
}

// Attachment downloads the content of an attachment.
func (a *MailAPI) Attachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if messageID == "" || attachmentID == "" {
		return nil, errors.New("message id and attachment id are required")
	}

	var body gmailv1.MessagePartBody
	path := messagesPath + "/" + url.PathEscape(messageID) + "/attachments/" + url.PathEscape(attachmentID)
	req := google.Request{Operation: instrumentation.OperationGet}
	if err := a.requester.SendRequest(ctx, http.MethodGet, path, req, &body); err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", attachmentID, err)
	}

	if body.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", body.Size, MaxAttachmentSize)
	}

	data, err := decodeBase64(body.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment data: %w", err)
	}
	return data, nil
}
