package gmail

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/teemow/calendart/internal/google"
)

// Header is a single message header.
type Header struct {
	Name  string
	Value string
}

// Message is a Gmail message.
type Message struct {
	ID       string
	ThreadID string
	LabelIDs []string
	// Preview is the snippet Gmail computed from the body.
	Preview  string
	SentDate time.Time
	Subject  string
	Sender   *google.User
	TextBody string
	HTMLBody string

	headers     []Header
	attachments []Attachment
}

// Header returns the value of the named header, compared case-insensitively.
// When a header is repeated the last occurrence wins.
func (m *Message) Header(name string) (string, bool) {
	value, found := "", false
	for _, h := range m.headers {
		if strings.EqualFold(h.Name, name) {
			value, found = h.Value, true
		}
	}
	return value, found
}

// Headers returns all headers in message order.
func (m *Message) Headers() []Header {
	return append([]Header(nil), m.headers...)
}

// Attachments lists the parts carrying a file.
func (m *Message) Attachments() []Attachment {
	return append([]Attachment(nil), m.attachments...)
}

// HydrateMessage builds a message from its API representation. Bodies that
// cannot be decoded are left empty.
func HydrateMessage(data *gmailv1.Message) *Message {
	m := &Message{
		ID:       data.Id,
		ThreadID: data.ThreadId,
		LabelIDs: data.LabelIds,
		Preview:  data.Snippet,
	}
	if data.InternalDate != 0 {
		m.SentDate = time.UnixMilli(data.InternalDate)
	}

	payload := data.Payload
	if payload == nil {
		return m
	}

	for _, h := range payload.Headers {
		if h != nil {
			m.headers = append(m.headers, Header{Name: h.Name, Value: h.Value})
		}
	}

	m.Subject, _ = m.Header("Subject")
	if from, ok := m.Header("From"); ok {
		m.Sender = parseSender(from)
	}

	m.TextBody, m.HTMLBody = bodies(payload)
	m.attachments = attachmentsOf(data.Id, payload)

	return m
}

// senderPattern matches `Name <email>` values that net/mail rejects, such as
// unquoted names with special characters.
var senderPattern = regexp.MustCompile(`^\s*(.*[^\s])\s*<\s*(.*[^\s])\s*>`)

func parseSender(value string) *google.User {
	if addr, err := mail.ParseAddress(value); err == nil {
		return google.NewUser(addr.Name, addr.Address)
	}

	if m := senderPattern.FindStringSubmatch(value); m != nil {
		return google.NewUser(strings.Trim(m[1], `"`), m[2])
	}

	return google.NewUser("", strings.TrimSpace(value))
}
