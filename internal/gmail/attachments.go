package gmail

import (
	"mime"
	"strings"
	"unicode"

	gmailv1 "google.golang.org/api/gmail/v1"
)

// MaxAttachmentSize is the largest attachment MailAPI.Attachment downloads (25MB).
const MaxAttachmentSize = 25 * 1024 * 1024

// Attachment describes a part of a message carrying a file.
type Attachment struct {
	MessageID    string
	PartID       string
	AttachmentID string
	Filename     string
	MimeType     string
	Size         int64
	// Inline is set for parts with an inline Content-Disposition, usually
	// images referenced from the HTML body through ContentID.
	Inline    bool
	ContentID string
}

// SafeName is the sanitized file name, or a name derived from the part
// when the sender gave none.
func (a Attachment) SafeName() string {
	if name := SanitizeFilename(a.Filename); name != "" {
		return name
	}
	return "attachment-" + SanitizeFilename(a.PartID)
}

func attachmentsOf(messageID string, payload *gmailv1.MessagePart) []Attachment {
	var out []Attachment
	walkParts(payload, func(part *gmailv1.MessagePart) bool {
		if part.Body == nil || part.Body.AttachmentId == "" {
			return true
		}
		att := Attachment{
			MessageID:    messageID,
			PartID:       part.PartId,
			AttachmentID: part.Body.AttachmentId,
			Filename:     part.Filename,
			MimeType:     part.MimeType,
			Size:         part.Body.Size,
		}
		for _, h := range part.Headers {
			switch strings.ToLower(h.Name) {
			case "content-disposition":
				disposition, params, err := mime.ParseMediaType(h.Value)
				if err != nil {
					continue
				}
				att.Inline = disposition == "inline"
				if att.Filename == "" {
					att.Filename = params["filename"]
				}
			case "content-id":
				att.ContentID = strings.Trim(h.Value, "<> ")
			}
		}
		// Bodies stored out of line without a name or disposition are
		// large text parts, not files.
		if att.Filename != "" || att.Inline {
			out = append(out, att)
		}
		return true
	})
	return out
}

// SanitizeFilename makes an attachment name safe to join to a directory:
// path separators and parent references become underscores and control
// characters are dropped.
func SanitizeFilename(filename string) string {
	filename = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, filename)
	return filenameReplacer.Replace(strings.TrimSpace(filename))
}

var filenameReplacer = strings.NewReplacer("..", "_", "/", "_", "\\", "_")
