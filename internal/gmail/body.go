package gmail

import (
	"encoding/base64"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"
)

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"
)

// bodies returns the text and HTML bodies of a payload. Single part payloads
// carry their body directly; multipart payloads are searched depth first and
// the first part of each type wins.
func bodies(payload *gmailv1.MessagePart) (text, html string) {
	walkParts(payload, func(part *gmailv1.MessagePart) bool {
		if part.Filename != "" || part.Body == nil || part.Body.Data == "" {
			return true
		}

		switch mimeType(part) {
		case mimeTextPlain:
			if text == "" {
				text = decodeBody(part.Body.Data)
			}
		case mimeTextHTML:
			if html == "" {
				html = decodeBody(part.Body.Data)
			}
		}
		return text == "" || html == ""
	})
	return text, html
}

func mimeType(part *gmailv1.MessagePart) string {
	t, _, _ := strings.Cut(part.MimeType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}

// walkParts visits part and its sub-parts depth first until fn returns false.
func walkParts(part *gmailv1.MessagePart, fn func(*gmailv1.MessagePart) bool) bool {
	if part == nil {
		return true
	}
	if !fn(part) {
		return false
	}
	for _, sub := range part.Parts {
		if !walkParts(sub, fn) {
			return false
		}
	}
	return true
}

// decodeBody decodes base64url data, padded or not. Standard base64 is
// accepted as well. Undecodable data yields "".
func decodeBody(data string) string {
	b, err := decodeBase64(data)
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeBase64(data string) ([]byte, error) {
	data = strings.TrimRight(strings.TrimSpace(data), "=")
	b, err := base64.RawURLEncoding.DecodeString(data)
	if err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(data)
}
