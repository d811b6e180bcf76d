// internal/mailbox/parse.go
package mailbox

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"
)

// ParsedReply is the extract of one raw inbound message that the pipeline
// cares about.
type ParsedReply struct {
	Text       string
	MessageID  string
	References []string
	InReplyTo  []string
}

// ThreadToken returns the identifier that ties this reply to a conversation:
// the root of the References chain when present, otherwise the message's own
// id, otherwise the In-Reply-To target. Empty when the message carries none.
func (p *ParsedReply) ThreadToken() string {
	if len(p.References) > 0 {
		return p.References[0]
	}
	if p.MessageID != "" {
		return p.MessageID
	}
	if len(p.InReplyTo) > 0 {
		return p.InReplyTo[0]
	}
	return ""
}

// ParseReply decodes a raw RFC 5322 message, pulling out the plain-text body
// and the threading headers. HTML-only messages parse with an empty Text.
func ParseReply(raw []byte) (*ParsedReply, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	defer mr.Close()

	parsed := &ParsedReply{}
	if id, err := mr.Header.MessageID(); err == nil {
		parsed.MessageID = id
	}
	if refs, err := mr.Header.MsgIDList("References"); err == nil {
		parsed.References = refs
	}
	if irt, err := mr.Header.MsgIDList("In-Reply-To"); err == nil {
		parsed.InReplyTo = irt
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse message part: %w", err)
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil || contentType != "text/plain" {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			return nil, fmt.Errorf("read message body: %w", err)
		}
		parsed.Text = strings.TrimSpace(string(body))
		break
	}
	return parsed, nil
}
