package email

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
	"sync"

	"github.com/jaytaylor/html2text"
)

// ErrEmptyBody is returned when a message has no retrievable body part.
var ErrEmptyBody = errors.New("email: message has no body")

const (
	// UnknownSubject is the title sentinel for messages without a Subject
	// header.
	UnknownSubject = "Unknown Subject"
	// UnknownSender is the sender sentinel for messages without a parsable
	// From header.
	UnknownSender = "unknown@unknown.invalid"
)

// Content wraps one raw email message and presents it under three
// projections: plaintext, HTML and tabular. Headers are parsed once at
// construction; the projections are derived lazily on first access and
// cached for the lifetime of the object. A Content is built per message,
// used for one registry pass and then discarded.
type Content struct {
	title  string
	sender string

	bodyText string // decoded text/plain part, if any
	bodyHTML string // decoded text/html part, if any

	plainOnce sync.Once
	plaintext string

	tablesOnce sync.Once
	tables     []tableData
	tablesErr  error
}

// New parses raw RFC 822 bytes into a Content. It never fails: unparsable
// headers fall back to sentinels and an unparsable body is treated as plain
// text.
func New(raw []byte) *Content {
	c := &Content{
		title:  UnknownSubject,
		sender: UnknownSender,
	}

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		// Not a well-formed message; keep the raw bytes as the text body so
		// extractors still get a chance.
		c.bodyText = string(raw)
		return c
	}

	if subject := msg.Header.Get("Subject"); subject != "" {
		c.title = decodeHeader(subject)
	}
	if from := msg.Header.Get("From"); from != "" {
		if addr, err := mail.ParseAddress(from); err == nil {
			c.sender = addr.Address
		} else {
			c.sender = from
		}
	}

	c.bodyText, c.bodyHTML = readBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	return c
}

// Title returns the decoded Subject header, or UnknownSubject.
func (c *Content) Title() string { return c.title }

// SenderAddress returns the address part of the From header, or
// UnknownSender.
func (c *Content) SenderAddress() string { return c.sender }

// Plaintext returns the message body as plain text. HTML bodies are
// converted with links, images, tables and emphasis stripped; this is a
// deliberately lossy projection and table data is not expected to survive
// it. The result is computed once and cached.
func (c *Content) Plaintext() string {
	c.plainOnce.Do(func() {
		if c.bodyText != "" {
			c.plaintext = c.bodyText
			return
		}
		if c.bodyHTML == "" {
			return
		}
		text, err := html2text.FromString(c.bodyHTML, html2text.Options{OmitLinks: true, TextOnly: true})
		if err != nil {
			// Degrade to a crude tag strip rather than failing the
			// projection.
			c.plaintext = stripTags(c.bodyHTML)
			return
		}
		c.plaintext = text
	})
	return c.plaintext
}

// HTML returns the raw HTML body, or ErrEmptyBody when the message carries
// no body part at all.
func (c *Content) HTML() (string, error) {
	if c.bodyHTML != "" {
		return c.bodyHTML, nil
	}
	if c.bodyText != "" {
		return c.bodyText, nil
	}
	return "", ErrEmptyBody
}

// decodeHeader decodes RFC 2047 encoded words in a header value.
func decodeHeader(v string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(v)
	if err != nil {
		return v
	}
	return decoded
}

// readBody walks the MIME structure and returns the decoded text/plain and
// text/html parts. Multipart containers are descended recursively; the
// first part of each kind wins.
func readBody(contentType, transferEncoding string, body io.Reader) (text, htmlBody string) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return "", ""
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				return text, htmlBody
			}
			pt, ph := readBody(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			if text == "" {
				text = pt
			}
			if htmlBody == "" {
				htmlBody = ph
			}
		}
	}

	data, err := io.ReadAll(decodeTransfer(transferEncoding, body))
	if err != nil || len(data) == 0 {
		return "", ""
	}

	switch mediaType {
	case "text/html":
		return "", string(data)
	default:
		return string(data), ""
	}
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	default:
		return r
	}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, " "))
}

// AddressDomain returns the domain of an email address, or "unknown" when
// the address has no @ part. Used for dump sink keys.
func AddressDomain(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "unknown"
}

// String implements fmt.Stringer for log output.
func (c *Content) String() string {
	return fmt.Sprintf("Content(title=%q, sender=%q)", c.title, c.sender)
}
