package extract

import (
	"strings"

	"github.com/dariusmp/inboxledger/internal/email"
)

// newTestEmail builds a content view from header values and a plain text
// body, the way vendor fixtures are written in these tests.
func newTestEmail(from, subject, body string) *email.Content {
	raw := "From: " + from + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		strings.ReplaceAll(body, "\n", "\r\n")
	return email.New([]byte(raw))
}
