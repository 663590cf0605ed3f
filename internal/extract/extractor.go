package extract

import (
	"fmt"

	"github.com/dariusmp/inboxledger/internal/email"
	"github.com/dariusmp/inboxledger/internal/ledger"
)

// Extractor recognizes and parses one vendor's email template. Instances
// are stateless and registered once at startup; they are freely shared
// across concurrent message-processing goroutines.
type Extractor interface {
	// Name identifies the extractor in logs.
	Name() string

	// Match reports whether this handler applies to a message, judging only
	// the title and sender address. It must be pure, cheap and must never
	// panic; a non-match is false, never an error.
	Match(title, sender string) bool

	// Extract produces zero or more records from a content view already
	// known to match. A body that violates the extractor's own template
	// assumptions yields an *ExtractionError, which the registry treats as
	// recoverable.
	Extract(c *email.Content) ([]*ledger.Record, error)
}

// ExtractionError reports that a matched email's body violated the
// extractor's template assumptions, e.g. an expected field was absent.
// Recoverable at the registry level, not fatal to the run.
type ExtractionError struct {
	Extractor string
	Reason    string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Extractor, e.Reason)
}

func extractionErrf(extractor, format string, args ...interface{}) error {
	return &ExtractionError{Extractor: extractor, Reason: fmt.Sprintf(format, args...)}
}

// UnknownTransactionType is the sentinel description on the fallback record
// emitted when a matched email fits none of an extractor's sub-formats.
const UnknownTransactionType = "Unknown transaction type"

// subHandler is one exclusive sub-format of a multi-format vendor. The
// first handler whose predicate is true wins; at most one fires per
// extract call.
type subHandler struct {
	when func(body string) bool
	run  func(body string) ([]*ledger.Record, error)
}

// runSubHandlers dispatches the body to the first matching sub-handler. If
// none matches it returns the fallback record rather than dropping the
// email.
func runSubHandlers(body string, subs []subHandler, fallback func() *ledger.Record) ([]*ledger.Record, error) {
	for _, sub := range subs {
		if sub.when(body) {
			return sub.run(body)
		}
	}
	rec := fallback()
	rec.SetDescription(UnknownTransactionType)
	return []*ledger.Record{rec}, nil
}
