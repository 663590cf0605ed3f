package extract

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dariusmp/inboxledger/internal/email"
	"github.com/dariusmp/inboxledger/internal/ledger"
)

// Registry holds the ordered set of registered extractors and runs every
// matching one over a content view, isolating per-extractor failures.
// Registration order only affects log ordering; correctness never depends
// on it because match predicates may legitimately overlap.
type Registry struct {
	extractors []Extractor
	log        zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{log: log}
}

// Register appends an extractor. Called once per extractor at startup; the
// registry is read-only afterwards and safe for concurrent Run calls.
func (r *Registry) Register(ex Extractor) {
	r.extractors = append(r.extractors, ex)
}

// Len returns the number of registered extractors.
func (r *Registry) Len() int { return len(r.extractors) }

// Run evaluates every registered extractor against the content view and
// aggregates the records of all that match. An extraction failure is
// logged with the message context and does not stop other extractors from
// running. An empty result is the designed miss path, not an error: the
// caller routes such messages to the dump sink.
func (r *Registry) Run(c *email.Content) []*ledger.Record {
	var records []*ledger.Record
	for _, ex := range r.extractors {
		if !ex.Match(c.Title(), c.SenderAddress()) {
			continue
		}
		recs, err := r.runIsolated(ex, c)
		if err != nil {
			r.log.Warn().
				Err(err).
				Str("extractor", ex.Name()).
				Str("subject", c.Title()).
				Str("sender", c.SenderAddress()).
				Msg("Extraction failed")
			continue
		}
		records = append(records, recs...)
	}
	return records
}

// runIsolated calls Extract inside a failure boundary so a panicking
// extractor degrades to a logged failure for that message only.
func (r *Registry) runIsolated(ex Extractor, c *email.Content) (recs []*ledger.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			recs = nil
			err = fmt.Errorf("extractor panicked: %v", p)
		}
	}()
	return ex.Extract(c)
}
