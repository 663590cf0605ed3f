package dump

import "context"

// Sink stores raw messages that no extractor produced records for, keyed
// "{senderDomain}-{messageID}.eml" so dumps are inspectable by vendor and
// idempotent across re-runs.
type Sink interface {
	Put(ctx context.Context, key string, raw []byte) error
}

// Key builds the canonical dump key for a message.
func Key(senderDomain, messageID string) string {
	return senderDomain + "-" + messageID + ".eml"
}
