package mailbox

import (
	"context"
	"errors"

	"google.golang.org/api/googleapi"
)

// ErrRateLimited marks a throttled mailbox call. The orchestrator retries
// these with jittered backoff; any other transport error is fatal to the
// run.
var ErrRateLimited = errors.New("mailbox: rate limited")

// Metadata is the cheap per-message projection used for pre-filtering,
// fetched without downloading the body.
type Metadata struct {
	ID      string
	Subject string
	Sender  string
}

// Transport abstracts the mailbox provider so the orchestrator can be
// driven by stubs in tests.
type Transport interface {
	// ListMessages returns one page of message IDs, newest first, plus the
	// token for the next page ("" when exhausted).
	ListMessages(ctx context.Context, pageToken string) (ids []string, nextPage string, err error)

	// GetMetadata fetches subject and sender headers for one message.
	GetMetadata(ctx context.Context, id string) (Metadata, error)

	// GetRaw fetches the full RFC 822 bytes of one message.
	GetRaw(ctx context.Context, id string) ([]byte, error)
}

// IsRateLimited reports whether err is a throttling response, either the
// stub sentinel or an HTTP 429 from the provider.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 429
}
