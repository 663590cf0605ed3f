package mailbox

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Gmail implements Transport over the Gmail API for the authenticated
// user's own mailbox.
type Gmail struct {
	svc      *gmail.Service
	query    string
	pageSize int64
}

// NewGmail builds a Gmail transport. opts must carry already-authorized
// credentials (credential acquisition is the caller's problem). query is a
// Gmail search expression narrowing the listing, "" for everything.
func NewGmail(ctx context.Context, query string, pageSize int64, opts ...option.ClientOption) (*Gmail, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGmail: create gmail service: %w", err)
	}
	return &Gmail{svc: svc, query: query, pageSize: pageSize}, nil
}

func (g *Gmail) ListMessages(ctx context.Context, pageToken string) ([]string, string, error) {
	call := g.svc.Users.Messages.List("me").
		MaxResults(g.pageSize).
		Context(ctx)
	if g.query != "" {
		call = call.Q(g.query)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("ListMessages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, resp.NextPageToken, nil
}

func (g *Gmail) GetMetadata(ctx context.Context, id string) (Metadata, error) {
	msg, err := g.svc.Users.Messages.Get("me", id).
		Format("metadata").
		MetadataHeaders("Subject", "From").
		Context(ctx).
		Do()
	if err != nil {
		return Metadata{}, fmt.Errorf("GetMetadata: message %s: %w", id, err)
	}

	md := Metadata{ID: id}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "Subject":
				md.Subject = h.Value
			case "From":
				md.Sender = h.Value
			}
		}
	}
	return md, nil
}

func (g *Gmail) GetRaw(ctx context.Context, id string) ([]byte, error) {
	msg, err := g.svc.Users.Messages.Get("me", id).
		Format("raw").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("GetRaw: message %s: %w", id, err)
	}

	raw, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(msg.Raw)
	if err != nil {
		return nil, fmt.Errorf("GetRaw: decode message %s: %w", id, err)
	}
	return raw, nil
}
