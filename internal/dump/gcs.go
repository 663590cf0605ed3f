package dump

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCS dumps messages into a Cloud Storage bucket under a fixed prefix.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS wraps an existing storage client; the caller owns its lifecycle.
func NewGCS(client *storage.Client, bucket, prefix string) *GCS {
	return &GCS{client: client, bucket: bucket, prefix: prefix}
}

func (g *GCS) Put(ctx context.Context, key string, raw []byte) error {
	obj := g.client.Bucket(g.bucket).Object(g.prefix + key)

	w := obj.NewWriter(ctx)
	w.ContentType = "message/rfc822"
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return fmt.Errorf("Put: write gs://%s/%s%s: %w", g.bucket, g.prefix, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Put: close gs://%s/%s%s: %w", g.bucket, g.prefix, key, err)
	}
	return nil
}
