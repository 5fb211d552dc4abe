package attachments

import (
	"context"
	"io"
	"time"
)

// BlobStore defines how attachment content reaches the binary storage. The
// content type travels with Put for stores that serve files directly; reads
// resolve the content type from the Attachment record instead.
type BlobStore interface {
	// Put writes the content under the given key
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// Open returns a ReadCloser streaming the content back
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Remove deletes the content; removing a missing key is not an error
	Remove(ctx context.Context, key string) error

	// PublicURL returns a public-facing URL for the key
	PublicURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
