package storage

import "context"

// ObjectStore is the durable storage collaborator. Put is safe for
// concurrent use with distinct keys. A repeated key overwrites the prior
// content; there is no secondary versioning at this layer.
type ObjectStore interface {
	// Put writes data under key and returns a locator describing where the
	// bytes landed (an s3:// URL or an absolute file path).
	Put(ctx context.Context, key string, data []byte) (locator string, err error)
	Close() error
}
