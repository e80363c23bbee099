package pipeline

import "context"

// BlobStore resolves download URLs for uploaded statement files and fetches
// their bytes. Implemented by the gcs package; mocked in tests.
type BlobStore interface {
	DownloadURL(ctx context.Context, objectPath string) (string, error)
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// CategoryResolver assigns a category label to one parsed transaction.
type CategoryResolver interface {
	Resolve(ctx context.Context, userID, comment, statementRecord string) (string, error)
}
