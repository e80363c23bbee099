// Package gcs implements the blob-storage collaborator: uploaded statement
// files live in a Cloud Storage bucket and are fetched through short-lived
// signed URLs.
package gcs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
)

// Client resolves download URLs for uploaded statement files and fetches
// their bytes.
type Client struct {
	client *storage.Client
	bucket string
	http   *http.Client
}

// NewClient creates a storage client for the given bucket. It assumes
// Application Default Credentials are configured.
func NewClient(ctx context.Context, bucket string) (*Client, error) {
	c, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Client{
		client: c,
		bucket: bucket,
		http:   &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// Close releases the underlying storage client.
func (c *Client) Close() error {
	return c.client.Close()
}

// DownloadURL returns a V4 signed GET URL for the given object path.
func (c *Client) DownloadURL(ctx context.Context, objectPath string) (string, error) {
	opts := &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: time.Now().Add(15 * time.Minute),
		Scheme:  storage.SigningSchemeV4,
	}

	url, err := c.client.Bucket(c.bucket).SignedURL(objectPath, opts)
	if err != nil {
		return "", fmt.Errorf("sign download URL for %q: %w", objectPath, err)
	}
	return url, nil
}

// FetchBytes downloads the content behind a previously resolved URL.
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch statement file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch statement file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read statement file: %w", err)
	}
	return data, nil
}
