// Package content fetches off-chain certificate metadata from a token URI.
package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/certchain/go-certregistry-sdk/certificate"
)

// DefaultTimeout bounds a single metadata fetch.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps a metadata document; anything larger is not a
// certificate payload.
const maxBodyBytes = 4 << 20

// Fetcher is a single-shot HTTP fetcher for metadata documents. It performs
// exactly one request per call; retry policy belongs to the caller. Safe for
// concurrent use.
type Fetcher struct {
	client *http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient substitutes the underlying HTTP client, e.g. for an
// IPFS-gateway-specific transport.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a fetcher with a sensible default timeout and an
// instrumented transport.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs one GET against uri and returns the response body. Any
// non-2xx status, transport failure or timeout fails with
// certificate.ErrContentUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: token URI is empty", certificate.ErrContentUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token URI %q: %v", certificate.ErrContentUnavailable, uri, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch metadata from %s: %v", certificate.ErrContentUnavailable, uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: metadata endpoint %s returned %s", certificate.ErrContentUnavailable, uri, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read metadata body from %s: %v", certificate.ErrContentUnavailable, uri, err)
	}
	return body, nil
}
