// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

type (
	// HTTPOptions configures the HTTP fetcher.
	HTTPOptions struct {
		// Timeout bounds each request.
		Timeout time.Duration

		// InsecureSkipVerify disables TLS certificate verification.
		// Only for development against self-signed registries.
		InsecureSkipVerify bool

		// Headers are added to every request (auth tokens and the like).
		Headers map[string]string
	}

	// HTTPFetcher loads modules over HTTP(S). Fetched bodies are kept
	// per location so that a Describe followed by a Fetch costs one
	// round trip.
	HTTPFetcher struct {
		client       *http.Client
		options      HTTPOptions
		materializer Materializer

		mu     sync.Mutex
		bodies map[string][]byte
	}
)

// DefaultHTTPOptions returns the options used by Default.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{Timeout: 30 * time.Second}
}

// NewHTTPFetcher creates an HTTP fetcher. The materializer may be nil,
// in which case Probe and Describe work but Fetch fails with
// ErrNoMaterializer.
func NewHTTPFetcher(options HTTPOptions, m Materializer) *HTTPFetcher {
	transport := http.DefaultTransport
	if options.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
		}
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   options.Timeout,
			Transport: transport,
		},
		options:      options,
		materializer: m,
		bodies:       make(map[string][]byte),
	}
}

// Probe implements Fetcher with a HEAD request, falling back to GET
// for servers that reject HEAD.
func (f *HTTPFetcher) Probe(ctx context.Context, location string) error {
	resp, err := f.do(ctx, http.MethodHead, location)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		_, err := f.get(ctx, location)
		return err
	}
	return f.statusError(location, resp.StatusCode)
}

// Describe implements Fetcher.
func (f *HTTPFetcher) Describe(ctx context.Context, location string) (*Metadata, error) {
	src, err := f.get(ctx, location)
	if err != nil {
		return nil, err
	}
	meta, err := ParseHeader(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return &meta, nil
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, location string) (*RawModule, error) {
	src, err := f.get(ctx, location)
	if err != nil {
		return nil, err
	}
	meta, err := ParseHeader(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	if f.materializer == nil {
		return nil, fmt.Errorf("%w: cannot load %s", ErrNoMaterializer, location)
	}
	mod, err := f.materializer.Materialize(ctx, meta, src)
	if err != nil {
		return nil, fmt.Errorf("materializing %s: %w", location, err)
	}
	if err := mod.Validate(); err != nil {
		return nil, err
	}
	return mod, nil
}

// get returns the body for a location, fetching it at most once.
func (f *HTTPFetcher) get(ctx context.Context, location string) ([]byte, error) {
	f.mu.Lock()
	if body, ok := f.bodies[location]; ok {
		f.mu.Unlock()
		return body, nil
	}
	f.mu.Unlock()

	resp, err := f.do(ctx, http.MethodGet, location)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := f.statusError(location, resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: location, Err: err}
	}

	f.mu.Lock()
	f.bodies[location] = body
	f.mu.Unlock()
	return body, nil
}

func (f *HTTPFetcher) do(ctx context.Context, method, location string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, location, nil)
	if err != nil {
		return nil, &NetworkError{URL: location, Err: err}
	}
	for k, v := range f.options.Headers {
		req.Header.Set(k, v)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: location, Err: err}
	}
	return resp, nil
}

func (f *HTTPFetcher) statusError(location string, status int) error {
	switch {
	case status == http.StatusNotFound, status == http.StatusGone:
		return fmt.Errorf("%w: %s", ErrNotFound, location)
	case status >= 400:
		return &NetworkError{URL: location, Status: status}
	default:
		return nil
	}
}
