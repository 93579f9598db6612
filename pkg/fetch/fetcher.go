// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means the canonical location does not exist.
	ErrNotFound = errors.New("module not found")

	// ErrNoMaterializer means a module body was fetched but no
	// Materializer was configured to turn it into callables.
	ErrNoMaterializer = errors.New("no materializer configured")
)

type (
	// Fetcher turns a canonical location into module metadata and,
	// eventually, a materialized module. Implementations must return a
	// fresh RawModule from every Fetch call.
	Fetcher interface {
		// Probe cheaply checks that the location is fetchable. The
		// resolver uses it to fall through a specifier preference list.
		Probe(ctx context.Context, location string) error

		// Describe reads the module's declared metadata without
		// materializing its body.
		Describe(ctx context.Context, location string) (*Metadata, error)

		// Fetch retrieves and materializes the module.
		Fetch(ctx context.Context, location string) (*RawModule, error)
	}

	// Materializer turns fetched source into a live module. It is
	// implemented by the script evaluator, outside this subsystem.
	Materializer interface {
		Materialize(ctx context.Context, meta Metadata, src []byte) (*RawModule, error)
	}

	// NetworkError wraps a transport failure with the location and,
	// when available, the HTTP status.
	NetworkError struct {
		URL    string
		Status int
		Err    error
	}

	// Router dispatches locations to a transport-specific fetcher:
	// http(s) URLs to one, filesystem paths to the other.
	Router struct {
		disk Fetcher
		http Fetcher
	}
)

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying transport error.
func (e *NetworkError) Unwrap() error { return e.Err }

// NewRouter builds a Router over the given transports.
func NewRouter(disk, http Fetcher) *Router {
	return &Router{disk: disk, http: http}
}

// Default returns a Router over a DiskFetcher and an HTTPFetcher with
// default options, both materializing through m.
func Default(m Materializer) *Router {
	return NewRouter(NewDiskFetcher(m), NewHTTPFetcher(DefaultHTTPOptions(), m))
}

func (r *Router) pick(location string) Fetcher {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return r.http
	}
	return r.disk
}

// Probe implements Fetcher.
func (r *Router) Probe(ctx context.Context, location string) error {
	return r.pick(location).Probe(ctx, location)
}

// Describe implements Fetcher.
func (r *Router) Describe(ctx context.Context, location string) (*Metadata, error) {
	return r.pick(location).Describe(ctx, location)
}

// Fetch implements Fetcher.
func (r *Router) Fetch(ctx context.Context, location string) (*RawModule, error) {
	return r.pick(location).Fetch(ctx, location)
}
