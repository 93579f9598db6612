// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"fmt"
	"os"
)

// DiskFetcher loads modules from absolute filesystem paths.
type DiskFetcher struct {
	materializer Materializer
}

// NewDiskFetcher creates a filesystem fetcher. The materializer may be
// nil, in which case Probe and Describe work but Fetch fails with
// ErrNoMaterializer.
func NewDiskFetcher(m Materializer) *DiskFetcher {
	return &DiskFetcher{materializer: m}
}

// Probe implements Fetcher via os.Stat.
func (f *DiskFetcher) Probe(_ context.Context, location string) error {
	info, err := os.Stat(location)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, location)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotFound, location)
	}
	return nil
}

// Describe implements Fetcher by reading the file and parsing its
// metadata header.
func (f *DiskFetcher) Describe(ctx context.Context, location string) (*Metadata, error) {
	src, err := f.read(ctx, location)
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
func (f *DiskFetcher) Fetch(ctx context.Context, location string) (*RawModule, error) {
	src, err := f.read(ctx, location)
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

func (f *DiskFetcher) read(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}
		return nil, err
	}
	return src, nil
}
