// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"fmt"
	"sync"
)

// StaticFetcher serves modules from an in-memory table. Embedders use
// it for builtin bundles shipped inside the host binary; tests use it
// as the fetcher double. Each entry is a constructor so that every
// Fetch yields an independent instance.
type StaticFetcher struct {
	mu      sync.RWMutex
	modules map[string]func() *RawModule
}

// NewStaticFetcher creates an empty static fetcher.
func NewStaticFetcher() *StaticFetcher {
	return &StaticFetcher{modules: make(map[string]func() *RawModule)}
}

// Register binds a location to a module constructor. The constructor
// runs once per Fetch.
func (f *StaticFetcher) Register(location string, build func() *RawModule) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modules[location] = build
}

// Probe implements Fetcher.
func (f *StaticFetcher) Probe(_ context.Context, location string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if _, ok := f.modules[location]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	return nil
}

// Describe implements Fetcher. The constructor runs to expose the
// declared metadata; the built instance is discarded.
func (f *StaticFetcher) Describe(_ context.Context, location string) (*Metadata, error) {
	f.mu.RLock()
	build, ok := f.modules[location]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	meta := build().Metadata
	return &meta, nil
}

// Fetch implements Fetcher.
func (f *StaticFetcher) Fetch(_ context.Context, location string) (*RawModule, error) {
	f.mu.RLock()
	build, ok := f.modules[location]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	mod := build()
	if err := mod.Validate(); err != nil {
		return nil, err
	}
	return mod, nil
}
