// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/oriolang/modload/pkg/fetch"
	"github.com/oriolang/modload/pkg/specifier"
)

type (
	// Loader orchestrates require calls: parse, resolve, build the
	// dependency graph, fetch and rename every module in topological
	// order, and commit the whole set atomically. A require call either
	// registers its entire subgraph or leaves the registry untouched.
	Loader struct {
		resolver *Resolver
		fetcher  fetch.Fetcher
		registry *Registry
		binder   Binder
		logger   *log.Logger

		mu       sync.Mutex
		inflight map[RecordKey]*inflightCall
	}

	// LoaderOptions configures a Loader. Resolver and Fetcher are
	// required; a nil Registry gets a fresh one, and a nil Binder means
	// exports are tracked in the registry but pushed nowhere.
	LoaderOptions struct {
		Resolver *Resolver
		Fetcher  fetch.Fetcher
		Registry *Registry
		Binder   Binder
		Logger   *log.Logger
	}

	// inflightCall serializes concurrent requires of the same record
	// key: the first caller loads, the rest wait and share the outcome.
	inflightCall struct {
		done chan struct{}
		rec  *ModuleRecord
		err  error
	}
)

// NewLoader creates a loader.
func NewLoader(opts LoaderOptions) (*Loader, error) {
	if opts.Resolver == nil {
		return nil, fmt.Errorf("loader requires a resolver")
	}
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("loader requires a fetcher")
	}

	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = defaultLogger()
	}

	return &Loader{
		resolver: opts.Resolver,
		fetcher:  opts.Fetcher,
		registry: registry,
		binder:   opts.Binder,
		logger:   logger,
		inflight: make(map[RecordKey]*inflightCall),
	}, nil
}

// Registry returns the loader's registry.
func (l *Loader) Registry() *Registry { return l.registry }

// SetRegistryBaseURL changes the package index used by the registry
// strategy for subsequent requires. Already-loaded modules keep their
// records.
func (l *Loader) SetRegistryBaseURL(base string) {
	l.resolver.SetRegistryBaseURL(base)
}

// PersistCache writes the resolver's location cache to its configured
// persist path, if any.
func (l *Loader) PersistCache() error {
	return l.resolver.PersistCache()
}

// Require loads a module by its raw specifier and optional rename
// clause, resolving relative paths against the process working
// directory. Loading the same (location, alias) pair again returns the
// existing record without re-fetching.
func (l *Loader) Require(ctx context.Context, rawArg, asArg string) (*ModuleRecord, error) {
	return l.RequireFrom(ctx, rawArg, asArg, RequestContext{})
}

// RequireFrom is Require with an explicit requesting context, used when
// the require call comes from a script whose own location is known.
func (l *Loader) RequireFrom(ctx context.Context, rawArg, asArg string, req RequestContext) (*ModuleRecord, error) {
	spec, alias, err := specifier.Parse(rawArg, asArg)
	if err != nil {
		return nil, err
	}

	location, err := l.resolver.Resolve(ctx, spec, req)
	if err != nil {
		return nil, err
	}
	key := RecordKey{Location: location, AliasKey: alias.Key()}

	if rec, ok := l.registry.Lookup(key); ok {
		l.logger.Debug("module already loaded", "key", key.String())
		return rec, nil
	}

	l.mu.Lock()
	if call, ok := l.inflight[key]; ok {
		l.mu.Unlock()
		select {
		case <-call.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return call.rec, call.err
	}
	call := &inflightCall{done: make(chan struct{})}
	l.inflight[key] = call
	l.mu.Unlock()

	rec, err := l.load(ctx, spec, alias, req)
	call.rec, call.err = rec, err

	l.mu.Lock()
	delete(l.inflight, key)
	l.mu.Unlock()
	close(call.done)

	return rec, err
}

// ResolveLocation resolves a raw specifier to its canonical fetch
// location without loading anything.
func (l *Loader) ResolveLocation(ctx context.Context, rawArg string, req RequestContext) (string, error) {
	spec, _, err := specifier.Parse(rawArg, "")
	if err != nil {
		return "", err
	}
	return l.resolver.Resolve(ctx, spec, req)
}

// Graph resolves a specifier and builds its dependency graph from
// declared metadata alone; module bodies are not fetched and the
// registry is not touched.
func (l *Loader) Graph(ctx context.Context, rawArg, asArg string, req RequestContext) (*DependencyGraph, error) {
	spec, alias, err := specifier.Parse(rawArg, asArg)
	if err != nil {
		return nil, err
	}
	return buildGraph(ctx, l.resolver, l.fetcher, l.logger, spec, alias, req)
}

// load runs the graph build, fetch, and commit pipeline for one
// require call. Any failure before commit leaves the registry exactly
// as it was.
func (l *Loader) load(
	ctx context.Context,
	spec specifier.ModuleSpecifier,
	alias specifier.AliasSpec,
	req RequestContext,
) (*ModuleRecord, error) {
	graph, err := buildGraph(ctx, l.resolver, l.fetcher, l.logger, spec, alias, req)
	if err != nil {
		return nil, err
	}

	rootKey := graph.Root().Key
	cs := &changeset{}

	for _, key := range graph.LoadOrder() {
		// Dependencies shared with earlier require calls are already
		// committed and stay as they are.
		if _, ok := l.registry.Lookup(key); ok {
			continue
		}

		node := graph.Node(key)
		rec := &ModuleRecord{
			Key:       key,
			Specifier: node.Raw,
			Meta:      node.Meta,
			State:     StateLoading,
		}

		mod, err := l.fetcher.Fetch(ctx, key.Location)
		if err != nil {
			rec.State = StateFailed
			return nil, &LoadFailureError{Raw: spec.Raw, Location: key.Location, Err: err}
		}

		exports, err := applyAlias(mod, node.Alias, node.Raw)
		if err != nil {
			rec.State = StateFailed
			return nil, err
		}

		rec.Functions = exports.functions
		rec.Operations = exports.operations
		rec.Handler = exports.handler
		rec.HandlerName = exports.handlerName

		cs.add(rec)
	}

	l.registry.commit(cs, l.binder, l.logger)
	l.logger.Info("require complete",
		"specifier", spec.Raw,
		"modules", len(cs.records),
		"location", rootKey.Location)

	// The registry record is canonical: if a concurrent require
	// committed the root first, its record is the one everybody shares.
	root, ok := l.registry.Lookup(rootKey)
	if !ok {
		// The root is always in the load order; this cannot happen.
		return nil, fmt.Errorf("root record missing after commit for %q", spec.Raw)
	}
	return root, nil
}
