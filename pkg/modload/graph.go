// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/oriolang/modload/internal/dag"
	"github.com/oriolang/modload/pkg/fetch"
	"github.com/oriolang/modload/pkg/specifier"
)

type (
	// GraphNode is one module in a resolved dependency graph. Its
	// metadata was read without materializing the module body.
	GraphNode struct {
		// Key is the record identity the node will load into.
		Key RecordKey

		// Raw is the specifier that introduced the node.
		Raw string

		// Alias is the rename clause the node loads under. Only the
		// root carries the caller's alias; transitive dependencies
		// load unaliased.
		Alias specifier.AliasSpec

		// Meta is the declared metadata.
		Meta fetch.Metadata
	}

	// DependencyGraph is the acyclic, topologically ordered result of
	// resolving a require call's transitive dependencies.
	DependencyGraph struct {
		root  RecordKey
		nodes map[RecordKey]*GraphNode
		order []RecordKey
	}

	// graphBuilder runs the depth-first resolution walk: an explicit
	// visiting set over canonical locations detects cycles with the
	// full path from the root, and a dag.Graph produces the load
	// order.
	graphBuilder struct {
		ctx      context.Context
		resolver *Resolver
		fetcher  fetch.Fetcher
		logger   *log.Logger

		rootRaw  string
		nodes    map[RecordKey]*GraphNode
		keysByID map[string]RecordKey
		order    *dag.Graph
		visiting map[string]bool
		path     []string
	}
)

// Root returns the graph's root node.
func (g *DependencyGraph) Root() *GraphNode {
	return g.nodes[g.root]
}

// Node returns the node for a record key.
func (g *DependencyGraph) Node(key RecordKey) *GraphNode {
	return g.nodes[key]
}

// Len returns the number of modules in the graph.
func (g *DependencyGraph) Len() int { return len(g.nodes) }

// LoadOrder returns record keys with every dependency strictly before
// its dependents.
func (g *DependencyGraph) LoadOrder() []RecordKey {
	return g.order
}

// buildGraph resolves the root specifier and every transitive
// dependency, without fetching any module body, and fails on the first
// cycle with the complete chain from the root.
func buildGraph(
	ctx context.Context,
	resolver *Resolver,
	fetcher fetch.Fetcher,
	logger *log.Logger,
	spec specifier.ModuleSpecifier,
	alias specifier.AliasSpec,
	req RequestContext,
) (*DependencyGraph, error) {
	b := &graphBuilder{
		ctx:      ctx,
		resolver: resolver,
		fetcher:  fetcher,
		logger:   logger,
		rootRaw:  spec.Raw,
		nodes:    make(map[RecordKey]*GraphNode),
		keysByID: make(map[string]RecordKey),
		order:    dag.New(),
		visiting: make(map[string]bool),
	}

	rootKey, err := b.visit(spec, alias, req, spec.Raw)
	if err != nil {
		return nil, err
	}

	ids, err := b.order.LoadOrder()
	if err != nil {
		// The visiting set catches cycles first; this is the backstop.
		return nil, &CycleError{Raw: spec.Raw, Path: b.path}
	}

	order := make([]RecordKey, 0, len(ids))
	for _, id := range ids {
		order = append(order, b.keysByID[id])
	}

	return &DependencyGraph{root: rootKey, nodes: b.nodes, order: order}, nil
}

// visit resolves one module and recurses into its declared
// dependencies. display is the specifier text used in cycle paths.
func (b *graphBuilder) visit(
	spec specifier.ModuleSpecifier,
	alias specifier.AliasSpec,
	req RequestContext,
	display string,
) (RecordKey, error) {
	if err := b.ctx.Err(); err != nil {
		return RecordKey{}, err
	}

	location, err := b.resolver.Resolve(b.ctx, spec, req)
	if err != nil {
		return RecordKey{}, err
	}

	if b.visiting[location] {
		cycle := append(slices.Clone(b.path), display)
		return RecordKey{}, &CycleError{Raw: b.rootRaw, Path: cycle}
	}

	key := RecordKey{Location: location, AliasKey: alias.Key()}
	if _, ok := b.nodes[key]; ok {
		return key, nil
	}

	meta, err := b.fetcher.Describe(b.ctx, location)
	if err != nil {
		return RecordKey{}, &LoadFailureError{Raw: b.rootRaw, Location: location, Err: err}
	}

	node := &GraphNode{Key: key, Raw: display, Alias: alias, Meta: *meta}
	b.nodes[key] = node
	b.keysByID[key.String()] = key
	b.order.Add(key.String())

	if len(meta.Dependencies) == 0 {
		return key, nil
	}

	b.visiting[location] = true
	b.path = append(b.path, display)
	defer func() {
		delete(b.visiting, location)
		b.path = b.path[:len(b.path)-1]
	}()

	childReq := requestContextFor(location)
	for _, depRaw := range meta.Dependencies {
		depSpec, err := specifier.ParseSpecifier(depRaw)
		if err != nil {
			return RecordKey{}, fmt.Errorf("module %s declares a bad dependency: %w", display, err)
		}

		depKey, err := b.visit(depSpec, specifier.AliasSpec{Kind: specifier.KindNone}, childReq, depRaw)
		if err != nil {
			return RecordKey{}, err
		}
		b.order.Depend(key.String(), depKey.String())
	}

	return key, nil
}

// requestContextFor derives the context a module's own dependencies
// resolve against: the module's parent directory, filesystem or URL.
func requestContextFor(location string) RequestContext {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if u, err := url.Parse(location); err == nil {
			u.Path = path.Dir(u.Path)
			return RequestContext{Dir: u.String()}
		}
		return RequestContext{Dir: location}
	}
	return RequestContext{Dir: filepath.Dir(location)}
}
