// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/oriolang/modload/pkg/fetch"
	"github.com/oriolang/modload/pkg/hostenv"
	"github.com/oriolang/modload/pkg/specifier"
)

// buildTestGraph resolves raw over a static fetcher keyed by absolute
// paths, using a native profile and an allow-all policy.
func buildTestGraph(t *testing.T, st *fetch.StaticFetcher, raw string) (*DependencyGraph, error) {
	t.Helper()

	r := newTestResolver(t, ResolverOptions{
		Profile: hostenv.ProfileFor(hostenv.KindNative),
		Prober:  st,
	})

	spec := mustParse(t, raw)
	alias := specifier.AliasSpec{Kind: specifier.KindNone}
	return buildGraph(context.Background(), r, st, quietLogger(), spec, alias, RequestContext{})
}

func orderIndex(t *testing.T, order []RecordKey, location string) int {
	t.Helper()
	for i, key := range order {
		if key.Location == location {
			return i
		}
	}
	t.Fatalf("location %q not in load order %v", location, order)
	return -1
}

func TestBuildGraphChain(t *testing.T) {
	t.Parallel()

	st := fetch.NewStaticFetcher()
	st.Register("/lib/a.js", libModule("a", "/lib/b.js"))
	st.Register("/lib/b.js", libModule("b", "/lib/c.js"))
	st.Register("/lib/c.js", libModule("c"))

	g, err := buildTestGraph(t, st, "/lib/a.js")
	if err != nil {
		t.Fatalf("buildGraph: %v", err)
	}

	if g.Len() != 3 {
		t.Fatalf("graph has %d nodes, want 3", g.Len())
	}
	order := g.LoadOrder()
	if len(order) != 3 {
		t.Fatalf("load order has %d entries, want 3", len(order))
	}
	a := orderIndex(t, order, "/lib/a.js")
	b := orderIndex(t, order, "/lib/b.js")
	c := orderIndex(t, order, "/lib/c.js")
	if !(c < b && b < a) {
		t.Errorf("load order %v does not place dependencies first", order)
	}
	if g.Root().Key.Location != "/lib/a.js" {
		t.Errorf("root = %q, want /lib/a.js", g.Root().Key.Location)
	}
}

func TestBuildGraphDiamond(t *testing.T) {
	t.Parallel()

	st := fetch.NewStaticFetcher()
	st.Register("/lib/a.js", libModule("a", "/lib/b.js", "/lib/c.js"))
	st.Register("/lib/b.js", libModule("b", "/lib/d.js"))
	st.Register("/lib/c.js", libModule("c", "/lib/d.js"))
	st.Register("/lib/d.js", libModule("d"))

	g, err := buildTestGraph(t, st, "/lib/a.js")
	if err != nil {
		t.Fatalf("buildGraph: %v", err)
	}

	// The shared dependency appears exactly once.
	if g.Len() != 4 {
		t.Fatalf("graph has %d nodes, want 4", g.Len())
	}
	order := g.LoadOrder()
	d := orderIndex(t, order, "/lib/d.js")
	b := orderIndex(t, order, "/lib/b.js")
	c := orderIndex(t, order, "/lib/c.js")
	a := orderIndex(t, order, "/lib/a.js")
	if !(d < b && d < c && b < a && c < a) {
		t.Errorf("load order %v violates dependency order", order)
	}
}

func TestBuildGraphCycle(t *testing.T) {
	t.Parallel()

	st := fetch.NewStaticFetcher()
	st.Register("/lib/a.js", libModule("a", "/lib/b.js"))
	st.Register("/lib/b.js", libModule("b", "/lib/c.js"))
	st.Register("/lib/c.js", libModule("c", "/lib/a.js"))

	_, err := buildTestGraph(t, st, "/lib/a.js")
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("want CycleError, got %v", err)
	}

	want := []string{"/lib/a.js", "/lib/b.js", "/lib/c.js", "/lib/a.js"}
	if !slices.Equal(cycle.Path, want) {
		t.Errorf("cycle path = %v, want %v", cycle.Path, want)
	}
	if cycle.Raw != "/lib/a.js" {
		t.Errorf("cycle root = %q, want /lib/a.js", cycle.Raw)
	}
}

func TestBuildGraphSelfCycle(t *testing.T) {
	t.Parallel()

	st := fetch.NewStaticFetcher()
	st.Register("/lib/a.js", libModule("a", "/lib/a.js"))

	_, err := buildTestGraph(t, st, "/lib/a.js")
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("want CycleError, got %v", err)
	}
	want := []string{"/lib/a.js", "/lib/a.js"}
	if !slices.Equal(cycle.Path, want) {
		t.Errorf("cycle path = %v, want %v", cycle.Path, want)
	}
}

func TestBuildGraphMissingDependency(t *testing.T) {
	t.Parallel()

	st := fetch.NewStaticFetcher()
	st.Register("/lib/a.js", libModule("a", "/lib/gone.js"))

	_, err := buildTestGraph(t, st, "/lib/a.js")
	if err == nil {
		t.Fatal("want error for missing dependency")
	}
	if !errors.Is(err, fetch.ErrNotFound) {
		t.Errorf("want ErrNotFound in chain, got %v", err)
	}
}

func TestBuildGraphTransitiveDepsUnaliased(t *testing.T) {
	t.Parallel()

	st := fetch.NewStaticFetcher()
	st.Register("/lib/a.js", libModule("a", "/lib/b.js"))
	st.Register("/lib/b.js", libModule("b"))

	r := newTestResolver(t, ResolverOptions{
		Profile: hostenv.ProfileFor(hostenv.KindNative),
		Prober:  st,
	})
	alias, err := specifier.ParseAlias("math")
	if err != nil {
		t.Fatal(err)
	}

	g, err := buildGraph(context.Background(), r, st, quietLogger(),
		mustParse(t, "/lib/a.js"), alias, RequestContext{})
	if err != nil {
		t.Fatalf("buildGraph: %v", err)
	}

	if got := g.Root().Key.AliasKey; got != "prefix:math_" {
		t.Errorf("root alias key = %q, want prefix:math_", got)
	}
	dep := g.Node(RecordKey{Location: "/lib/b.js"})
	if dep == nil {
		t.Fatal("dependency not keyed with empty alias")
	}
	if !dep.Alias.IsZero() {
		t.Errorf("dependency alias = %v, want none", dep.Alias)
	}
}
