// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestLoadOrder_EmptyGraph(t *testing.T) {
	t.Parallel()
	g := New()
	order, err := g.LoadOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestLoadOrder_SingleModule(t *testing.T) {
	t.Parallel()
	g := New()
	g.Add("A")
	order, err := g.LoadOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"A"}) {
		t.Errorf("expected [A], got %v", order)
	}
}

func TestLoadOrder_Chain(t *testing.T) {
	t.Parallel()
	g := New()
	// A requires B, B requires C: C loads first.
	g.Depend("A", "B")
	g.Depend("B", "C")

	order, err := g.LoadOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"C", "B", "A"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestLoadOrder_Diamond(t *testing.T) {
	t.Parallel()
	g := New()
	// A requires B and C; both require D. D appears once, before B and
	// C, and before A.
	g.Depend("A", "B")
	g.Depend("A", "C")
	g.Depend("B", "D")
	g.Depend("C", "D")

	order, err := g.LoadOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 4 {
		t.Fatalf("expected 4 modules, got %d: %v", len(order), order)
	}

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	if pos["D"] > pos["B"] || pos["D"] > pos["C"] {
		t.Errorf("D must load before B and C: %v", order)
	}
	if pos["A"] != len(order)-1 {
		t.Errorf("A must load last: %v", order)
	}
}

func TestLoadOrder_Deterministic(t *testing.T) {
	t.Parallel()

	build := func() *Graph {
		g := New()
		g.Depend("A", "B")
		g.Depend("A", "C")
		g.Depend("A", "D")
		return g
	}

	first, err := build().LoadOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 10 {
		next, err := build().LoadOrder()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(first, next) {
			t.Fatalf("order is not deterministic: %v vs %v", first, next)
		}
	}
}

func TestLoadOrder_Cycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.Depend("A", "B")
	g.Depend("B", "C")
	g.Depend("C", "A")

	_, err := g.LoadOrder()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if len(cycleErr.Nodes) == 0 {
		t.Error("cycle error should name the stuck modules")
	}
}

func TestLoadOrder_SelfDependency(t *testing.T) {
	t.Parallel()
	g := New()
	g.Depend("A", "A")

	_, err := g.LoadOrder()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
}
