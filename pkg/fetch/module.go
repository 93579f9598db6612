// SPDX-License-Identifier: MPL-2.0

// Package fetch defines the boundary between the module loader and the
// byte-fetching transport: the Fetcher interface, the raw module shape
// it produces, and reference implementations for disk, HTTP, and
// in-memory sources. Materializing callables out of fetched source is
// the evaluator's job and is injected via the Materializer interface.
package fetch

import (
	"context"
	"fmt"
)

type (
	// Callable is an exported script function or operation.
	Callable func(ctx context.Context, args ...any) (any, error)

	// Handler services command lines routed to a command target.
	Handler func(ctx context.Context, line string) (any, error)

	// ModuleKind is the closed classification of what a module
	// provides. It is decided once, when metadata is read, and never
	// re-derived from the export maps afterwards.
	ModuleKind int

	// Metadata is a module's declared description, readable without
	// materializing the module body.
	Metadata struct {
		// Name is the module's self-declared name.
		Name string `json:"name"`

		// Version is the module's self-declared version.
		Version string `json:"version"`

		// Dependencies lists raw specifiers this module requires
		// before it can load.
		Dependencies []string `json:"dependencies"`

		// Kind declares what the module provides. The JSON values are
		// "library" (default), "command-target", and "combined".
		Kind ModuleKind `json:"kind"`
	}

	// RawModule is one fetched, materialized module instance. Every
	// Fetch call produces a fresh instance so that the same artifact
	// loaded under different aliases carries independent state.
	RawModule struct {
		Metadata

		// Functions maps exported function names to callables.
		Functions map[string]Callable

		// Operations maps exported operation names to callables.
		Operations map[string]Callable

		// Handler is the command handler for command-target modules,
		// nil for plain libraries.
		Handler Handler
	}
)

const (
	// KindLibrary modules export only functions and operations.
	KindLibrary ModuleKind = iota
	// KindCommandTarget modules export a single command handler.
	KindCommandTarget
	// KindCombined modules export both a handler and functions.
	KindCombined
)

// String returns the metadata wire name of the kind.
func (k ModuleKind) String() string {
	switch k {
	case KindCommandTarget:
		return "command-target"
	case KindCombined:
		return "combined"
	default:
		return "library"
	}
}

// IsCommandTarget reports whether the module routes command lines.
func (k ModuleKind) IsCommandTarget() bool {
	return k == KindCommandTarget || k == KindCombined
}

// UnmarshalJSON accepts the declared kind names; anything else is
// rejected so a typo cannot silently demote a command target.
func (k *ModuleKind) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"library"`, `""`:
		*k = KindLibrary
	case `"command-target"`:
		*k = KindCommandTarget
	case `"combined"`:
		*k = KindCombined
	default:
		return fmt.Errorf("unknown module kind %s", data)
	}
	return nil
}

// MarshalJSON emits the declared kind name.
func (k ModuleKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Validate checks internal consistency between the declared kind and
// the materialized exports.
func (m *RawModule) Validate() error {
	if m.Kind.IsCommandTarget() && m.Handler == nil {
		return fmt.Errorf("module %q declares kind %s but has no handler", m.Name, m.Kind)
	}
	if !m.Kind.IsCommandTarget() && m.Handler != nil {
		return fmt.Errorf("module %q declares kind %s but carries a handler", m.Name, m.Kind)
	}
	return nil
}
