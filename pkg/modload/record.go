// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"fmt"

	"github.com/oriolang/modload/pkg/fetch"
)

type (
	// LoadState tracks a record through the load pipeline.
	LoadState int

	// RecordKey is the two-axis identity of a loaded module: the same
	// canonical location loaded under different aliases yields
	// distinct records with independent state.
	RecordKey struct {
		// Location is the canonical fetch location.
		Location string
		// AliasKey is specifier.AliasSpec.Key() — "" for unaliased.
		AliasKey string
	}

	// ModuleRecord is one loaded module instance. Its export maps hold
	// the post-rename names; the original names are gone once an alias
	// applied.
	ModuleRecord struct {
		// Key is the record's identity.
		Key RecordKey

		// Specifier is the raw specifier that introduced this record.
		Specifier string

		// Meta is the module's declared metadata.
		Meta fetch.Metadata

		// Functions and Operations are the renamed exports.
		Functions  map[string]fetch.Callable
		Operations map[string]fetch.Callable

		// Handler is the command handler for command-target modules.
		Handler fetch.Handler

		// HandlerName is the name the handler registers under.
		HandlerName string

		// State is the record's position in the load pipeline.
		State LoadState
	}
)

const (
	// StatePending means the record exists in a graph but nothing has
	// been fetched yet.
	StatePending LoadState = iota
	// StateLoading means a fetch is underway.
	StateLoading
	// StateLoaded means the record is committed and visible.
	StateLoaded
	// StateFailed means a fetch or registration failed; the record was
	// never published.
	StateFailed
)

// String returns the state name.
func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// String renders the key for logs and graph node identities.
func (k RecordKey) String() string {
	if k.AliasKey == "" {
		return k.Location
	}
	return fmt.Sprintf("%s [%s]", k.Location, k.AliasKey)
}

// ExportNames returns every name this record contributes to the
// namespace, functions first, then operations, then the handler.
func (r *ModuleRecord) ExportNames() []string {
	names := make([]string, 0, len(r.Functions)+len(r.Operations)+1)
	for name := range r.Functions {
		names = append(names, name)
	}
	for name := range r.Operations {
		names = append(names, name)
	}
	if r.Handler != nil {
		names = append(names, r.HandlerName)
	}
	return names
}
