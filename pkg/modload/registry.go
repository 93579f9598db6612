// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/oriolang/modload/pkg/fetch"
)

type (
	// ExportKind classifies a namespace entry.
	ExportKind int

	// Binder is the interpreter's registration surface. It is invoked
	// only after a module's entire dependency subgraph has loaded.
	Binder interface {
		RegisterFunction(name string, fn fetch.Callable)
		RegisterOperation(name string, fn fetch.Callable)
		RegisterCommandTarget(name string, h fetch.Handler)
	}

	// NamespaceEntry records which module contributed a global name.
	NamespaceEntry struct {
		Record *ModuleRecord
		Kind   ExportKind
	}

	// Registry is the per-interpreter module cache and loaded-name
	// table. It is an explicit value injected into the Loader: two
	// interpreters in one process get two independent registries.
	// All mutation goes through staged changesets committed by the
	// Loader, so an aborted require never becomes visible.
	Registry struct {
		mu      sync.RWMutex
		records map[RecordKey]*ModuleRecord
		names   map[string]NamespaceEntry
	}

	// changeset is a require call's staged outcome: records and names
	// that become visible all at once on commit, or never.
	changeset struct {
		records []*ModuleRecord
	}
)

const (
	// ExportFunction is a script-callable function.
	ExportFunction ExportKind = iota
	// ExportOperation is a script-callable operation.
	ExportOperation
	// ExportCommandTarget is a named command handler.
	ExportCommandTarget
)

// String returns the kind name.
func (k ExportKind) String() string {
	switch k {
	case ExportOperation:
		return "operation"
	case ExportCommandTarget:
		return "command target"
	default:
		return "function"
	}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[RecordKey]*ModuleRecord),
		names:   make(map[string]NamespaceEntry),
	}
}

// Lookup returns the committed record for a key.
func (r *Registry) Lookup(key RecordKey) (*ModuleRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key]
	return rec, ok
}

// LookupName returns the namespace entry for a registered global name.
func (r *Registry) LookupName(name string) (NamespaceEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.names[name]
	return entry, ok
}

// Len returns the number of committed records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Names returns a snapshot of all registered global names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	return names
}

// Reset clears the registry on interpreter teardown.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[RecordKey]*ModuleRecord)
	r.names = make(map[string]NamespaceEntry)
}

// add stages a record. Nothing is visible until commit.
func (cs *changeset) add(rec *ModuleRecord) {
	cs.records = append(cs.records, rec)
}

// commit publishes a changeset and pushes its exports into the binder,
// in staging (topological) order. A name registered by an earlier
// module is overwritten by a later one; the registry logs the
// collision and keeps the newer binding, matching interpreter
// semantics where redefinition wins.
func (r *Registry) commit(cs *changeset, binder Binder, logger *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range cs.records {
		// Two require calls with different roots can race to load a
		// shared dependency; both fetch it, but only the first commit
		// publishes. Dropping the duplicate keeps one canonical record
		// per key and the binder never sees the same key twice.
		if _, ok := r.records[rec.Key]; ok {
			rec.State = StateLoaded
			logger.Debug("record committed by a concurrent require, keeping the first",
				"key", rec.Key.String())
			continue
		}

		rec.State = StateLoaded
		r.records[rec.Key] = rec

		for name, fn := range rec.Functions {
			r.publish(name, NamespaceEntry{Record: rec, Kind: ExportFunction}, logger)
			if binder != nil {
				binder.RegisterFunction(name, fn)
			}
		}
		for name, fn := range rec.Operations {
			r.publish(name, NamespaceEntry{Record: rec, Kind: ExportOperation}, logger)
			if binder != nil {
				binder.RegisterOperation(name, fn)
			}
		}
		if rec.Handler != nil {
			r.publish(rec.HandlerName, NamespaceEntry{Record: rec, Kind: ExportCommandTarget}, logger)
			if binder != nil {
				binder.RegisterCommandTarget(rec.HandlerName, rec.Handler)
			}
		}
	}
}

func (r *Registry) publish(name string, entry NamespaceEntry, logger *log.Logger) {
	if prev, ok := r.names[name]; ok && prev.Record != entry.Record {
		logger.Warn("global name redefined",
			"name", name,
			"previous", prev.Record.Key.String(),
			"module", entry.Record.Key.String())
	}
	r.names[name] = entry
}
