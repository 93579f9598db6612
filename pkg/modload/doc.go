// SPDX-License-Identifier: MPL-2.0

// Package modload implements the module-loading subsystem of the
// interpreter: the strategy resolver that maps specifiers to canonical
// locations, the dependency graph builder, the alias transformer, the
// per-interpreter registry, and the Loader that ties them together
// behind Require.
//
// The load pipeline is all-or-nothing. A require call resolves its
// full transitive graph, fetches and renames every module, and only
// then commits the whole set to the registry and binder in one step.
// A failure anywhere — resolution, policy, a cycle, a fetch — leaves
// the registry exactly as it was.
package modload
