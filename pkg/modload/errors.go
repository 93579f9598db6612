// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"fmt"
	"strings"

	"github.com/oriolang/modload/pkg/hostenv"
	"github.com/oriolang/modload/pkg/specifier"
)

type (
	// StrategyNotSupportedError means the specifier's strategy is not
	// legal under the current host profile.
	StrategyNotSupportedError struct {
		// Raw is the offending specifier candidate.
		Raw string
		// Strategy is the classified strategy.
		Strategy specifier.Strategy
		// Host is the profile kind that refused it.
		Host hostenv.Kind
	}

	// PermissionDeniedError means the security policy refused the
	// specifier.
	PermissionDeniedError struct {
		// Raw is the offending specifier candidate.
		Raw string
		// Pattern is the block pattern that matched, or "" when the
		// allow list simply did not match.
		Pattern string
	}

	// Attempt records why one preference-list candidate failed.
	Attempt struct {
		// Candidate is the candidate's raw form.
		Candidate string
		// Err is the failure for that candidate.
		Err error
	}

	// NotFoundError means every candidate in the preference list was
	// tried and none resolved to a fetchable location.
	NotFoundError struct {
		// Raw is the original, unsplit specifier.
		Raw string
		// Attempts holds the per-candidate failures in try order.
		Attempts []Attempt
	}

	// CycleError means the declared dependencies loop back on
	// themselves. Path is the full chain from the root require to the
	// repeated module, e.g. [A B C A].
	CycleError struct {
		// Raw is the root specifier whose graph contained the cycle.
		Raw string
		// Path is the complete cycle chain.
		Path []string
	}

	// InvalidAliasError means a capture-template alias was applied to
	// a command-target module. Command targets need one static,
	// parse-time-known name; a capture rename would make the name
	// depend on module data.
	InvalidAliasError struct {
		// Raw is the specifier being loaded.
		Raw string
		// Alias is the rejected rename clause.
		Alias specifier.AliasSpec
	}

	// LoadFailureError means a resolved, policy-approved, acyclic
	// module still failed to fetch or register. One failing node fails
	// the entire require call.
	LoadFailureError struct {
		// Raw is the root specifier of the require call.
		Raw string
		// Location is the canonical location that failed.
		Location string
		// Err is the underlying fetch or registration error.
		Err error
	}
)

// Error implements the error interface.
func (e *StrategyNotSupportedError) Error() string {
	return fmt.Sprintf("strategy %q is not available on a %s host (specifier %q)",
		e.Strategy, e.Host, e.Raw)
}

// Error implements the error interface.
func (e *PermissionDeniedError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("specifier %q is blocked by security policy pattern %q", e.Raw, e.Pattern)
	}
	return fmt.Sprintf("specifier %q is not on the security policy allow list", e.Raw)
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no candidate of %q could be resolved", e.Raw)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %v", a.Candidate, a.Err)
	}
	return b.String()
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency while loading %q: %s",
		e.Raw, strings.Join(e.Path, " -> "))
}

// Error implements the error interface.
func (e *InvalidAliasError) Error() string {
	return fmt.Sprintf("capture alias %q cannot rename command target %q: command targets need a static name",
		e.Alias.Template, e.Raw)
}

// Error implements the error interface.
func (e *LoadFailureError) Error() string {
	return fmt.Sprintf("loading %q failed at %s: %v", e.Raw, e.Location, e.Err)
}

// Unwrap exposes the underlying fetch or registration error.
func (e *LoadFailureError) Unwrap() error { return e.Err }
