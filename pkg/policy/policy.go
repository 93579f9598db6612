// SPDX-License-Identifier: MPL-2.0

// Package policy evaluates allow/block rules against raw module
// specifiers. Evaluation is a pure glob match with deny-overrides-allow
// semantics: block patterns are checked first and any match denies,
// then a configured allow list requires a match (no allow list means
// default-allow).
//
// Patterns use the doublestar dialect: "**" crosses path separators,
// "*" does not.
package policy

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

type (
	// Decision is the outcome of a policy check.
	Decision int

	// Policy holds validated allow and block patterns.
	Policy struct {
		allow []string
		block []string
	}

	// PatternError reports an unparsable glob at construction time, so
	// per-check evaluation never fails.
	PatternError struct {
		// Pattern is the offending glob.
		Pattern string
		// List names which list it came from ("allow" or "block").
		List string
	}
)

const (
	// Allow permits the load.
	Allow Decision = iota
	// Deny refuses the load.
	Deny
)

// String returns "allow" or "deny".
func (d Decision) String() string {
	if d == Deny {
		return "deny"
	}
	return "allow"
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid %s pattern %q", e.List, e.Pattern)
}

// New validates every pattern up front and returns the policy. A nil
// or empty pair of lists yields an allow-all policy.
func New(allow, block []string) (*Policy, error) {
	for _, p := range allow {
		if !doublestar.ValidatePattern(p) {
			return nil, &PatternError{Pattern: p, List: "allow"}
		}
	}
	for _, p := range block {
		if !doublestar.ValidatePattern(p) {
			return nil, &PatternError{Pattern: p, List: "block"}
		}
	}
	return &Policy{allow: allow, block: block}, nil
}

// AllowAll returns a policy with no rules.
func AllowAll() *Policy {
	return &Policy{}
}

// Check evaluates the raw specifier. Block patterns always win over
// allow patterns.
func (p *Policy) Check(rawSpecifier string) Decision {
	d, _ := p.Explain(rawSpecifier)
	return d
}

// Explain evaluates the raw specifier and additionally returns the
// pattern responsible for a denial (the matched block pattern, or ""
// when the allow list simply did not match).
func (p *Policy) Explain(rawSpecifier string) (Decision, string) {
	if p == nil {
		return Allow, ""
	}

	for _, pat := range p.block {
		if match(pat, rawSpecifier) {
			return Deny, pat
		}
	}

	if len(p.allow) == 0 {
		return Allow, ""
	}

	for _, pat := range p.allow {
		if match(pat, rawSpecifier) {
			return Allow, ""
		}
	}

	return Deny, ""
}

// HasAllowList reports whether an allow list is configured, which
// flips the default from allow-all to default-deny.
func (p *Policy) HasAllowList() bool {
	return p != nil && len(p.allow) > 0
}

// MatchedAllow reports whether the specifier explicitly matches a
// configured allow pattern. Sandboxed hosts use this for URL loads,
// which require a positive allowlist match rather than default-allow.
func (p *Policy) MatchedAllow(rawSpecifier string) bool {
	if p == nil {
		return false
	}
	for _, pat := range p.allow {
		if match(pat, rawSpecifier) {
			return true
		}
	}
	return false
}

func match(pattern, value string) bool {
	// Patterns were validated in New; Match only errors on bad patterns.
	ok, err := doublestar.Match(pattern, value)
	return err == nil && ok
}
