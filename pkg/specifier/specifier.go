// SPDX-License-Identifier: MPL-2.0

// Package specifier parses REQUIRE arguments into structured module
// specifiers and alias (rename) clauses. Parsing is purely syntactic:
// no filesystem or network access happens here, and no judgement is
// made about whether a strategy is legal for the current host — that
// is the resolver's job.
package specifier

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy identifies how a specifier candidate should be resolved to
// a canonical fetch location.
type Strategy string

const (
	// StrategyCwd resolves against the process working directory ("cwd:" prefix).
	StrategyCwd Strategy = "cwd"
	// StrategyRoot resolves against the nearest ancestor directory that
	// contains a recognized project marker ("root:" prefix).
	StrategyRoot Strategy = "root"
	// StrategyRegistry resolves through the remote package registry
	// ("registry:" prefix, or a bare package name).
	StrategyRegistry Strategy = "registry"
	// StrategyNPM delegates to host package resolution ("npm:" prefix).
	StrategyNPM Strategy = "npm"
	// StrategyGitHub builds a release-artifact URL from a
	// "github.com/owner/repo" style path.
	StrategyGitHub Strategy = "github"
	// StrategyRelative resolves "./" and "../" paths against the
	// requesting script's directory.
	StrategyRelative Strategy = "relative"
	// StrategyAbsolute uses an absolute filesystem path.
	StrategyAbsolute Strategy = "absolute"
	// StrategyURL uses the specifier verbatim as a URL.
	StrategyURL Strategy = "url"
)

// CaptureToken is the literal marker inside an alias value that turns
// it into a capture-template rename (e.g. "gfx_(.*)").
const CaptureToken = "(.*)"

type (
	// ModuleSpecifier is a parsed REQUIRE target. The raw value may
	// carry a comma-separated preference list; each entry becomes one
	// Candidate, tried left to right by the resolver.
	ModuleSpecifier struct {
		// Raw is the original, unsplit argument as the script wrote it.
		Raw string

		// Candidates holds the ordered preference list. Always non-empty
		// for a successfully parsed specifier.
		Candidates []Candidate
	}

	// Candidate is one entry of a specifier preference list.
	Candidate struct {
		// Raw is the candidate entry with surrounding whitespace removed.
		Raw string

		// Strategy is the resolution strategy classified from Raw.
		Strategy Strategy

		// Path is Raw with any explicit scheme prefix stripped. For
		// strategies without a prefix (relative, absolute, url, github,
		// bare registry names) Path equals Raw.
		Path string
	}

	// AliasKind is the closed set of rename-clause shapes.
	AliasKind int

	// AliasSpec is a parsed rename clause. For LiteralPrefix aliases
	// both the underscore-normalized prefix and the verbatim literal
	// are kept: function exports are renamed with the prefix, while a
	// command-target handler is registered under the verbatim name.
	AliasSpec struct {
		Kind AliasKind

		// Prefix is the normalized literal prefix (always "_"-terminated).
		// Set only for KindLiteralPrefix.
		Prefix string

		// Template is the capture template containing exactly one
		// CaptureToken. Set only for KindCapturePrefix.
		Template string

		// Verbatim is the alias exactly as written, before any
		// normalization. Empty for KindNone.
		Verbatim string
	}

	// MalformedSpecifierError reports unusable REQUIRE input.
	MalformedSpecifierError struct {
		// Raw is the offending argument as received.
		Raw string
		// Reason describes what made it unusable.
		Reason string
	}
)

const (
	// KindNone means no rename clause was given.
	KindNone AliasKind = iota
	// KindLiteralPrefix prefixes every exported name.
	KindLiteralPrefix
	// KindCapturePrefix renames via a template containing CaptureToken.
	KindCapturePrefix
)

// Error implements the error interface.
func (e *MalformedSpecifierError) Error() string {
	return fmt.Sprintf("malformed module specifier %q: %s", e.Raw, e.Reason)
}

// driveLetter matches Windows-style absolute paths like "C:\" or "D:/".
var driveLetter = regexp.MustCompile(`^[A-Za-z]:[/\\]`)

// Parse turns a raw REQUIRE argument and an optional rename clause
// into a ModuleSpecifier and AliasSpec. An empty asArg yields an
// AliasSpec with KindNone.
func Parse(rawArg, asArg string) (ModuleSpecifier, AliasSpec, error) {
	spec, err := ParseSpecifier(rawArg)
	if err != nil {
		return ModuleSpecifier{}, AliasSpec{}, err
	}

	alias, err := ParseAlias(asArg)
	if err != nil {
		return ModuleSpecifier{}, AliasSpec{}, err
	}

	return spec, alias, nil
}

// ParseSpecifier parses only the module specifier argument.
func ParseSpecifier(rawArg string) (ModuleSpecifier, error) {
	if strings.TrimSpace(rawArg) == "" {
		return ModuleSpecifier{}, &MalformedSpecifierError{Raw: rawArg, Reason: "specifier is empty"}
	}

	var candidates []Candidate
	for _, entry := range strings.Split(rawArg, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return ModuleSpecifier{}, &MalformedSpecifierError{
				Raw:    rawArg,
				Reason: "preference list contains an empty entry",
			}
		}
		candidates = append(candidates, classify(entry))
	}

	return ModuleSpecifier{Raw: rawArg, Candidates: candidates}, nil
}

// ParseAlias parses only the rename clause. An empty or
// whitespace-only value means "no rename".
func ParseAlias(asArg string) (AliasSpec, error) {
	asArg = strings.TrimSpace(asArg)
	if asArg == "" {
		return AliasSpec{Kind: KindNone}, nil
	}

	if n := strings.Count(asArg, CaptureToken); n > 0 {
		if n > 1 {
			return AliasSpec{}, &MalformedSpecifierError{
				Raw:    asArg,
				Reason: "alias template must contain exactly one capture token",
			}
		}
		return AliasSpec{
			Kind:     KindCapturePrefix,
			Template: asArg,
			Verbatim: asArg,
		}, nil
	}

	prefix := asArg
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}

	return AliasSpec{
		Kind:     KindLiteralPrefix,
		Prefix:   prefix,
		Verbatim: asArg,
	}, nil
}

// classify applies the classification precedence: explicit scheme
// prefixes first, then relative/absolute path shapes, then URLs, and
// finally the bare-name registry shorthand.
func classify(entry string) Candidate {
	switch {
	case strings.HasPrefix(entry, "cwd:"):
		return Candidate{Raw: entry, Strategy: StrategyCwd, Path: strings.TrimPrefix(entry, "cwd:")}
	case strings.HasPrefix(entry, "root:"):
		return Candidate{Raw: entry, Strategy: StrategyRoot, Path: strings.TrimPrefix(entry, "root:")}
	case strings.HasPrefix(entry, "registry:"):
		return Candidate{Raw: entry, Strategy: StrategyRegistry, Path: strings.TrimPrefix(entry, "registry:")}
	case strings.HasPrefix(entry, "npm:"):
		return Candidate{Raw: entry, Strategy: StrategyNPM, Path: strings.TrimPrefix(entry, "npm:")}
	case strings.HasPrefix(entry, "github.com/"):
		return Candidate{Raw: entry, Strategy: StrategyGitHub, Path: entry}
	case strings.HasPrefix(entry, "./"), strings.HasPrefix(entry, "../"):
		return Candidate{Raw: entry, Strategy: StrategyRelative, Path: entry}
	case strings.HasPrefix(entry, "/"), driveLetter.MatchString(entry):
		return Candidate{Raw: entry, Strategy: StrategyAbsolute, Path: entry}
	case strings.Contains(entry, "://"):
		return Candidate{Raw: entry, Strategy: StrategyURL, Path: entry}
	default:
		return Candidate{Raw: entry, Strategy: StrategyRegistry, Path: entry}
	}
}

// Hint returns the strategy of the first (most preferred) candidate.
func (s ModuleSpecifier) Hint() Strategy {
	if len(s.Candidates) == 0 {
		return ""
	}
	return s.Candidates[0].Strategy
}

// String returns the raw specifier.
func (s ModuleSpecifier) String() string { return s.Raw }

// Key returns a stable identity string for the alias, used as the
// alias axis of the module-record identity. Distinct keys mean
// distinct module instances.
func (a AliasSpec) Key() string {
	switch a.Kind {
	case KindLiteralPrefix:
		return "prefix:" + a.Prefix
	case KindCapturePrefix:
		return "template:" + a.Template
	default:
		return ""
	}
}

// IsZero reports whether no rename clause was given.
func (a AliasSpec) IsZero() bool { return a.Kind == KindNone }

// String returns a human-readable form of the alias.
func (a AliasSpec) String() string {
	switch a.Kind {
	case KindLiteralPrefix:
		return "prefix " + a.Prefix
	case KindCapturePrefix:
		return "template " + a.Template
	default:
		return "none"
	}
}
