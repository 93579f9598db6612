// SPDX-License-Identifier: MPL-2.0

// Package hostenv computes the host capability profile that decides
// which resolution strategies a REQUIRE is allowed to use. The profile
// is detected once per process and stays immutable afterwards; every
// resolver receives it as an explicit parameter instead of re-deriving
// it mid-resolution.
package hostenv

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/oriolang/modload/pkg/specifier"
)

// HostKindEnv overrides host detection when set. Accepted values:
// "native", "sandboxed", "controlbus".
const HostKindEnv = "MODLOAD_HOST"

type (
	// Kind classifies the host environment.
	Kind int

	// Profile is the immutable capability set of the current host.
	Profile struct {
		// Kind is the detected host classification.
		Kind Kind

		allowed map[specifier.Strategy]bool
	}
)

const (
	// KindNative is a full-capability host process with filesystem and
	// network access. All resolution strategies are legal.
	KindNative Kind = iota

	// KindSandboxed is a host without filesystem access (wasm or an
	// embedder-imposed sandbox). Only registry loads and explicitly
	// whitelisted URLs are legal.
	KindSandboxed

	// KindControlBus is a sandboxed host whose only way out is an RPC
	// bus provided by the embedder. Only registry loads (tunneled over
	// the bus) are legal.
	KindControlBus
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindSandboxed:
		return "sandboxed"
	case KindControlBus:
		return "controlbus"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var allStrategies = []specifier.Strategy{
	specifier.StrategyCwd,
	specifier.StrategyRoot,
	specifier.StrategyRegistry,
	specifier.StrategyNPM,
	specifier.StrategyGitHub,
	specifier.StrategyRelative,
	specifier.StrategyAbsolute,
	specifier.StrategyURL,
}

// ProfileFor builds the capability profile for a known host kind.
// Useful for tests and for embedders that decide the kind themselves.
func ProfileFor(k Kind) Profile {
	allowed := make(map[specifier.Strategy]bool)
	switch k {
	case KindSandboxed:
		allowed[specifier.StrategyRegistry] = true
		// URL loads in a sandbox additionally require a policy
		// allowlist match; legality alone is granted here.
		allowed[specifier.StrategyURL] = true
	case KindControlBus:
		allowed[specifier.StrategyRegistry] = true
	default:
		for _, s := range allStrategies {
			allowed[s] = true
		}
	}
	return Profile{Kind: k, allowed: allowed}
}

// Allows reports whether the strategy is legal under this profile.
func (p Profile) Allows(s specifier.Strategy) bool {
	return p.allowed[s]
}

// Strategies returns the legal strategies in declaration order.
func (p Profile) Strategies() []specifier.Strategy {
	var out []specifier.Strategy
	for _, s := range allStrategies {
		if p.allowed[s] {
			out = append(out, s)
		}
	}
	return out
}

var (
	detectOnce sync.Once
	detected   Profile
)

// Detect returns the current host profile, computed once per process.
func Detect() Profile {
	detectOnce.Do(func() {
		detected = ProfileFor(detectKind())
	})
	return detected
}

// detectKind classifies the host. The MODLOAD_HOST environment
// variable wins over platform inspection.
func detectKind() Kind {
	switch os.Getenv(HostKindEnv) {
	case "native":
		return KindNative
	case "sandboxed":
		return KindSandboxed
	case "controlbus":
		return KindControlBus
	}

	if runtime.GOOS == "js" || runtime.GOOS == "wasip1" {
		return KindSandboxed
	}
	return KindNative
}
