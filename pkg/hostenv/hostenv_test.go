// SPDX-License-Identifier: MPL-2.0

package hostenv

import (
	"testing"

	"github.com/oriolang/modload/pkg/specifier"
)

func TestProfileFor_Native(t *testing.T) {
	t.Parallel()

	p := ProfileFor(KindNative)
	for _, s := range []specifier.Strategy{
		specifier.StrategyCwd,
		specifier.StrategyRoot,
		specifier.StrategyRegistry,
		specifier.StrategyNPM,
		specifier.StrategyGitHub,
		specifier.StrategyRelative,
		specifier.StrategyAbsolute,
		specifier.StrategyURL,
	} {
		if !p.Allows(s) {
			t.Errorf("native host should allow %q", s)
		}
	}
}

func TestProfileFor_Sandboxed(t *testing.T) {
	t.Parallel()

	p := ProfileFor(KindSandboxed)
	if !p.Allows(specifier.StrategyRegistry) {
		t.Error("sandboxed host should allow registry loads")
	}
	if !p.Allows(specifier.StrategyURL) {
		t.Error("sandboxed host should allow URL loads (subject to allowlist)")
	}
	for _, s := range []specifier.Strategy{
		specifier.StrategyCwd,
		specifier.StrategyRoot,
		specifier.StrategyNPM,
		specifier.StrategyGitHub,
		specifier.StrategyRelative,
		specifier.StrategyAbsolute,
	} {
		if p.Allows(s) {
			t.Errorf("sandboxed host must not allow %q", s)
		}
	}
}

func TestProfileFor_ControlBus(t *testing.T) {
	t.Parallel()

	p := ProfileFor(KindControlBus)
	if !p.Allows(specifier.StrategyRegistry) {
		t.Error("controlbus host should allow registry loads")
	}
	if p.Allows(specifier.StrategyURL) {
		t.Error("controlbus host must not allow direct URL loads")
	}
	if got := len(p.Strategies()); got != 1 {
		t.Errorf("expected exactly one legal strategy, got %d", got)
	}
}

func TestDetect_Memoized(t *testing.T) {
	t.Parallel()

	first := Detect()
	second := Detect()
	if first.Kind != second.Kind {
		t.Errorf("detection must be stable: %v vs %v", first.Kind, second.Kind)
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want string
	}{
		{KindNative, "native"},
		{KindSandboxed, "sandboxed"},
		{KindControlBus, "controlbus"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
