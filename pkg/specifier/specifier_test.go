// SPDX-License-Identifier: MPL-2.0

package specifier

import (
	"errors"
	"testing"
)

func TestParseSpecifier_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		strategy Strategy
		path     string
	}{
		{"cwd prefix", "cwd:tools/helper.js", StrategyCwd, "tools/helper.js"},
		{"root prefix", "root:lib/math.js", StrategyRoot, "lib/math.js"},
		{"registry prefix", "registry:org.example/stats", StrategyRegistry, "org.example/stats"},
		{"npm prefix", "npm:left-pad", StrategyNPM, "left-pad"},
		{"github path", "github.com/acme/graphics", StrategyGitHub, "github.com/acme/graphics"},
		{"relative dot", "./local.js", StrategyRelative, "./local.js"},
		{"relative dotdot", "../shared/util.js", StrategyRelative, "../shared/util.js"},
		{"absolute unix", "/opt/modules/x.js", StrategyAbsolute, "/opt/modules/x.js"},
		{"absolute windows", `C:\modules\x.js`, StrategyAbsolute, `C:\modules\x.js`},
		{"url", "https://example.com/mod.js", StrategyURL, "https://example.com/mod.js"},
		{"bare name is registry shorthand", "stats", StrategyRegistry, "stats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec, err := ParseSpecifier(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(spec.Candidates) != 1 {
				t.Fatalf("expected 1 candidate, got %d", len(spec.Candidates))
			}
			c := spec.Candidates[0]
			if c.Strategy != tt.strategy {
				t.Errorf("strategy: expected %q, got %q", tt.strategy, c.Strategy)
			}
			if c.Path != tt.path {
				t.Errorf("path: expected %q, got %q", tt.path, c.Path)
			}
			if spec.Hint() != tt.strategy {
				t.Errorf("hint: expected %q, got %q", tt.strategy, spec.Hint())
			}
		})
	}
}

func TestParseSpecifier_PreferenceList(t *testing.T) {
	t.Parallel()

	spec, err := ParseSpecifier("registry:pkg.bundle, registry:pkg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spec.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(spec.Candidates))
	}
	if spec.Candidates[0].Path != "pkg.bundle" {
		t.Errorf("first candidate: expected pkg.bundle, got %q", spec.Candidates[0].Path)
	}
	if spec.Candidates[1].Path != "pkg" {
		t.Errorf("second candidate: expected pkg, got %q", spec.Candidates[1].Path)
	}
	if spec.Raw != "registry:pkg.bundle, registry:pkg" {
		t.Errorf("raw should be preserved unsplit, got %q", spec.Raw)
	}
}

func TestParseSpecifier_MixedStrategiesInList(t *testing.T) {
	t.Parallel()

	spec, err := ParseSpecifier("registry:gfx.bundle, ./gfx.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Candidates[0].Strategy != StrategyRegistry {
		t.Errorf("expected registry, got %q", spec.Candidates[0].Strategy)
	}
	if spec.Candidates[1].Strategy != StrategyRelative {
		t.Errorf("expected relative, got %q", spec.Candidates[1].Strategy)
	}
}

func TestParseSpecifier_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"empty list entry", "registry:a,,registry:b"},
		{"trailing comma", "registry:a,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSpecifier(tt.raw)
			var malformed *MalformedSpecifierError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedSpecifierError, got %v", err)
			}
			if malformed.Raw != tt.raw {
				t.Errorf("error should carry the raw input, got %q", malformed.Raw)
			}
		})
	}
}

func TestParseAlias(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		as       string
		kind     AliasKind
		prefix   string
		template string
	}{
		{"empty means none", "", KindNone, "", ""},
		{"literal gets underscore", "math", KindLiteralPrefix, "math_", ""},
		{"literal keeps existing underscore", "math_", KindLiteralPrefix, "math_", ""},
		{"capture template", "gfx_(.*)", KindCapturePrefix, "", "gfx_(.*)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			alias, err := ParseAlias(tt.as)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if alias.Kind != tt.kind {
				t.Errorf("kind: expected %v, got %v", tt.kind, alias.Kind)
			}
			if alias.Prefix != tt.prefix {
				t.Errorf("prefix: expected %q, got %q", tt.prefix, alias.Prefix)
			}
			if alias.Template != tt.template {
				t.Errorf("template: expected %q, got %q", tt.template, alias.Template)
			}
		})
	}
}

func TestParseAlias_DoubleCaptureToken(t *testing.T) {
	t.Parallel()

	_, err := ParseAlias("a_(.*)_(.*)")
	var malformed *MalformedSpecifierError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedSpecifierError, got %v", err)
	}
}

func TestAliasSpec_Key(t *testing.T) {
	t.Parallel()

	a, err := ParseAlias("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ParseAlias("b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	none, err := ParseAlias("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Key() == b.Key() {
		t.Errorf("distinct aliases must have distinct keys: %q vs %q", a.Key(), b.Key())
	}
	if none.Key() != "" {
		t.Errorf("no-alias key should be empty, got %q", none.Key())
	}

	// The verbatim form must not leak into the key: "a" and "a_"
	// normalize to the same prefix and therefore the same instance.
	aU, err := ParseAlias("a_")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Key() != aU.Key() {
		t.Errorf("normalized aliases should share a key: %q vs %q", a.Key(), aU.Key())
	}
}
