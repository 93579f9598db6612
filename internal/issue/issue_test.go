// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"context"
	"strings"
	"testing"

	"github.com/oriolang/modload/pkg/modload"
	"github.com/oriolang/modload/pkg/specifier"
)

func TestId_Constants(t *testing.T) {
	// Verify all IDs are unique and sequential
	ids := []Id{
		ModuleNotFoundId,
		PermissionDeniedId,
		StrategyNotSupportedId,
		DependencyCycleId,
		MalformedSpecifierId,
		InvalidAliasId,
		FetchFailedId,
		ConfigLoadFailedId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	// Verify IDs start at 1 (iota + 1)
	if ModuleNotFoundId != 1 {
		t.Errorf("ModuleNotFoundId = %d, want 1", ModuleNotFoundId)
	}
}

func TestIssue_Id(t *testing.T) {
	issue := Get(ModuleNotFoundId)
	if issue == nil {
		t.Fatal("Get(ModuleNotFoundId) returned nil")
	}

	if issue.Id() != ModuleNotFoundId {
		t.Errorf("issue.Id() = %d, want %d", issue.Id(), ModuleNotFoundId)
	}
}

func TestIssue_MarkdownMsg(t *testing.T) {
	issue := Get(DependencyCycleId)
	if issue == nil {
		t.Fatal("Get(DependencyCycleId) returned nil")
	}

	msg := issue.MarkdownMsg()
	if msg == "" {
		t.Error("MarkdownMsg() returned empty string")
	}

	if !strings.Contains(string(msg), "Circular module dependency") {
		t.Error("MarkdownMsg() should contain 'Circular module dependency'")
	}
}

func TestGet_UnknownId(t *testing.T) {
	if issue := Get(Id(9999)); issue != nil {
		t.Errorf("Get(9999) = %v, want nil", issue)
	}
}

func TestValues_CoversEveryId(t *testing.T) {
	values := Values()
	if len(values) != len(issues) {
		t.Errorf("Values() returned %d issues, want %d", len(values), len(issues))
	}

	seen := make(map[Id]bool)
	for _, issue := range values {
		seen[issue.Id()] = true
	}
	for id := range issues {
		if !seen[id] {
			t.Errorf("Values() missing issue %d", id)
		}
	}
}

func TestIssue_Render(t *testing.T) {
	issue := Get(MalformedSpecifierId)
	if issue == nil {
		t.Fatal("Get(MalformedSpecifierId) returned nil")
	}

	out, err := issue.Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(out, "Malformed module specifier") {
		t.Error("rendered output missing the issue heading")
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Id
	}{
		{
			name: "malformed specifier",
			err:  &specifier.MalformedSpecifierError{Raw: "", Reason: "specifier is empty"},
			want: MalformedSpecifierId,
		},
		{
			name: "strategy not supported",
			err:  &modload.StrategyNotSupportedError{Raw: "cwd:x.js"},
			want: StrategyNotSupportedId,
		},
		{
			name: "permission denied",
			err:  &modload.PermissionDeniedError{Raw: "evil"},
			want: PermissionDeniedId,
		},
		{
			name: "cycle",
			err:  &modload.CycleError{Raw: "a", Path: []string{"a", "b", "a"}},
			want: DependencyCycleId,
		},
		{
			name: "invalid alias",
			err:  &modload.InvalidAliasError{Raw: "plotter"},
			want: InvalidAliasId,
		},
		{
			name: "not found",
			err:  &modload.NotFoundError{Raw: "stats"},
			want: ModuleNotFoundId,
		},
		{
			name: "load failure",
			err:  &modload.LoadFailureError{Raw: "stats", Location: "https://x/y.js", Err: context.DeadlineExceeded},
			want: FetchFailedId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := FromError(tt.err)
			if issue == nil {
				t.Fatalf("FromError(%v) = nil", tt.err)
			}
			if issue.Id() != tt.want {
				t.Errorf("FromError(%v).Id() = %d, want %d", tt.err, issue.Id(), tt.want)
			}
		})
	}

	if issue := FromError(nil); issue != nil {
		t.Errorf("FromError(nil) = %v, want nil", issue)
	}
	if issue := FromError(context.Canceled); issue != nil {
		t.Errorf("FromError(unrelated) = %v, want nil", issue)
	}
}
