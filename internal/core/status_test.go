package core

import (
	"fmt"
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// ============================================================================
// Status Aggregation
// ============================================================================

func resolvedWith(ident string, problems ...Problem) *Resolved {
	return &Resolved{
		ident:    types.ServiceIdent(ident),
		kinds:    map[string]ResolutionKind{},
		problems: problems,
	}
}

func TestAggregateStatus(t *testing.T) {
	v1 := semver.MustParse("1.0.0")
	fixable := &MissingLatestLink{problemBase: problemBase{ident: "nexus"}, Target: "x.json"}
	unfixable := &GenerationFailed{
		problemBase: problemBase{ident: "nexus", version: v1},
		Err:         fmt.Errorf("boom"),
	}

	tests := []struct {
		name     string
		outcomes []ServiceOutcome
		want     Status
	}{
		{
			name: "no services",
			want: StatusFresh,
		},
		{
			name: "all fresh",
			outcomes: []ServiceOutcome{
				{Resolved: resolvedWith("nexus")},
				{Resolved: resolvedWith("wicketd")},
			},
			want: StatusFresh,
		},
		{
			name: "fixable problems",
			outcomes: []ServiceOutcome{
				{Resolved: resolvedWith("nexus", fixable)},
				{Resolved: resolvedWith("wicketd")},
			},
			want: StatusNeedsUpdate,
		},
		{
			name: "unfixable problem dominates",
			outcomes: []ServiceOutcome{
				{Resolved: resolvedWith("nexus", fixable)},
				{Resolved: resolvedWith("wicketd", unfixable)},
			},
			want: StatusFailure,
		},
		{
			name: "internal error dominates",
			outcomes: []ServiceOutcome{
				{Resolved: resolvedWith("nexus")},
				{Err: fmt.Errorf("git broke")},
			},
			want: StatusFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateStatus(tt.outcomes); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStatus_ExitCodes(t *testing.T) {
	if StatusFresh.ExitCode() != 0 {
		t.Fatal("fresh must exit 0")
	}
	if StatusNeedsUpdate.ExitCode() != 1 {
		t.Fatal("needs-update must exit 1")
	}
	if StatusFailure.ExitCode() != 2 {
		t.Fatal("failure must exit 2")
	}
}
