package types

import (
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
)

// ============================================================================
// SupportedVersions Validation Tests
// ============================================================================

func TestNewSupportedVersions_Valid(t *testing.T) {
	sv, err := NewSupportedVersions([]SupportedVersion{
		{major: 3, label: "ADD_TAGS"},
		{major: 2, label: "RENAME_FIELDS"},
		{major: 1, label: "INITIAL"},
	})
	if err != nil {
		t.Fatalf("NewSupportedVersions() error = %v", err)
	}
	if sv.Len() != 3 {
		t.Errorf("Len() = %d, want 3", sv.Len())
	}
	if got := sv.Latest().Major(); got != 3 {
		t.Errorf("Latest().Major() = %d, want 3", got)
	}
	if got := sv.Oldest().Major(); got != 1 {
		t.Errorf("Oldest().Major() = %d, want 1", got)
	}
}

func TestNewSupportedVersions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []SupportedVersion
		wantErr string
	}{
		{
			name:    "empty list",
			entries: nil,
			wantErr: "at least one",
		},
		{
			name: "zero major",
			entries: []SupportedVersion{
				{major: 0, label: "INITIAL"},
			},
			wantErr: ">= 1",
		},
		{
			name: "duplicate major",
			entries: []SupportedVersion{
				{major: 2, label: "A"},
				{major: 2, label: "B"},
			},
			wantErr: "version 2 appears multiple times",
		},
		{
			name: "duplicate label",
			entries: []SupportedVersion{
				{major: 2, label: "SAME"},
				{major: 1, label: "SAME"},
			},
			wantErr: `label "SAME" appears multiple times`,
		},
		{
			name: "not descending",
			entries: []SupportedVersion{
				{major: 1, label: "INITIAL"},
				{major: 2, label: "LATER"},
			},
			wantErr: "descending",
		},
		{
			name: "bad label",
			entries: []SupportedVersion{
				{major: 1, label: "initial"},
			},
			wantErr: "label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSupportedVersions(tt.entries)
			if err == nil {
				t.Fatal("NewSupportedVersions() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

// ============================================================================
// Versions Tests
// ============================================================================

func TestVersions_Lockstep(t *testing.T) {
	v := NewLockstep(semver.MustParse("1.2.3"))
	if !v.IsLockstep() || v.IsVersioned() {
		t.Error("expected lockstep kind")
	}
	all := v.All()
	if len(all) != 1 || all[0].String() != "1.2.3" {
		t.Errorf("All() = %v, want [1.2.3]", all)
	}
	if v.Latest().String() != "1.2.3" {
		t.Errorf("Latest() = %s, want 1.2.3", v.Latest())
	}
}

func TestVersions_Versioned(t *testing.T) {
	sv, err := NewSupportedVersions([]SupportedVersion{
		{major: 2, label: "WIDGETS"},
		{major: 1, label: "INITIAL"},
	})
	if err != nil {
		t.Fatalf("NewSupportedVersions() error = %v", err)
	}
	v := NewVersioned(sv)
	if v.IsLockstep() || !v.IsVersioned() {
		t.Error("expected versioned kind")
	}

	// All() is ascending even though the config lists newest first.
	all := v.All()
	if len(all) != 2 {
		t.Fatalf("All() len = %d, want 2", len(all))
	}
	if all[0].String() != "1.0.0" || all[1].String() != "2.0.0" {
		t.Errorf("All() = [%s %s], want ascending [1.0.0 2.0.0]", all[0], all[1])
	}
	if v.Latest().String() != "2.0.0" {
		t.Errorf("Latest() = %s, want 2.0.0", v.Latest())
	}
	if !v.Contains(all[0]) {
		t.Error("Contains(1.0.0) = false, want true")
	}
}

func TestSupportedVersion_Semver(t *testing.T) {
	sv := SupportedVersion{major: 5, label: "BULK_IMPORT"}
	if got := sv.Semver().String(); got != "5.0.0" {
		t.Errorf("Semver() = %s, want 5.0.0", got)
	}
}

// ============================================================================
// ServiceIdent Tests
// ============================================================================

func TestParseServiceIdent(t *testing.T) {
	valid := []string{"nexus", "sled-agent", "dns_server", "gw2"}
	for _, s := range valid {
		if _, err := ParseServiceIdent(s); err != nil {
			t.Errorf("ParseServiceIdent(%q) error = %v, want nil", s, err)
		}
	}

	invalid := []string{"", "Nexus", "sled agent", "-leading", "trailing-", "a--b", "über"}
	for _, s := range invalid {
		if _, err := ParseServiceIdent(s); err == nil {
			t.Errorf("ParseServiceIdent(%q) error = nil, want error", s)
		}
	}
}
