package types

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

// ============================================================================
// SpecFileName Construction Tests
// ============================================================================

func TestHashContents(t *testing.T) {
	// sha256("") = e3b0c442 98fc... so the short hash is the first three
	// bytes in lowercase hex.
	if got := HashContents(nil); got != "e3b0c4" {
		t.Errorf("HashContents(nil) = %q, want %q", got, "e3b0c4")
	}
	if got := HashContents([]byte("hello")); len(got) != 6 {
		t.Errorf("HashContents len = %d, want 6", len(got))
	}
}

func TestSpecFileName_Paths(t *testing.T) {
	ident := ServiceIdent("nexus")
	v2 := semver.MustParse("2.0.0")

	lockstep := LockstepFileName(ident)
	if got := lockstep.Path(); got != "nexus.json" {
		t.Errorf("lockstep Path() = %q, want %q", got, "nexus.json")
	}

	versioned := VersionedFileNameWithHash(ident, v2, "1a2b3c")
	if got := versioned.Path(); got != "nexus/nexus-2.0.0-1a2b3c.json" {
		t.Errorf("versioned Path() = %q, want %q", got, "nexus/nexus-2.0.0-1a2b3c.json")
	}

	gitRef := versioned.ToGitRef()
	if got := gitRef.Path(); got != "nexus/nexus-2.0.0-1a2b3c.json.gitref" {
		t.Errorf("gitref Path() = %q, want %q", got, "nexus/nexus-2.0.0-1a2b3c.json.gitref")
	}
	if !gitRef.IsGitRef() {
		t.Error("IsGitRef() = false after ToGitRef()")
	}
	if !gitRef.ToJSON().Equal(versioned) {
		t.Error("ToJSON() did not round-trip back to the versioned name")
	}
}

func TestVersionedFileName_ContentAddressed(t *testing.T) {
	ident := ServiceIdent("nexus")
	v1 := semver.MustParse("1.0.0")

	a := VersionedFileName(ident, v1, []byte(`{"openapi":"3.0.3"}`))
	b := VersionedFileName(ident, v1, []byte(`{"openapi":"3.0.4"}`))
	if a.Equal(b) {
		t.Error("different contents produced the same file name")
	}
}

func TestLatestLinkPath(t *testing.T) {
	if got := LatestLinkPath(ServiceIdent("sled-agent")); got != "sled-agent/sled-agent-latest.json" {
		t.Errorf("LatestLinkPath() = %q", got)
	}
}

// ============================================================================
// SpecFileName Parsing Tests
// ============================================================================

func TestParseVersionedBasename(t *testing.T) {
	ident := ServiceIdent("nexus")

	tests := []struct {
		name     string
		basename string
		wantOK   bool
		wantErr  bool
		wantKind SpecNameKind
		wantVer  string
		wantHash string
	}{
		{
			name:     "plain versioned file",
			basename: "nexus-2.0.0-1a2b3c.json",
			wantOK:   true,
			wantKind: KindVersioned,
			wantVer:  "2.0.0",
			wantHash: "1a2b3c",
		},
		{
			name:     "git ref file",
			basename: "nexus-1.0.0-abcdef.json.gitref",
			wantOK:   true,
			wantKind: KindVersionedGitRef,
			wantVer:  "1.0.0",
			wantHash: "abcdef",
		},
		{
			name:     "other service",
			basename: "sled-agent-1.0.0-abcdef.json",
			wantOK:   false,
		},
		{
			name:     "not json",
			basename: "nexus-1.0.0-abcdef.yaml",
			wantOK:   false,
		},
		{
			name:     "latest link basename",
			basename: "nexus-latest.json",
			wantOK:   false,
			wantErr:  true,
		},
		{
			name:     "hash too short",
			basename: "nexus-1.0.0-abc.json",
			wantOK:   false,
			wantErr:  true,
		},
		{
			name:     "uppercase hash",
			basename: "nexus-1.0.0-ABCDEF.json",
			wantOK:   false,
			wantErr:  true,
		},
		{
			name:     "malformed version",
			basename: "nexus-1.0-abcdef.json",
			wantOK:   false,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseVersionedBasename(ident, tt.basename)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (err = %v)", ok, tt.wantOK, err)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if !tt.wantOK {
				return
			}
			if got.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", got.Kind(), tt.wantKind)
			}
			if v, _ := got.Version(); v.String() != tt.wantVer {
				t.Errorf("Version() = %s, want %s", v, tt.wantVer)
			}
			if h, _ := got.Hash(); h != tt.wantHash {
				t.Errorf("Hash() = %q, want %q", h, tt.wantHash)
			}
		})
	}
}
