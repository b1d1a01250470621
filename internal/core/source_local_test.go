package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// writeTestDocFile writes a file into the service's document directory.
func writeTestDocFile(t *testing.T, env *Environment, rel string, contents []byte) {
	t.Helper()
	abs := env.AbsDocPath(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(abs), err)
	}
	if err := os.WriteFile(abs, contents, 0o644); err != nil {
		t.Fatalf("writing %s: %v", abs, err)
	}
}

// ============================================================================
// Versioned Scan Tests
// ============================================================================

func TestLocalSource_LoadVersioned(t *testing.T) {
	env := newTestEnvironment(t)
	svc := newVersionedService(t, types.VersionedConfig{
		Versions: []types.VersionConfig{{Version: 1, Label: "V1"}},
	})

	contents := minimalDoc("1.0.0")
	name := types.VersionedFileName(svc.Ident(), mustVersion(t, "1.0.0"), contents)
	writeTestDocFile(t, env, name.Path(), contents)

	snap, err := NewLocalSource(env, newTestLogger()).Load(svc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := snap.Orphans(); len(got) != 0 {
		t.Fatalf("unexpected orphans: %v", got)
	}
	files := snap.ForVersion(1)
	if len(files) != 1 || !files[0].Name().Equal(name) {
		t.Fatalf("ForVersion(1) = %v, want [%s]", files, name)
	}
}

// Files that cannot be attributed to a version become orphans with a
// reason, and do not abort the scan: the well-formed file still loads.
func TestLocalSource_OrphansAreFailSoft(t *testing.T) {
	env := newTestEnvironment(t)
	svc := newVersionedService(t, types.VersionedConfig{
		Versions: []types.VersionConfig{{Version: 1, Label: "V1"}},
	})
	ident := svc.Ident()

	good := minimalDoc("1.0.0")
	goodName := types.VersionedFileName(ident, mustVersion(t, "1.0.0"), good)
	writeTestDocFile(t, env, goodName.Path(), good)

	// Name claims a hash the contents do not have.
	mismatched := types.VersionedFileNameWithHash(ident, mustVersion(t, "1.0.0"), "deadbe")
	writeTestDocFile(t, env, mismatched.Path(), docWithPaths("1.0.0", "/v1/disks"))

	// Right shape, malformed components.
	writeTestDocFile(t, env, ident.String()+"/sled-agent-1.0.0.json", good)

	// Not a managed document name at all.
	writeTestDocFile(t, env, ident.String()+"/notes.txt", []byte("scratch"))

	// Directories do not belong under a service.
	if err := os.MkdirAll(env.AbsDocPath(ident.String()+"/old"), 0o755); err != nil {
		t.Fatal(err)
	}

	snap, err := NewLocalSource(env, newTestLogger()).Load(svc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if files := snap.ForVersion(1); len(files) != 1 || !files[0].Name().Equal(goodName) {
		t.Fatalf("ForVersion(1) = %v, want only %s", files, goodName)
	}

	reasons := map[string]string{}
	for _, o := range snap.Orphans() {
		reasons[filepath.Base(o.RelPath)] = o.Reason
	}
	if len(reasons) != 4 {
		t.Fatalf("got %d orphans (%v), want 4", len(reasons), reasons)
	}
	if r := reasons[mismatched.Basename()]; !strings.Contains(r, "does not match") {
		t.Errorf("hash mismatch reason = %q", r)
	}
	if r := reasons["sled-agent-1.0.0.json"]; !strings.Contains(r, "content hash") {
		t.Errorf("malformed name reason = %q", r)
	}
	if r := reasons["notes.txt"]; r != "file name does not match any managed document" {
		t.Errorf("unmatched name reason = %q", r)
	}
	if r := reasons["old"]; r != "unexpected directory" {
		t.Errorf("directory reason = %q", r)
	}
}

func TestLocalSource_OrphanVersionMismatch(t *testing.T) {
	env := newTestEnvironment(t)
	svc := newVersionedService(t, types.VersionedConfig{
		Versions: []types.VersionConfig{{Version: 1, Label: "V1"}},
	})

	// The name and hash agree with the bytes, but the document inside
	// declares a different version.
	contents := minimalDoc("2.0.0")
	name := types.VersionedFileName(svc.Ident(), mustVersion(t, "1.0.0"), contents)
	writeTestDocFile(t, env, name.Path(), contents)

	snap, err := NewLocalSource(env, newTestLogger()).Load(svc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	orphans := snap.Orphans()
	if len(orphans) != 1 {
		t.Fatalf("got %d orphans, want 1", len(orphans))
	}
	if !strings.Contains(orphans[0].Reason, "declares version 2.0.0") {
		t.Errorf("reason = %q", orphans[0].Reason)
	}
	if orphans[0].Version == nil || orphans[0].Version.String() != "1.0.0" {
		t.Errorf("orphan version = %v, want 1.0.0", orphans[0].Version)
	}
}
