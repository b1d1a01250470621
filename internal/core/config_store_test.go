package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// ============================================================================
// Config Store Tests
// ============================================================================

func TestFileConfigStore_MissingFile(t *testing.T) {
	store := NewFileConfigStore(t.TempDir())
	_, err := store.Load()
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("got %v, want ErrNotConfigured", err)
	}
}

func TestFileConfigStore_RoundTrip(t *testing.T) {
	store := NewFileConfigStore(t.TempDir())
	cfg := types.ProjectConfig{
		DocumentsDir:  "openapi",
		BlessedBranch: "main",
		Services: []types.ServiceConfig{
			{
				Name:     "nexus",
				Title:    "Nexus API",
				Lockstep: &types.LockstepConfig{Version: "1.2.3"},
				Generate: []string{"cargo", "run", "-p", "{service}-api"},
				Boundary: types.BoundaryInternal,
			},
			{
				Name: "sled-agent",
				Versioned: &types.VersionedConfig{
					Versions: []types.VersionConfig{
						{Version: 2, Label: "V2"},
						{Version: 1, Label: "INITIAL"},
					},
					GitRefStorage: true,
				},
				Generate: []string{"gen-sled-agent", "{version}"},
				Boundary: types.BoundaryExternal,
			},
		},
	}

	if err := store.Save(cfg); err != nil {
		t.Fatalf("saving: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	if len(loaded.Services) != 2 {
		t.Fatalf("got %d services, want 2", len(loaded.Services))
	}
	if loaded.Services[0].Lockstep == nil || loaded.Services[0].Lockstep.Version != "1.2.3" {
		t.Fatalf("lockstep config lost: %+v", loaded.Services[0])
	}
	v := loaded.Services[1].Versioned
	if v == nil || len(v.Versions) != 2 || !v.GitRefStorage {
		t.Fatalf("versioned config lost: %+v", loaded.Services[1])
	}
	if v.Versions[0].Version != 2 || v.Versions[1].Label != "INITIAL" {
		t.Fatalf("version list lost: %+v", v.Versions)
	}
}

func TestFileConfigStore_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigName)
	contents := []byte("services:\n  - name: nexus\n    lockstep:\n      version: 1.0.0\n    generate: [\"true\"]\n")
	if err := os.WriteFile(path, contents, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFileConfigStore(dir).Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if cfg.DocumentsDir != DefaultDocumentsDir {
		t.Fatalf("got documents dir %q, want %q", cfg.DocumentsDir, DefaultDocumentsDir)
	}
	if cfg.BlessedBranch != types.DefaultBlessedBranch {
		t.Fatalf("got blessed branch %q, want %q", cfg.BlessedBranch, types.DefaultBlessedBranch)
	}
}

func TestFileConfigStore_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigName), []byte("services: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileConfigStore(dir).Load(); err == nil {
		t.Fatal("expected a parse error")
	}
}
