package core

import (
	"bytes"
	"os"
	"testing"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// ============================================================================
// Fix Application
// ============================================================================

func TestWriteFile_CreatesParents(t *testing.T) {
	env := newTestEnvironment(t)
	fix := &WriteFile{Rel: "sled-agent/sled-agent-1.0.0-aabbcc.json", Contents: []byte("{}")}

	if err := fix.Apply(env); err != nil {
		t.Fatalf("applying: %v", err)
	}
	got, err := os.ReadFile(env.AbsDocPath(fix.Rel))
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if !bytes.Equal(got, fix.Contents) {
		t.Fatalf("got %q", got)
	}
}

func TestDeleteFiles_Idempotent(t *testing.T) {
	env := newTestEnvironment(t)
	if err := (&WriteFile{Rel: "nexus.json", Contents: []byte("{}")}).Apply(env); err != nil {
		t.Fatal(err)
	}

	fix := &DeleteFiles{Rels: []string{"nexus.json", "never-existed.json"}}
	if err := fix.Apply(env); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := fix.Apply(env); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := os.Stat(env.AbsDocPath("nexus.json")); !os.IsNotExist(err) {
		t.Fatal("file still present")
	}
}

func TestUpdateLatestLink_RelativeAndReplaceable(t *testing.T) {
	env := newTestEnvironment(t)
	ident := types.ServiceIdent("sled-agent")

	first := &UpdateLatestLink{Ident: ident, Target: "sled-agent-1.0.0-aabbcc.json"}
	if err := first.Apply(env); err != nil {
		t.Fatalf("creating link: %v", err)
	}
	second := &UpdateLatestLink{Ident: ident, Target: "sled-agent-2.0.0-ddeeff.json"}
	if err := second.Apply(env); err != nil {
		t.Fatalf("repointing link: %v", err)
	}

	target, err := os.Readlink(env.AbsDocPath(types.LatestLinkPath(ident)))
	if err != nil {
		t.Fatalf("reading link: %v", err)
	}
	if target != second.Target {
		t.Fatalf("got target %q, want %q", target, second.Target)
	}
}

func TestConvertToGitRef_SwapsForms(t *testing.T) {
	env := newTestEnvironment(t)
	jsonRel := "sled-agent/sled-agent-1.0.0-aabbcc.json"
	refRel := jsonRel + types.GitRefSuffix
	if err := (&WriteFile{Rel: jsonRel, Contents: []byte("{}")}).Apply(env); err != nil {
		t.Fatal(err)
	}

	pointer, err := GitRef{Commit: string(testCommitA), Path: "openapi/" + jsonRel}.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	fix := &ConvertToGitRef{JSONRel: jsonRel, GitRefRel: refRel, Contents: pointer}
	if err := fix.Apply(env); err != nil {
		t.Fatalf("converting: %v", err)
	}

	if _, err := os.Stat(env.AbsDocPath(jsonRel)); !os.IsNotExist(err) {
		t.Fatal("inline file still present")
	}
	got, err := os.ReadFile(env.AbsDocPath(refRel))
	if err != nil {
		t.Fatalf("reading pointer: %v", err)
	}
	if _, err := ParseGitRef(got); err != nil {
		t.Fatalf("pointer does not parse: %v", err)
	}
}

func TestConvertToJSON_SwapsForms(t *testing.T) {
	env := newTestEnvironment(t)
	jsonRel := "sled-agent/sled-agent-1.0.0-aabbcc.json"
	refRel := jsonRel + types.GitRefSuffix
	pointer, err := GitRef{Commit: string(testCommitA), Path: "openapi/" + jsonRel}.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	if err := (&WriteFile{Rel: refRel, Contents: pointer}).Apply(env); err != nil {
		t.Fatal(err)
	}

	contents := minimalDoc("1.0.0")
	fix := &ConvertToJSON{GitRefRel: refRel, JSONRel: jsonRel, Contents: contents}
	if err := fix.Apply(env); err != nil {
		t.Fatalf("converting: %v", err)
	}

	if _, err := os.Stat(env.AbsDocPath(refRel)); !os.IsNotExist(err) {
		t.Fatal("pointer file still present")
	}
	got, err := os.ReadFile(env.AbsDocPath(jsonRel))
	if err != nil {
		t.Fatalf("reading document: %v", err)
	}
	if !bytes.Equal(got, contents) {
		t.Fatal("document bytes differ")
	}
}
