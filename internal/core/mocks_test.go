package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/oxidecomputer/openapi-manager/internal/logging"
	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// ============================================================================
// MockGitClient
// ============================================================================

// MockGitClient implements GitClient interface for testing
type MockGitClient struct {
	RepoRootFunc      func(ctx context.Context) (string, error)
	MergeBaseFunc     func(ctx context.Context, a, b string) (CommitHash, error)
	ListTreeFilesFunc func(ctx context.Context, commit CommitHash, dir string) ([]string, error)
	ShowFileFunc      func(ctx context.Context, commit CommitHash, path string) ([]byte, error)
	FirstCommitFunc   func(ctx context.Context, start CommitHash, path string) (CommitHash, error)

	// State: path -> contents served by ShowFile regardless of commit,
	// and path -> first commit served by FirstCommit.
	Files        map[string][]byte
	FirstCommits map[string]CommitHash

	// Call tracking
	ShowFileCalls    []string
	FirstCommitCalls []string
}

// RepoRoot implements GitClient
func (m *MockGitClient) RepoRoot(ctx context.Context) (string, error) {
	if m.RepoRootFunc != nil {
		return m.RepoRootFunc(ctx)
	}
	return "/mock/repo", nil
}

// MergeBase implements GitClient
func (m *MockGitClient) MergeBase(ctx context.Context, a, b string) (CommitHash, error) {
	if m.MergeBaseFunc != nil {
		return m.MergeBaseFunc(ctx, a, b)
	}
	return testCommitA, nil
}

// ListTreeFiles implements GitClient
func (m *MockGitClient) ListTreeFiles(ctx context.Context, commit CommitHash, dir string) ([]string, error) {
	if m.ListTreeFilesFunc != nil {
		return m.ListTreeFilesFunc(ctx, commit, dir)
	}
	var out []string
	for path := range m.Files {
		if len(path) > len(dir) && path[:len(dir)+1] == dir+"/" {
			out = append(out, path)
		}
	}
	return out, nil
}

// ShowFile implements GitClient
func (m *MockGitClient) ShowFile(ctx context.Context, commit CommitHash, path string) ([]byte, error) {
	m.ShowFileCalls = append(m.ShowFileCalls, path)
	if m.ShowFileFunc != nil {
		return m.ShowFileFunc(ctx, commit, path)
	}
	if contents, ok := m.Files[path]; ok {
		return contents, nil
	}
	return nil, fmt.Errorf("%w: %s at %s", ErrGitFileNotFound, path, commit)
}

// FirstCommit implements GitClient
func (m *MockGitClient) FirstCommit(ctx context.Context, start CommitHash, path string) (CommitHash, error) {
	m.FirstCommitCalls = append(m.FirstCommitCalls, path)
	if m.FirstCommitFunc != nil {
		return m.FirstCommitFunc(ctx, start, path)
	}
	if commit, ok := m.FirstCommits[path]; ok {
		return commit, nil
	}
	return "", fmt.Errorf("no commits touch %s", path)
}

// ============================================================================
// MockConfigStore
// ============================================================================

// MockConfigStore implements ConfigStore interface for testing
type MockConfigStore struct {
	LoadFunc func() (types.ProjectConfig, error)
	SaveFunc func(cfg types.ProjectConfig) error
	PathFunc func() string

	// State
	Config types.ProjectConfig

	// Call tracking
	LoadCalls int
	SaveCalls []types.ProjectConfig
}

// Load implements ConfigStore
func (m *MockConfigStore) Load() (types.ProjectConfig, error) {
	m.LoadCalls++
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return m.Config, nil
}

// Save implements ConfigStore
func (m *MockConfigStore) Save(cfg types.ProjectConfig) error {
	m.SaveCalls = append(m.SaveCalls, cfg)
	if m.SaveFunc != nil {
		return m.SaveFunc(cfg)
	}
	m.Config = cfg
	return nil
}

// Path implements ConfigStore
func (m *MockConfigStore) Path() string {
	if m.PathFunc != nil {
		return m.PathFunc()
	}
	return "/mock/repo/openapi.yml"
}

// ============================================================================
// MockGenerator
// ============================================================================

// MockGenerator implements Generator for testing: it serves documents from
// a map keyed by "service@version".
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, svc *ManagedService, version *semver.Version) (*Document, error)

	Docs map[string][]byte

	GenerateCalls []string
}

// Generate implements Generator
func (m *MockGenerator) Generate(ctx context.Context, svc *ManagedService, version *semver.Version) (*Document, error) {
	key := fmt.Sprintf("%s@%s", svc.Ident(), version)
	m.GenerateCalls = append(m.GenerateCalls, key)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, svc, version)
	}
	contents, ok := m.Docs[key]
	if !ok {
		return nil, fmt.Errorf("no document for %s", key)
	}
	return ParseDocument(contents)
}

// ============================================================================
// Fixture Helpers
// ============================================================================

const (
	testCommitA = CommitHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	testCommitB = CommitHash("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	testCommitC = CommitHash("cccccccccccccccccccccccccccccccccccccccc")
)

func newTestLogger() *logrus.Logger {
	return logging.NewNop()
}

// minimalDoc returns a valid OpenAPI document with the given info version
// and no paths.
func minimalDoc(version string) []byte {
	return []byte(fmt.Sprintf(`{
  "openapi": "3.0.3",
  "info": {"title": "Test API", "version": %q},
  "paths": {}
}`, version))
}

// docWithPaths returns a valid OpenAPI document containing one GET
// operation per path, each returning an empty 200.
func docWithPaths(version string, paths ...string) []byte {
	body := ""
	for i, p := range paths {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`%q: {"get": {"responses": {"200": {"description": "ok"}}}}`, p)
	}
	return []byte(fmt.Sprintf(`{
  "openapi": "3.0.3",
  "info": {"title": "Test API", "version": %q},
  "paths": {%s}
}`, version, body))
}

func parseDoc(t *testing.T, contents []byte) *Document {
	t.Helper()
	doc, err := ParseDocument(contents)
	if err != nil {
		t.Fatalf("parsing document: %v", err)
	}
	return doc
}

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		t.Fatalf("parsing version %q: %v", s, err)
	}
	return v
}

func mustIdent(t *testing.T, s string) types.ServiceIdent {
	t.Helper()
	ident, err := types.ParseServiceIdent(s)
	if err != nil {
		t.Fatalf("parsing ident %q: %v", s, err)
	}
	return ident
}

// newLockstepService builds a lockstep service named "nexus" at the given
// version.
func newLockstepService(t *testing.T, version string) *ManagedService {
	t.Helper()
	svc, err := buildService(types.ServiceConfig{
		Name:     "nexus",
		Lockstep: &types.LockstepConfig{Version: version},
		Generate: []string{"true"},
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

// newVersionedService builds a versioned service named "sled-agent" with
// the given majors, newest first.
func newVersionedService(t *testing.T, cfg types.VersionedConfig) *ManagedService {
	t.Helper()
	svc, err := buildService(types.ServiceConfig{
		Name:      "sled-agent",
		Versioned: &cfg,
		Generate:  []string{"true"},
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func versionList(labels map[uint64]string) []types.VersionConfig {
	var out []types.VersionConfig
	for major := uint64(len(labels)); major >= 1; major-- {
		out = append(out, types.VersionConfig{Version: major, Label: labels[major]})
	}
	return out
}

// newTestEnvironment returns an environment rooted at a scratch directory.
func newTestEnvironment(t *testing.T) *Environment {
	t.Helper()
	return NewEnvironment(t.TempDir(), "openapi", "main")
}

// newTestBlessedSource wires a BlessedSource to a mock git client without
// running merge-base.
func newTestBlessedSource(env *Environment, git GitClient) *BlessedSource {
	return &BlessedSource{
		env:          env,
		git:          git,
		log:          newTestLogger(),
		commit:       testCommitA,
		firstCommits: make(map[string]firstCommitResult),
	}
}

// blessedInline registers an inline document in git history and returns the
// corresponding snapshot entry.
func blessedInline(src *BlessedSource, git *MockGitClient, ident types.ServiceIdent, version *semver.Version, contents []byte) *BlessedEntry {
	name := types.VersionedFileName(ident, version, contents)
	git.Files[src.env.RepoDocPath(name.Path())] = contents
	return &BlessedEntry{name: name, src: src}
}

// blessedSnapshot groups entries by major version.
func blessedSnapshot(entries ...*BlessedEntry) *BlessedSnapshot {
	snap := &BlessedSnapshot{versions: map[uint64][]*BlessedEntry{}}
	for _, e := range entries {
		version, _ := e.Name().Version()
		snap.versions[version.Major()] = append(snap.versions[version.Major()], e)
	}
	return snap
}

// localFileFor builds a well-formed local inline file for a version.
func localFileFor(ident types.ServiceIdent, version *semver.Version, contents []byte) *LocalFile {
	name := types.VersionedFileName(ident, version, contents)
	return &LocalFile{name: name, contents: contents}
}

// localSnapshot groups local files by major version.
func localSnapshot(files ...*LocalFile) *LocalSnapshot {
	snap := &LocalSnapshot{versions: map[uint64][]*LocalFile{}}
	for _, f := range files {
		version, _ := f.Name().Version()
		snap.versions[version.Major()] = append(snap.versions[version.Major()], f)
	}
	return snap
}

// generatedSet parses and keys generated documents by version string.
func generatedSet(t *testing.T, docs map[string][]byte) map[string]GeneratedDoc {
	t.Helper()
	out := make(map[string]GeneratedDoc, len(docs))
	for version, contents := range docs {
		out[version] = GeneratedDoc{Doc: parseDoc(t, contents)}
	}
	return out
}

// problemKinds flattens problems to their kind strings.
func problemKinds(problems []Problem) []string {
	var out []string
	for _, p := range problems {
		out = append(out, p.Kind())
	}
	return out
}

func assertKinds(t *testing.T, problems []Problem, want ...string) {
	t.Helper()
	got := problemKinds(problems)
	if len(got) != len(want) {
		t.Fatalf("got problems %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("problem %d: got %q, want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}
