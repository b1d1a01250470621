package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// BlessedEntry is one version's document as committed history records it:
// either inline content, or a pointer file naming a commit and path to read
// the content from. Pointer resolution is lazy and memoized for the run.
type BlessedEntry struct {
	name types.SpecFileName
	ref  *GitRef // set for pointer entries

	src *BlessedSource

	resolveOnce sync.Once
	resolved    *Document
	resolveErr  error
}

// Name returns the entry's file name in history.
func (e *BlessedEntry) Name() types.SpecFileName { return e.name }

// IsGitRef reports whether this entry is stored as a pointer file.
func (e *BlessedEntry) IsGitRef() bool { return e.ref != nil }

// Ref returns the pointer for pointer entries, or nil.
func (e *BlessedEntry) Ref() *GitRef { return e.ref }

// Resolve returns the entry's document, dereferencing a pointer if needed.
// The result is cached for the rest of the run; re-resolving always yields
// the same bytes.
func (e *BlessedEntry) Resolve(ctx context.Context) (*Document, error) {
	e.resolveOnce.Do(func() {
		e.resolved, e.resolveErr = e.resolve(ctx)
	})
	return e.resolved, e.resolveErr
}

func (e *BlessedEntry) resolve(ctx context.Context) (*Document, error) {
	var contents []byte
	var err error
	if e.ref != nil {
		contents, err = e.src.git.ShowFile(ctx, CommitHash(e.ref.Commit), e.ref.Path)
		if err != nil {
			return nil, fmt.Errorf("dereferencing %s: %w", e.name, err)
		}
	} else {
		contents, err = e.src.git.ShowFile(ctx, e.src.commit, e.src.env.RepoDocPath(e.name.Path()))
		if err != nil {
			return nil, fmt.Errorf("reading blessed %s: %w", e.name, err)
		}
	}

	wantHash, _ := e.name.Hash()
	if got := types.HashContents(contents); got != wantHash {
		return nil, fmt.Errorf(
			"blessed %s: content hash %s does not match the %s in the file name",
			e.name, got, wantHash)
	}
	doc, err := ParseDocument(contents)
	if err != nil {
		return nil, fmt.Errorf("blessed %s: %w", e.name, err)
	}
	if want, _ := e.name.Version(); !doc.Version().Equal(want) {
		return nil, fmt.Errorf(
			"blessed %s: document declares version %s but the file name says %s",
			e.name, doc.Version(), want)
	}
	return doc, nil
}

// RemovedVersion records a blessed version that is no longer in the
// supported list. Removal is deliberate and expected over a service's
// lifetime; it is surfaced as a note, not a problem.
type RemovedVersion struct {
	Version *semver.Version
	Name    types.SpecFileName
}

// BlessedSnapshot is everything committed history holds for one service at
// the blessed commit.
type BlessedSnapshot struct {
	versions map[uint64][]*BlessedEntry
	removed  []RemovedVersion
}

// ForVersion returns the blessed entries for the given major version.
// History normally holds exactly one; transitional states (a pointer file
// and its inline form committed together) yield more.
func (s *BlessedSnapshot) ForVersion(major uint64) []*BlessedEntry {
	return s.versions[major]
}

// Removed returns blessed versions absent from the supported list,
// ascending.
func (s *BlessedSnapshot) Removed() []RemovedVersion {
	return s.removed
}

// BlessedSource is the blessed-source adapter: it reads document files as
// they exist at the merge base of HEAD and the blessed branch.
type BlessedSource struct {
	env *Environment
	git GitClient
	log *logrus.Logger

	commit CommitHash

	mu           sync.Mutex
	firstCommits map[string]firstCommitResult
}

type firstCommitResult struct {
	commit CommitHash
	err    error
}

// NewBlessedSource determines the blessed commit and creates the adapter.
func NewBlessedSource(ctx context.Context, env *Environment, git GitClient, log *logrus.Logger) (*BlessedSource, error) {
	commit, err := git.MergeBase(ctx, "HEAD", env.BlessedBranch())
	if err != nil {
		return nil, fmt.Errorf(ErrMergeBaseFailedMsg, env.BlessedBranch(), err, env.BlessedBranch())
	}
	log.WithFields(logrus.Fields{
		"branch": env.BlessedBranch(),
		"commit": commit.Short(),
	}).Debug("resolved blessed commit")

	return &BlessedSource{
		env:          env,
		git:          git,
		log:          log,
		commit:       commit,
		firstCommits: make(map[string]firstCommitResult),
	}, nil
}

// Commit returns the blessed commit.
func (s *BlessedSource) Commit() CommitHash { return s.commit }

// Load lists one versioned service's files at the blessed commit. Lockstep
// services have no blessed contract to protect, so their snapshot is empty.
func (s *BlessedSource) Load(ctx context.Context, svc *ManagedService) (*BlessedSnapshot, error) {
	snap := &BlessedSnapshot{versions: map[uint64][]*BlessedEntry{}}
	if svc.Versions().IsLockstep() {
		return snap, nil
	}

	ident := svc.Ident()
	dir := s.env.RepoDocPath(ident.String())
	files, err := s.git.ListTreeFiles(ctx, s.commit, dir)
	if err != nil {
		return nil, fmt.Errorf("listing blessed files for %s: %w", ident, err)
	}

	supported := map[uint64]bool{}
	for _, v := range svc.Versions().All() {
		supported[v.Major()] = true
	}

	for _, repoPath := range files {
		basename := repoPath[strings.LastIndex(repoPath, "/")+1:]
		if basename == ident.String()+types.LatestLinkSuffix {
			continue
		}
		name, ok, err := types.ParseVersionedBasename(ident, basename)
		if err != nil || !ok {
			// History can hold files this tool never managed; they
			// are not this run's concern.
			continue
		}

		entry := &BlessedEntry{name: name, src: s}
		if name.IsGitRef() {
			contents, err := s.git.ShowFile(ctx, s.commit, repoPath)
			if err != nil {
				return nil, fmt.Errorf("reading blessed %s: %w", name, err)
			}
			ref, err := ParseGitRef(contents)
			if err != nil {
				return nil, fmt.Errorf("blessed %s: %w", name, err)
			}
			entry.ref = &ref
		}

		version, _ := name.Version()
		if !supported[version.Major()] {
			snap.removed = append(snap.removed, RemovedVersion{Version: version, Name: name})
			continue
		}
		snap.versions[version.Major()] = append(snap.versions[version.Major()], entry)
	}

	sort.Slice(snap.removed, func(i, j int) bool {
		return snap.removed[i].Version.LessThan(snap.removed[j].Version)
	})
	return snap, nil
}

// FirstCommit returns the oldest commit reachable from the blessed commit
// that touched the given path (relative to the documents directory),
// memoized for the run.
func (s *BlessedSource) FirstCommit(ctx context.Context, rel string) (CommitHash, error) {
	repoPath := s.env.RepoDocPath(rel)

	s.mu.Lock()
	if res, ok := s.firstCommits[repoPath]; ok {
		s.mu.Unlock()
		return res.commit, res.err
	}
	s.mu.Unlock()

	commit, err := s.git.FirstCommit(ctx, s.commit, repoPath)

	s.mu.Lock()
	s.firstCommits[repoPath] = firstCommitResult{commit: commit, err: err}
	s.mu.Unlock()
	return commit, err
}
