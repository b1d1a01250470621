package core

import (
	"fmt"
	"os"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// LocalFile is one well-formed document file found in the working tree.
// Exactly one of doc and ref is set: doc for inline .json files, ref for
// .json.gitref pointer files.
type LocalFile struct {
	name     types.SpecFileName
	contents []byte
	doc      *Document
	ref      *GitRef
}

// Name returns the parsed file name.
func (f *LocalFile) Name() types.SpecFileName { return f.name }

// Contents returns the file's raw bytes.
func (f *LocalFile) Contents() []byte { return f.contents }

// LocalOrphan is a file in a service's document area whose name or content
// does not match anything the naming rules could derive. Orphans are never
// deleted automatically: either the file is genuinely stale or someone
// hand-edited it, and telling those apart needs a human.
type LocalOrphan struct {
	// RelPath is relative to the documents directory.
	RelPath string
	Reason  string
	// Version is set when the name parsed far enough to claim one.
	Version *semver.Version
}

// LatestLinkState describes what was found at the latest-link path.
type LatestLinkState int

const (
	// LatestLinkAbsent means no file exists at the link path.
	LatestLinkAbsent LatestLinkState = iota
	// LatestLinkSymlink means a symlink exists; its target is recorded.
	LatestLinkSymlink
	// LatestLinkNotSymlink means something other than a symlink occupies
	// the path.
	LatestLinkNotSymlink
)

// LocalSnapshot is everything the working tree currently holds for one
// service: the lockstep file or per-version files, the latest link, and any
// files that could not be attributed to a version.
type LocalSnapshot struct {
	lockstep *LocalFile
	versions map[uint64][]*LocalFile

	latestState  LatestLinkState
	latestTarget string // symlink target, for LatestLinkSymlink

	orphans []LocalOrphan
}

// Lockstep returns the lockstep document file, or nil.
func (s *LocalSnapshot) Lockstep() *LocalFile { return s.lockstep }

// ForVersion returns the files claiming the given major version.
func (s *LocalSnapshot) ForVersion(major uint64) []*LocalFile {
	return s.versions[major]
}

// Majors returns the major versions local files claim, ascending.
func (s *LocalSnapshot) Majors() []uint64 {
	out := make([]uint64, 0, len(s.versions))
	for m := range s.versions {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LatestLink returns the state of the latest link and, for symlinks, its
// target basename.
func (s *LocalSnapshot) LatestLink() (LatestLinkState, string) {
	return s.latestState, s.latestTarget
}

// Orphans returns files that could not be attributed to a supported
// version/content pair.
func (s *LocalSnapshot) Orphans() []LocalOrphan {
	return s.orphans
}

// LocalSource is the local-source adapter: it scans the working tree's
// documents directory for a service's files.
type LocalSource struct {
	env *Environment
	log *logrus.Logger
}

// NewLocalSource creates a LocalSource for the given environment.
func NewLocalSource(env *Environment, log *logrus.Logger) *LocalSource {
	return &LocalSource{env: env, log: log}
}

// ReadFile reads one working tree file relative to the documents
// directory, reporting whether it exists.
func (s *LocalSource) ReadFile(rel string) ([]byte, bool, error) {
	contents, err := os.ReadFile(s.env.AbsDocPath(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return contents, true, nil
}

// Load scans the working tree for one service's files. Missing directories
// are not errors: a service with nothing on disk yields an empty snapshot.
func (s *LocalSource) Load(svc *ManagedService) (*LocalSnapshot, error) {
	if svc.Versions().IsLockstep() {
		return s.loadLockstep(svc)
	}
	return s.loadVersioned(svc)
}

func (s *LocalSource) loadLockstep(svc *ManagedService) (*LocalSnapshot, error) {
	snap := &LocalSnapshot{versions: map[uint64][]*LocalFile{}}

	name := types.LockstepFileName(svc.Ident())
	contents, err := os.ReadFile(s.env.AbsSpecPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	// Lockstep is compared byte for byte against the generated document,
	// so the file is kept unparsed.
	snap.lockstep = &LocalFile{name: name, contents: contents}
	return snap, nil
}

func (s *LocalSource) loadVersioned(svc *ManagedService) (*LocalSnapshot, error) {
	snap := &LocalSnapshot{versions: map[uint64][]*LocalFile{}}
	ident := svc.Ident()
	dir := s.env.AbsDocPath(ident.String())

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	latestBase := ident.String() + types.LatestLinkSuffix
	for _, entry := range entries {
		basename := entry.Name()
		relPath := ident.String() + "/" + basename

		if basename == latestBase {
			s.loadLatestLink(snap, dir+"/"+basename)
			continue
		}
		if entry.IsDir() {
			snap.orphans = append(snap.orphans, LocalOrphan{
				RelPath: relPath,
				Reason:  "unexpected directory",
			})
			continue
		}

		name, ok, err := types.ParseVersionedBasename(ident, basename)
		if err != nil {
			snap.orphans = append(snap.orphans, LocalOrphan{
				RelPath: relPath,
				Reason:  err.Error(),
			})
			continue
		}
		if !ok {
			snap.orphans = append(snap.orphans, LocalOrphan{
				RelPath: relPath,
				Reason:  "file name does not match any managed document",
			})
			continue
		}

		file, orphan := s.loadVersionedFile(name, relPath)
		if orphan != nil {
			snap.orphans = append(snap.orphans, *orphan)
			continue
		}
		version, _ := name.Version()
		snap.versions[version.Major()] = append(snap.versions[version.Major()], file)
	}
	return snap, nil
}

// loadVersionedFile reads and cross-checks one versioned file. A file whose
// content hash or declared version disagrees with its own name is an
// orphan, not a load error.
func (s *LocalSource) loadVersionedFile(name types.SpecFileName, relPath string) (*LocalFile, *LocalOrphan) {
	version, _ := name.Version()
	contents, err := os.ReadFile(s.env.AbsDocPath(relPath))
	if err != nil {
		return nil, &LocalOrphan{RelPath: relPath, Reason: err.Error(), Version: version}
	}

	if name.IsGitRef() {
		ref, err := ParseGitRef(contents)
		if err != nil {
			return nil, &LocalOrphan{RelPath: relPath, Reason: err.Error(), Version: version}
		}
		return &LocalFile{name: name, contents: contents, ref: &ref}, nil
	}

	nameHash, _ := name.Hash()
	if got := types.HashContents(contents); got != nameHash {
		return nil, &LocalOrphan{
			RelPath: relPath,
			Reason:  fmt.Sprintf("content hash %s does not match the %s in the file name", got, nameHash),
			Version: version,
		}
	}
	doc, err := ParseDocument(contents)
	if err != nil {
		return nil, &LocalOrphan{RelPath: relPath, Reason: err.Error(), Version: version}
	}
	if !doc.Version().Equal(version) {
		return nil, &LocalOrphan{
			RelPath: relPath,
			Reason: fmt.Sprintf("document declares version %s but the file name says %s",
				doc.Version(), version),
			Version: version,
		}
	}
	return &LocalFile{name: name, contents: contents, doc: doc}, nil
}

func (s *LocalSource) loadLatestLink(snap *LocalSnapshot, absPath string) {
	info, err := os.Lstat(absPath)
	if err != nil {
		snap.latestState = LatestLinkAbsent
		return
	}
	if info.Mode()&os.ModeSymlink == 0 {
		snap.latestState = LatestLinkNotSymlink
		return
	}
	target, err := os.Readlink(absPath)
	if err != nil {
		snap.latestState = LatestLinkNotSymlink
		return
	}
	snap.latestState = LatestLinkSymlink
	snap.latestTarget = target
}
