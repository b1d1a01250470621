package core

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// ResolutionKind classifies where a version's authoritative document comes
// from.
type ResolutionKind int

const (
	// ResolutionLockstep is the single current version of a lockstep
	// service; generated is authoritative.
	ResolutionLockstep ResolutionKind = iota
	// ResolutionBlessed means the version exists in committed history;
	// the committed document is authoritative.
	ResolutionBlessed
	// ResolutionNewLocally means the version is declared supported but
	// not committed yet; generated is authoritative.
	ResolutionNewLocally
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionLockstep:
		return "lockstep"
	case ResolutionBlessed:
		return "blessed"
	case ResolutionNewLocally:
		return "new-locally"
	default:
		return fmt.Sprintf("ResolutionKind(%d)", int(k))
	}
}

// GeneratedDoc is one version's generation outcome.
type GeneratedDoc struct {
	Doc *Document
	Err error
}

// ServiceInput is everything the engine consumes for one service: the
// immutable service description and the three sources' snapshots. The
// engine performs no I/O itself; the lazy parts (pointer resolution, first
// commits, extra-file reads) go through the adapters captured here.
type ServiceInput struct {
	Service *ManagedService
	// Generated holds one entry per supported version, keyed by version
	// string.
	Generated map[string]GeneratedDoc
	Blessed   *BlessedSnapshot
	Local     *LocalSnapshot

	// FirstCommit reports the oldest commit touching a path relative to
	// the documents directory. Nil disables pointer-storage decisions.
	FirstCommit func(ctx context.Context, rel string) (CommitHash, error)
	// ReadLocalFile reads a working tree file relative to the documents
	// directory, reporting whether it exists. Used only for derived
	// extra files.
	ReadLocalFile func(rel string) ([]byte, bool, error)
}

// Resolved is the engine's per-service result: a resolution kind per
// version plus every problem found. It is immutable once returned.
type Resolved struct {
	ident    types.ServiceIdent
	kinds    map[string]ResolutionKind
	problems []Problem
	notes    []string
}

// Ident returns the service the result belongs to.
func (r *Resolved) Ident() types.ServiceIdent { return r.ident }

// Kind returns the resolution kind for a version.
func (r *Resolved) Kind(version *semver.Version) (ResolutionKind, bool) {
	k, ok := r.kinds[version.String()]
	return k, ok
}

// Problems returns every problem found, version order first, service-level
// problems last.
func (r *Resolved) Problems() []Problem {
	out := make([]Problem, len(r.problems))
	copy(out, r.problems)
	return out
}

// ProblemsForVersion returns the problems attributed to one version.
func (r *Resolved) ProblemsForVersion(version *semver.Version) []Problem {
	var out []Problem
	for _, p := range r.problems {
		if v := p.Version(); v != nil && v.Equal(version) {
			out = append(out, p)
		}
	}
	return out
}

// GeneralProblems returns problems not attributed to any version.
func (r *Resolved) GeneralProblems() []Problem {
	var out []Problem
	for _, p := range r.problems {
		if p.Version() == nil {
			out = append(out, p)
		}
	}
	return out
}

// Notes returns informational notes (e.g. blessed versions that were
// deliberately removed from the supported list).
func (r *Resolved) Notes() []string {
	out := make([]string, len(r.notes))
	copy(out, r.notes)
	return out
}

// Fresh reports whether the service is fully consistent.
func (r *Resolved) Fresh() bool {
	return len(r.problems) == 0
}

// HasUnfixable reports whether any problem needs a human.
func (r *Resolved) HasUnfixable() bool {
	for _, p := range r.problems {
		if !p.Fixable() {
			return true
		}
	}
	return false
}

// Resolve runs the reconciliation algorithm for one service. Versions are
// evaluated independently; the latest-link check runs after all of them
// because it must observe the completed per-version outcomes.
func Resolve(ctx context.Context, in ServiceInput) *Resolved {
	r := &resolver{
		in: in,
		out: &Resolved{
			ident: in.Service.Ident(),
			kinds: map[string]ResolutionKind{},
		},
	}
	if in.Service.Versions().IsLockstep() {
		r.resolveLockstep(ctx)
	} else {
		r.resolveVersioned(ctx)
	}
	return r.out
}

type resolver struct {
	in  ServiceInput
	out *Resolved
}

func (r *resolver) report(p Problem) {
	r.out.problems = append(r.out.problems, p)
}

func (r *resolver) base(version *semver.Version) problemBase {
	return problemBase{ident: r.in.Service.Ident(), version: version}
}

// generated fetches the validated generated document for a version,
// reporting a problem and returning nil when it is unusable. A failing
// document short-circuits comparisons for this version only.
func (r *resolver) generated(ctx context.Context, version *semver.Version) *Document {
	gen, ok := r.in.Generated[version.String()]
	if !ok || gen.Err != nil {
		err := gen.Err
		if !ok {
			err = fmt.Errorf("no generated document")
		}
		r.report(&GenerationFailed{problemBase: r.base(version), Err: err})
		return nil
	}
	if findings := gen.Doc.Validate(ctx); len(findings) > 0 {
		r.report(&GeneratedValidationFailed{problemBase: r.base(version), Findings: findings})
		return nil
	}
	return gen.Doc
}

func (r *resolver) resolveLockstep(ctx context.Context) {
	svc := r.in.Service
	version := svc.Versions().Latest()
	r.out.kinds[version.String()] = ResolutionLockstep

	gen := r.generated(ctx, version)
	if gen == nil {
		return
	}

	name := types.LockstepFileName(svc.Ident())
	local := r.in.Local.Lockstep()
	switch {
	case local == nil:
		r.report(&LockstepStale{
			problemBase: r.base(version),
			Name:        name,
			Generated:   gen,
			WasMissing:  true,
		})
	case !bytes.Equal(local.Contents(), gen.Contents()):
		r.report(&LockstepStale{
			problemBase: r.base(version),
			Name:        name,
			Generated:   gen,
		})
	}

	r.checkExtraFiles(version, gen)
}

func (r *resolver) resolveVersioned(ctx context.Context) {
	svc := r.in.Service
	supported := svc.Versions().All()
	latest := svc.Versions().Latest()

	supportedMajors := map[uint64]bool{}
	for _, v := range supported {
		supportedMajors[v.Major()] = true
	}

	// Versions are independent of each other; evaluate ascending for
	// deterministic problem ordering.
	var latestDoc *Document
	for _, version := range supported {
		doc := r.resolveVersion(ctx, version, latest)
		if version.Equal(latest) {
			latestDoc = doc
		}
	}

	supportedList, _ := svc.Versions().Supported()
	r.reportOrphans(supportedMajors, supportedList)
	r.checkLatestLink(latest)
	if latestDoc != nil {
		r.checkExtraFiles(latest, latestDoc)
	}

	for _, removed := range r.in.Blessed.Removed() {
		r.out.notes = append(r.out.notes, fmt.Sprintf(
			"version %s exists in history but is no longer supported (%s)",
			removed.Version, removed.Name))
	}
}

// resolveVersion evaluates one supported version and returns its validated
// generated document, or nil.
func (r *resolver) resolveVersion(ctx context.Context, version, latest *semver.Version) *Document {
	blessed := r.in.Blessed.ForVersion(version.Major())
	if len(blessed) > 0 {
		r.out.kinds[version.String()] = ResolutionBlessed
	} else {
		r.out.kinds[version.String()] = ResolutionNewLocally
	}

	gen := r.generated(ctx, version)
	if gen == nil {
		return nil
	}

	if len(blessed) > 0 {
		r.resolveBlessedVersion(ctx, version, latest, blessed, gen)
	} else {
		r.resolveNewVersion(version, gen)
	}
	return gen
}

func (r *resolver) resolveBlessedVersion(ctx context.Context, version, latest *semver.Version, entries []*BlessedEntry, gen *Document) {
	entry := pickBlessedEntry(entries)
	blessedDoc, err := entry.Resolve(ctx)
	if err != nil {
		r.report(&BlessedUnresolvable{problemBase: r.base(version), Name: entry.Name(), Err: err})
		return
	}

	report := Classify(blessedDoc, gen)
	switch report.Relationship {
	case Identical:
	case WireCompatible:
		if r.in.Service.RequireExactLatest() && version.Equal(latest) {
			r.report(&BlessedLatestBytewiseMismatch{problemBase: r.base(version)})
		}
	default:
		// History cannot be rewritten. Even compatible drift means the
		// code no longer produces the committed contract.
		r.report(&BlessedVersionBroken{problemBase: r.base(version), Report: report})
	}

	r.checkBlessedLocalCopy(ctx, version, latest, entry, blessedDoc)
}

// pickBlessedEntry prefers the inline form when history transiently holds
// both an inline document and its pointer.
func pickBlessedEntry(entries []*BlessedEntry) *BlessedEntry {
	for _, e := range entries {
		if !e.IsGitRef() {
			return e
		}
	}
	return entries[0]
}

// checkBlessedLocalCopy verifies the working tree mirrors a committed
// version, in whichever storage form the service wants.
func (r *resolver) checkBlessedLocalCopy(ctx context.Context, version, latest *semver.Version, entry *BlessedEntry, blessedDoc *Document) {
	jsonName := entry.Name().ToJSON()
	wantGitRef, fcProblem := r.wantGitRefStorage(ctx, version, latest, jsonName)

	var jsonLocal, refLocal *LocalFile
	var extra []types.SpecFileName
	for _, f := range r.in.Local.ForVersion(version.Major()) {
		switch {
		case f.Name().Equal(jsonName):
			jsonLocal = f
		case f.Name().Equal(jsonName.ToGitRef()):
			refLocal = f
		default:
			extra = append(extra, f.Name())
		}
	}
	if len(extra) > 0 {
		r.report(&BlessedVersionExtraLocal{problemBase: r.base(version), Names: extra})
	}
	if fcProblem != nil && refLocal != nil {
		// Only an existing pointer file makes the undecidable first
		// commit a problem worth surfacing.
		r.report(fcProblem)
		return
	}

	switch {
	case jsonLocal == nil && refLocal == nil:
		name, contents := r.authoritativeForm(entry, jsonName, blessedDoc, wantGitRef)
		r.report(&BlessedVersionMissingLocal{problemBase: r.base(version), Name: name, Contents: contents})

	case jsonLocal != nil && refLocal != nil:
		keep, remove := jsonName, jsonName.ToGitRef()
		if wantGitRef {
			keep, remove = remove, keep
		}
		r.report(&DuplicateLocalFile{problemBase: r.base(version), Keep: keep, Remove: remove})

	case jsonLocal != nil && wantGitRef:
		ref := r.pointerFor(entry, jsonName)
		r.report(&BlessedVersionShouldBeGitRef{problemBase: r.base(version), JSONName: jsonName, Ref: ref})

	case refLocal != nil && !wantGitRef:
		r.report(&GitRefShouldBeJSON{
			problemBase: r.base(version),
			GitRefName:  jsonName.ToGitRef(),
			Contents:    blessedDoc.Contents(),
		})

	case jsonLocal != nil:
		if !bytes.Equal(jsonLocal.Contents(), blessedDoc.Contents()) {
			// The name's content hash makes this unreachable unless
			// hashes collide; blessed still wins.
			name, contents := r.authoritativeForm(entry, jsonName, blessedDoc, wantGitRef)
			r.report(&BlessedVersionMissingLocal{problemBase: r.base(version), Name: name, Contents: contents})
		}
	}
}

// wantGitRefStorage decides whether a blessed version should be stored as
// a pointer file: only when the service opts in, the version is not the
// latest, and the version's file predates the latest version's file in
// history. An unknown first commit for the latest file means never
// convert; an undecidable first commit for the version itself is returned
// as a potential problem for the caller to weigh.
func (r *resolver) wantGitRefStorage(ctx context.Context, version, latest *semver.Version, jsonName types.SpecFileName) (bool, Problem) {
	if !r.in.Service.GitRefStorage() || version.Equal(latest) || r.in.FirstCommit == nil {
		return false, nil
	}

	latestEntries := r.in.Blessed.ForVersion(latest.Major())
	if len(latestEntries) == 0 {
		// Latest is not committed yet; its first commit is unknown.
		return false, nil
	}
	latestFirst, err := r.in.FirstCommit(ctx, pickBlessedEntry(latestEntries).Name().ToJSON().Path())
	if err != nil {
		return false, nil
	}
	versionFirst, err := r.in.FirstCommit(ctx, jsonName.Path())
	if err != nil {
		return false, &GitRefFirstCommitUnknown{
			problemBase: r.base(version),
			Name:        jsonName.ToGitRef(),
			Err:         err,
		}
	}
	return versionFirst != latestFirst, nil
}

// authoritativeForm returns the file to materialize for a blessed version:
// the inline document, or its pointer form when pointer storage applies.
func (r *resolver) authoritativeForm(entry *BlessedEntry, jsonName types.SpecFileName, blessedDoc *Document, wantGitRef bool) (types.SpecFileName, []byte) {
	if !wantGitRef {
		return jsonName, blessedDoc.Contents()
	}
	ref := r.pointerFor(entry, jsonName)
	contents, err := ref.Serialize()
	if err != nil {
		// yaml cannot fail on two strings; fall back to inline anyway.
		return jsonName, blessedDoc.Contents()
	}
	return jsonName.ToGitRef(), contents
}

// pointerFor derives the pointer for a blessed version: an existing
// pointer in history is reused, otherwise the pointer names the blessed
// commit, which is guaranteed to contain the inline file.
func (r *resolver) pointerFor(entry *BlessedEntry, jsonName types.SpecFileName) GitRef {
	if entry.IsGitRef() {
		return *entry.Ref()
	}
	return GitRef{
		Commit: entry.src.Commit().String(),
		Path:   entry.src.env.RepoDocPath(jsonName.Path()),
	}
}

// resolveNewVersion handles a version that exists only locally: the
// working tree must track the generated document exactly, since nothing
// external depends on it yet.
func (r *resolver) resolveNewVersion(version *semver.Version, gen *Document) {
	expected := types.VersionedFileName(r.in.Service.Ident(), version, gen.Contents())

	var exact bool
	var others []types.SpecFileName
	for _, f := range r.in.Local.ForVersion(version.Major()) {
		if f.Name().Equal(expected) {
			exact = true
		} else {
			others = append(others, f.Name())
		}
	}

	switch {
	case exact && len(others) == 0:
	case exact:
		r.report(&LocalVersionExtra{problemBase: r.base(version), Names: others})
	default:
		r.report(&LocalVersionMissingLocal{
			problemBase: r.base(version),
			Name:        expected,
			Contents:    gen.Contents(),
			Stale:       others,
		})
	}
}

// reportOrphans surfaces files the naming rules cannot attribute to any
// supported version/content pair.
func (r *resolver) reportOrphans(supportedMajors map[uint64]bool, supported *types.SupportedVersions) {
	oldest := supported.Oldest().Major()

	for _, o := range r.in.Local.Orphans() {
		p := &LocalSpecFileOrphaned{
			problemBase: r.base(o.Version),
			RelPath:     o.RelPath,
			Reason:      o.Reason,
		}
		if o.Version != nil && o.Version.Major() < oldest {
			p.BelowOldest = true
		}
		r.report(p)
	}

	for _, major := range r.in.Local.Majors() {
		if supportedMajors[major] {
			continue
		}
		for _, f := range r.in.Local.ForVersion(major) {
			version, _ := f.Name().Version()
			r.report(&LocalSpecFileOrphaned{
				problemBase: r.base(version),
				RelPath:     f.Name().Path(),
				Reason:      fmt.Sprintf("version %s is not in the supported list", version),
				BelowOldest: major < oldest,
			})
		}
	}
}

// checkLatestLink runs after all versions: the link must point at the file
// for the version at the head of the supported list.
func (r *resolver) checkLatestLink(latest *semver.Version) {
	target, ok := r.expectedLatestBasename(latest)
	if !ok {
		// Without a resolvable latest document there is no defensible
		// target; the underlying problem is already reported.
		return
	}

	state, found := r.in.Local.LatestLink()
	switch state {
	case LatestLinkAbsent:
		r.report(&MissingLatestLink{problemBase: r.base(nil), Target: target})
	case LatestLinkNotSymlink:
		r.report(&WrongLatestLink{problemBase: r.base(nil), Target: target})
	case LatestLinkSymlink:
		if found != target {
			r.report(&WrongLatestLink{problemBase: r.base(nil), Found: found, Target: target})
		}
	}
}

// expectedLatestBasename derives the basename the latest link must point
// at: the blessed file's inline form when the latest version is committed,
// otherwise the generated document's content-addressed name.
func (r *resolver) expectedLatestBasename(latest *semver.Version) (string, bool) {
	if entries := r.in.Blessed.ForVersion(latest.Major()); len(entries) > 0 {
		return pickBlessedEntry(entries).Name().ToJSON().Basename(), true
	}
	gen, ok := r.in.Generated[latest.String()]
	if !ok || gen.Err != nil {
		return "", false
	}
	name := types.VersionedFileName(r.in.Service.Ident(), latest, gen.Doc.Contents())
	return name.Basename(), true
}

// checkExtraFiles compares the derived files recorded by the service's
// hook against the working tree.
func (r *resolver) checkExtraFiles(version *semver.Version, latestDoc *Document) {
	hook := r.in.Service.ExtraFiles()
	if hook == nil || r.in.ReadLocalFile == nil {
		return
	}
	files, err := hook(latestDoc.OpenAPI())
	if err != nil {
		r.report(&GenerationFailed{
			problemBase: r.base(version),
			Err:         fmt.Errorf("deriving extra files: %w", err),
		})
		return
	}
	for _, rel := range sortedKeys(files) {
		want := files[rel]
		got, exists, err := r.in.ReadLocalFile(rel)
		if err != nil {
			r.report(&GenerationFailed{
				problemBase: r.base(version),
				Err:         fmt.Errorf("reading %s: %w", rel, err),
			})
			continue
		}
		if !exists || !bytes.Equal(got, want) {
			r.report(&ExtraFileStale{problemBase: r.base(version), RelPath: rel, Contents: want})
		}
	}
}
