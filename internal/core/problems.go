package core

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// Problem is one discrepancy between the blessed, generated, and local
// sources. Problems form a closed set: each variant is statically fixable
// or not, and fixable variants carry everything needed to derive a Fix.
//
// Problems are not errors. Errors are unexpected (a broken pointer, a git
// failure); problems are the expected output of a check.
type Problem interface {
	// Service returns the ident of the affected service.
	Service() types.ServiceIdent
	// Version returns the affected version, or nil for service-level
	// problems.
	Version() *semver.Version
	// Kind returns the problem's stable machine-readable name.
	Kind() string
	// Message returns one remediation sentence: what happened and what
	// to do about it.
	Message() string
	// Fixable reports whether the fix planner can resolve this problem.
	Fixable() bool

	problem()
}

type problemBase struct {
	ident   types.ServiceIdent
	version *semver.Version
}

func (p problemBase) Service() types.ServiceIdent { return p.ident }
func (p problemBase) Version() *semver.Version    { return p.version }
func (p problemBase) problem()                    {}

// LockstepStale: the lockstep document on disk is missing or differs from
// the generated one. Byte equality is the bar; the local copy is supposed
// to be the generated copy.
type LockstepStale struct {
	problemBase
	Name types.SpecFileName
	// Generated is the authoritative document.
	Generated *Document
	// WasMissing distinguishes a missing file from a differing one.
	WasMissing bool
}

func (p *LockstepStale) Kind() string  { return "lockstep-stale" }
func (p *LockstepStale) Fixable() bool { return true }
func (p *LockstepStale) Message() string {
	if p.WasMissing {
		return fmt.Sprintf("%s is missing; run 'openapi-manager generate' to write it", p.Name)
	}
	return fmt.Sprintf("%s is out of date with the service code; run 'openapi-manager generate' to regenerate it", p.Name)
}

// GenerationFailed: the generator could not produce a document for this
// version at all.
type GenerationFailed struct {
	problemBase
	Err error
}

func (p *GenerationFailed) Kind() string  { return "generation-failed" }
func (p *GenerationFailed) Fixable() bool { return false }
func (p *GenerationFailed) Message() string {
	return fmt.Sprintf("generating the document for version %s failed (%v); fix the generator before rechecking", p.version, p.Err)
}

// GeneratedValidationFailed: the freshly generated document does not pass
// schema-level validation. Only the service-interface code can fix this.
type GeneratedValidationFailed struct {
	problemBase
	Findings []string
}

func (p *GeneratedValidationFailed) Kind() string  { return "generated-validation-failed" }
func (p *GeneratedValidationFailed) Fixable() bool { return false }
func (p *GeneratedValidationFailed) Message() string {
	return fmt.Sprintf("the generated document for version %s fails validation (%s); change the service interface code",
		p.version, strings.Join(p.Findings, "; "))
}

// BlessedVersionBroken: the generated document for a committed version is
// no longer compatible with the committed contract. History cannot be
// rewritten, so this is never auto-fixable: revert the breaking change or
// introduce a new version.
type BlessedVersionBroken struct {
	problemBase
	Report CompatReport
}

func (p *BlessedVersionBroken) Kind() string  { return "blessed-version-broken" }
func (p *BlessedVersionBroken) Fixable() bool { return false }
func (p *BlessedVersionBroken) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "the code has changed the committed contract for version %s (%s); revert the change or add a new version instead",
		p.version, p.Report.Relationship)
	for _, d := range p.Report.Differences {
		fmt.Fprintf(&b, "\n    %s", d)
	}
	return b.String()
}

// BlessedUnresolvable: a committed entry for this version could not be
// read back (a pointer names a missing commit or path, or the committed
// bytes fail their own cross-checks).
type BlessedUnresolvable struct {
	problemBase
	Name types.SpecFileName
	Err  error
}

func (p *BlessedUnresolvable) Kind() string  { return "blessed-unresolvable" }
func (p *BlessedUnresolvable) Fixable() bool { return false }
func (p *BlessedUnresolvable) Message() string {
	return fmt.Sprintf("the committed document %s cannot be resolved (%v); repair history or the pointer file by hand", p.Name, p.Err)
}

// BlessedLatestBytewiseMismatch: with require_exact_latest enabled, the
// latest blessed document must match the generated one byte for byte.
type BlessedLatestBytewiseMismatch struct {
	problemBase
}

func (p *BlessedLatestBytewiseMismatch) Kind() string  { return "blessed-latest-bytewise-mismatch" }
func (p *BlessedLatestBytewiseMismatch) Fixable() bool { return false }
func (p *BlessedLatestBytewiseMismatch) Message() string {
	return fmt.Sprintf("version %s is committed but the generated document differs textually and this service requires an exact latest; add a new version for the change", p.version)
}

// BlessedVersionMissingLocal: the working tree does not mirror a committed
// version (missing, or present with the wrong bytes). Blessed always wins.
type BlessedVersionMissingLocal struct {
	problemBase
	// Name and Contents describe the authoritative file to materialize;
	// for pointer storage Name is the .json.gitref form and Contents the
	// serialized pointer.
	Name     types.SpecFileName
	Contents []byte
}

func (p *BlessedVersionMissingLocal) Kind() string  { return "blessed-version-missing-local" }
func (p *BlessedVersionMissingLocal) Fixable() bool { return true }
func (p *BlessedVersionMissingLocal) Message() string {
	return fmt.Sprintf("the working tree does not carry the committed document for version %s; run 'openapi-manager generate' to restore %s", p.version, p.Name)
}

// BlessedVersionExtraLocal: the working tree carries additional files for
// a committed version beyond its authoritative one.
type BlessedVersionExtraLocal struct {
	problemBase
	Names []types.SpecFileName
}

func (p *BlessedVersionExtraLocal) Kind() string  { return "blessed-version-extra-local" }
func (p *BlessedVersionExtraLocal) Fixable() bool { return true }
func (p *BlessedVersionExtraLocal) Message() string {
	return fmt.Sprintf("extra files present for committed version %s (%s); run 'openapi-manager generate' to remove them",
		p.version, joinNames(p.Names))
}

// BlessedVersionShouldBeGitRef: a superseded committed version is stored
// inline but this service stores old versions as pointer files.
type BlessedVersionShouldBeGitRef struct {
	problemBase
	JSONName types.SpecFileName
	Ref      GitRef
}

func (p *BlessedVersionShouldBeGitRef) Kind() string  { return "should-be-git-ref" }
func (p *BlessedVersionShouldBeGitRef) Fixable() bool { return true }
func (p *BlessedVersionShouldBeGitRef) Message() string {
	return fmt.Sprintf("version %s is superseded and can be stored as a pointer into history; run 'openapi-manager generate' to convert %s", p.version, p.JSONName)
}

// GitRefShouldBeJSON: a pointer file exists for a version that must be
// stored inline (the latest version, or a service without pointer storage).
type GitRefShouldBeJSON struct {
	problemBase
	GitRefName types.SpecFileName
	Contents   []byte
}

func (p *GitRefShouldBeJSON) Kind() string  { return "should-be-json" }
func (p *GitRefShouldBeJSON) Fixable() bool { return true }
func (p *GitRefShouldBeJSON) Message() string {
	return fmt.Sprintf("version %s must be stored inline, not as a pointer; run 'openapi-manager generate' to convert %s", p.version, p.GitRefName)
}

// GitRefFirstCommitUnknown: an existing pointer file cannot be traced to a
// first commit, so its standing cannot be decided automatically.
type GitRefFirstCommitUnknown struct {
	problemBase
	Name types.SpecFileName
	Err  error
}

func (p *GitRefFirstCommitUnknown) Kind() string  { return "git-ref-first-commit-unknown" }
func (p *GitRefFirstCommitUnknown) Fixable() bool { return false }
func (p *GitRefFirstCommitUnknown) Message() string {
	return fmt.Sprintf("cannot determine the first commit of %s (%v); inspect the pointer file by hand", p.Name, p.Err)
}

// LocalVersionMissingLocal: a version not yet committed must track the
// generated document exactly; the working tree is missing it or carries
// different bytes.
type LocalVersionMissingLocal struct {
	problemBase
	// Name and Contents describe the file to write; Stale lists
	// wrong-content files for the same version to remove first.
	Name     types.SpecFileName
	Contents []byte
	Stale    []types.SpecFileName
}

func (p *LocalVersionMissingLocal) Kind() string  { return "local-version-stale" }
func (p *LocalVersionMissingLocal) Fixable() bool { return true }
func (p *LocalVersionMissingLocal) Message() string {
	if len(p.Stale) == 0 {
		return fmt.Sprintf("the document for new version %s is not in the working tree; run 'openapi-manager generate' to write %s", p.version, p.Name)
	}
	return fmt.Sprintf("the document for new version %s is out of date; run 'openapi-manager generate' to replace %s with %s",
		p.version, joinNames(p.Stale), p.Name)
}

// LocalVersionExtra: the correct document for a new version is present,
// alongside leftover files for the same version.
type LocalVersionExtra struct {
	problemBase
	Names []types.SpecFileName
}

func (p *LocalVersionExtra) Kind() string  { return "local-version-extra" }
func (p *LocalVersionExtra) Fixable() bool { return true }
func (p *LocalVersionExtra) Message() string {
	return fmt.Sprintf("leftover files present for new version %s (%s); run 'openapi-manager generate' to remove them",
		p.version, joinNames(p.Names))
}

// DuplicateLocalFile: the same version and content exist both inline and
// as a pointer file; one of the two forms is redundant.
type DuplicateLocalFile struct {
	problemBase
	Keep   types.SpecFileName
	Remove types.SpecFileName
}

func (p *DuplicateLocalFile) Kind() string  { return "duplicate-local-file" }
func (p *DuplicateLocalFile) Fixable() bool { return true }
func (p *DuplicateLocalFile) Message() string {
	return fmt.Sprintf("%s and %s are two forms of the same document; run 'openapi-manager generate' to keep only %s",
		p.Keep, p.Remove, p.Keep)
}

// LocalSpecFileOrphaned: a file in the service's document area matches no
// name derivable from the supported versions and their content. Either it
// is genuinely stale or someone hand-edited it; deleting automatically
// could destroy information, so this always needs a human decision.
type LocalSpecFileOrphaned struct {
	problemBase
	RelPath string
	Reason  string
	// BelowOldest is set when the file names a version older than the
	// oldest supported one, e.g. a version being reintroduced.
	BelowOldest bool
}

func (p *LocalSpecFileOrphaned) Kind() string  { return "local-file-orphaned" }
func (p *LocalSpecFileOrphaned) Fixable() bool { return false }
func (p *LocalSpecFileOrphaned) Message() string {
	if p.BelowOldest {
		return fmt.Sprintf("%s names a version below the oldest supported one (%s); if it is not being reintroduced, delete it by hand",
			p.RelPath, p.Reason)
	}
	return fmt.Sprintf("%s does not correspond to any supported document (%s); delete or repair it by hand", p.RelPath, p.Reason)
}

// MissingLatestLink: no latest link exists for a versioned service.
type MissingLatestLink struct {
	problemBase
	Target string // basename the link must point at
}

func (p *MissingLatestLink) Kind() string  { return "missing-latest-link" }
func (p *MissingLatestLink) Fixable() bool { return true }
func (p *MissingLatestLink) Message() string {
	return fmt.Sprintf("the latest link for %s is missing; run 'openapi-manager generate' to point it at %s", p.ident, p.Target)
}

// WrongLatestLink: the latest link exists but does not point at the
// highest supported version's file.
type WrongLatestLink struct {
	problemBase
	Found  string
	Target string
}

func (p *WrongLatestLink) Kind() string  { return "wrong-latest-link" }
func (p *WrongLatestLink) Fixable() bool { return true }
func (p *WrongLatestLink) Message() string {
	if p.Found == "" {
		return fmt.Sprintf("the latest link for %s is not a symlink; run 'openapi-manager generate' to replace it", p.ident)
	}
	return fmt.Sprintf("the latest link for %s points at %s instead of %s; run 'openapi-manager generate' to repoint it",
		p.ident, p.Found, p.Target)
}

// ExtraFileStale: a derived file recorded by the service's validation hook
// is missing or out of date.
type ExtraFileStale struct {
	problemBase
	RelPath  string
	Contents []byte
}

func (p *ExtraFileStale) Kind() string  { return "extra-file-stale" }
func (p *ExtraFileStale) Fixable() bool { return true }
func (p *ExtraFileStale) Message() string {
	return fmt.Sprintf("derived file %s is out of date; run 'openapi-manager generate' to rewrite it", p.RelPath)
}

func joinNames(names []types.SpecFileName) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n.Path()
	}
	return strings.Join(parts, ", ")
}
