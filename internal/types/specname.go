package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"

	"github.com/Masterminds/semver/v3"
)

// GitRefSuffix is appended to a versioned document's file name when the file
// is stored as a pointer into git history rather than as inline content.
const GitRefSuffix = ".gitref"

// LatestLinkSuffix is the basename suffix of the per-service "latest" link.
const LatestLinkSuffix = "-latest.json"

// SpecNameKind distinguishes the three on-disk forms a document can take.
type SpecNameKind int

const (
	// KindLockstep is the single document of a lockstep service:
	// "IDENT.json" at the top of the documents directory.
	KindLockstep SpecNameKind = iota
	// KindVersioned is one version of a multi-version service:
	// "IDENT/IDENT-VERSION-HASH.json".
	KindVersioned
	// KindVersionedGitRef is a versioned document stored as a pointer file:
	// "IDENT/IDENT-VERSION-HASH.json.gitref".
	KindVersionedGitRef
)

func (k SpecNameKind) String() string {
	switch k {
	case KindLockstep:
		return "lockstep"
	case KindVersioned:
		return "versioned"
	case KindVersionedGitRef:
		return "versioned git ref"
	default:
		return fmt.Sprintf("SpecNameKind(%d)", int(k))
	}
}

// SpecFileName is the derived, deterministic name for one service-version's
// document, relative to the documents directory.
//
// Lockstep names depend only on the service identity. Versioned names are
// content-addressed: they embed the version and a short hash of the document
// bytes, so two different contents claiming the same version necessarily get
// different names.
type SpecFileName struct {
	ident   ServiceIdent
	kind    SpecNameKind
	version *semver.Version
	hash    string
}

// LockstepFileName returns the name of a lockstep service's document.
func LockstepFileName(ident ServiceIdent) SpecFileName {
	return SpecFileName{ident: ident, kind: KindLockstep}
}

// VersionedFileName returns the content-addressed name for a versioned
// document with the given contents.
func VersionedFileName(ident ServiceIdent, version *semver.Version, contents []byte) SpecFileName {
	return SpecFileName{
		ident:   ident,
		kind:    KindVersioned,
		version: version,
		hash:    HashContents(contents),
	}
}

// VersionedFileNameWithHash returns a versioned name with an already-known
// hash (used when parsing names found on disk or in history).
func VersionedFileNameWithHash(ident ServiceIdent, version *semver.Version, hash string) SpecFileName {
	return SpecFileName{ident: ident, kind: KindVersioned, version: version, hash: hash}
}

// GitRefFileNameWithHash is VersionedFileNameWithHash for pointer files.
func GitRefFileNameWithHash(ident ServiceIdent, version *semver.Version, hash string) SpecFileName {
	return SpecFileName{ident: ident, kind: KindVersionedGitRef, version: version, hash: hash}
}

// Ident returns the service the name belongs to.
func (n SpecFileName) Ident() ServiceIdent { return n.ident }

// Kind returns the on-disk form of the name.
func (n SpecFileName) Kind() SpecNameKind { return n.kind }

// Version returns the version a versioned name encodes, or false for
// lockstep names.
func (n SpecFileName) Version() (*semver.Version, bool) {
	if n.version == nil {
		return nil, false
	}
	return n.version, true
}

// Hash returns the content hash a versioned name encodes, or false for
// lockstep names.
func (n SpecFileName) Hash() (string, bool) {
	if n.kind == KindLockstep {
		return "", false
	}
	return n.hash, true
}

// IsGitRef reports whether the name refers to a pointer file.
func (n SpecFileName) IsGitRef() bool {
	return n.kind == KindVersionedGitRef
}

// Basename returns the file's name without any directory component.
func (n SpecFileName) Basename() string {
	switch n.kind {
	case KindLockstep:
		return fmt.Sprintf("%s.json", n.ident)
	case KindVersioned:
		return fmt.Sprintf("%s-%s-%s.json", n.ident, n.version, n.hash)
	case KindVersionedGitRef:
		return fmt.Sprintf("%s-%s-%s.json%s", n.ident, n.version, n.hash, GitRefSuffix)
	default:
		panic(fmt.Sprintf("unknown spec name kind %d", int(n.kind)))
	}
}

// Path returns the file's path relative to the documents directory, using
// forward slashes. Versioned documents live in a per-service subdirectory.
func (n SpecFileName) Path() string {
	if n.kind == KindLockstep {
		return n.Basename()
	}
	return path.Join(n.ident.String(), n.Basename())
}

// ToJSON returns the inline-content form of the name: pointer names lose
// their suffix, other names are returned unchanged.
func (n SpecFileName) ToJSON() SpecFileName {
	if n.kind != KindVersionedGitRef {
		return n
	}
	out := n
	out.kind = KindVersioned
	return out
}

// ToGitRef returns the pointer-file form of a versioned name.
func (n SpecFileName) ToGitRef() SpecFileName {
	if n.kind != KindVersioned {
		return n
	}
	out := n
	out.kind = KindVersionedGitRef
	return out
}

// Equal reports whether two names refer to the same file.
func (n SpecFileName) Equal(o SpecFileName) bool {
	return n.Path() == o.Path()
}

func (n SpecFileName) String() string {
	return n.Path()
}

// LatestLinkPath returns the path, relative to the documents directory, of a
// versioned service's "latest" link.
func LatestLinkPath(ident ServiceIdent) string {
	return path.Join(ident.String(), ident.String()+LatestLinkSuffix)
}

// HashContents returns the short content hash embedded in versioned file
// names: the lowercase hex encoding of the first three bytes of the SHA-256
// digest of the document bytes.
func HashContents(contents []byte) string {
	sum := sha256.Sum256(contents)
	return hex.EncodeToString(sum[:3])
}
