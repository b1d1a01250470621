// Package types defines the data model shared by the OpenAPI manager:
// service identities, version models, spec file names, and report types.
package types

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// labelPattern matches version labels that can be turned into source-code
// constants by downstream code generators (e.g. ADD_SKU_FILTERS).
var labelPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Versions describes how a service's API is versioned.
//
// A lockstep service has exactly one current document version; clients and
// servers are always deployed together. A versioned service supports several
// document versions at once so that clients and servers can be upgraded
// independently.
type Versions struct {
	lockstep  *semver.Version
	supported *SupportedVersions
}

// NewLockstep returns a Versions for a lockstep service at the given version.
func NewLockstep(version *semver.Version) Versions {
	return Versions{lockstep: version}
}

// NewVersioned returns a Versions for a multi-version service.
func NewVersioned(supported *SupportedVersions) Versions {
	return Versions{supported: supported}
}

// IsLockstep reports whether this is a lockstep service.
func (v Versions) IsLockstep() bool {
	return v.lockstep != nil
}

// IsVersioned reports whether this is a multi-version service.
func (v Versions) IsVersioned() bool {
	return v.supported != nil
}

// Supported returns the supported version set for a versioned service.
func (v Versions) Supported() (*SupportedVersions, bool) {
	if v.supported == nil {
		return nil, false
	}
	return v.supported, true
}

// All returns every supported version in ascending order. For lockstep
// services the slice holds the single current version.
func (v Versions) All() []*semver.Version {
	if v.lockstep != nil {
		return []*semver.Version{v.lockstep}
	}
	out := make([]*semver.Version, 0, len(v.supported.versions))
	for i := len(v.supported.versions) - 1; i >= 0; i-- {
		out = append(out, v.supported.versions[i].Semver())
	}
	return out
}

// Latest returns the highest supported version.
func (v Versions) Latest() *semver.Version {
	if v.lockstep != nil {
		return v.lockstep
	}
	return v.supported.versions[0].Semver()
}

// Contains reports whether version is one of the supported versions.
func (v Versions) Contains(version *semver.Version) bool {
	for _, sv := range v.All() {
		if sv.Equal(version) {
			return true
		}
	}
	return false
}

// SupportedVersion is one entry in a versioned service's version list: a major
// version number and the label it was declared under.
type SupportedVersion struct {
	major uint64
	label string
}

// NewSupportedVersion builds a single supported-version entry. Validation of
// the entry in context (ordering, uniqueness) happens in
// NewSupportedVersions.
func NewSupportedVersion(major uint64, label string) SupportedVersion {
	return SupportedVersion{major: major, label: label}
}

// Major returns the major version number.
func (s SupportedVersion) Major() uint64 { return s.major }

// Label returns the declared label, e.g. "INITIAL".
func (s SupportedVersion) Label() string { return s.label }

// Semver returns the full semantic version for this entry (MAJOR.0.0).
func (s SupportedVersion) Semver() *semver.Version {
	return semver.New(s.major, 0, 0, "", "")
}

func (s SupportedVersion) String() string {
	return fmt.Sprintf("%d (%s)", s.major, s.label)
}

// SupportedVersions is the validated, strictly descending list of versions a
// multi-version service supports. The first entry is always the latest
// version.
//
// The list is declared newest-first so that two branches adding a version at
// the same spot are guaranteed to conflict in version control rather than
// merge silently.
type SupportedVersions struct {
	versions []SupportedVersion
}

// NewSupportedVersions validates and constructs a supported-version list.
//
// The list must be non-empty, strictly descending by major version, with
// unique major numbers, unique labels, majors >= 1, and labels that are valid
// code-generation identifiers.
func NewSupportedVersions(versions []SupportedVersion) (*SupportedVersions, error) {
	if len(versions) == 0 {
		return nil, fmt.Errorf("at least one version must be supported")
	}

	seenMajors := make(map[uint64]string, len(versions))
	seenLabels := make(map[string]uint64, len(versions))
	for i, v := range versions {
		if v.major < 1 {
			return nil, fmt.Errorf("version number must be >= 1, got %d (%s)", v.major, v.label)
		}
		if !labelPattern.MatchString(v.label) {
			return nil, fmt.Errorf(
				"version %d: label %q is not a valid identifier (want e.g. ADD_THING)",
				v.major, v.label)
		}
		if prev, ok := seenMajors[v.major]; ok {
			return nil, fmt.Errorf(
				"version %d appears multiple times (labels %q and %q)",
				v.major, prev, v.label)
		}
		if prev, ok := seenLabels[v.label]; ok {
			return nil, fmt.Errorf(
				"label %q appears multiple times (versions %d and %d)",
				v.label, prev, v.major)
		}
		seenMajors[v.major] = v.label
		seenLabels[v.label] = v.major

		if i > 0 && versions[i-1].major <= v.major {
			return nil, fmt.Errorf(
				"supported versions must be listed in strictly descending order "+
					"(version %d listed after %d)",
				v.major, versions[i-1].major)
		}
	}

	out := make([]SupportedVersion, len(versions))
	copy(out, versions)
	return &SupportedVersions{versions: out}, nil
}

// Latest returns the newest supported version entry.
func (s *SupportedVersions) Latest() SupportedVersion {
	return s.versions[0]
}

// Oldest returns the oldest supported version entry.
func (s *SupportedVersions) Oldest() SupportedVersion {
	return s.versions[len(s.versions)-1]
}

// Entries returns the entries in declared (descending) order.
func (s *SupportedVersions) Entries() []SupportedVersion {
	out := make([]SupportedVersion, len(s.versions))
	copy(out, s.versions)
	return out
}

// Len returns the number of supported versions.
func (s *SupportedVersions) Len() int {
	return len(s.versions)
}
