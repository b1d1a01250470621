package types

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParseVersionedBasename parses a basename found in a versioned service's
// subdirectory into its name components. It returns an error when the
// basename has the right shape for the service but malformed components, and
// ok=false when it does not belong to the service at all.
func ParseVersionedBasename(ident ServiceIdent, basename string) (name SpecFileName, ok bool, err error) {
	isGitRef := false
	rest := basename
	if strings.HasSuffix(rest, GitRefSuffix) {
		isGitRef = true
		rest = strings.TrimSuffix(rest, GitRefSuffix)
	}
	if !strings.HasSuffix(rest, ".json") {
		return SpecFileName{}, false, nil
	}
	rest = strings.TrimSuffix(rest, ".json")

	prefix := ident.String() + "-"
	if !strings.HasPrefix(rest, prefix) {
		return SpecFileName{}, false, nil
	}
	rest = strings.TrimPrefix(rest, prefix)

	// Remaining: "MAJOR.MINOR.PATCH-HASH". The hash never contains a
	// dash, so split at the last one.
	i := strings.LastIndex(rest, "-")
	if i < 0 {
		return SpecFileName{}, false, fmt.Errorf("file name %q: missing content hash", basename)
	}
	verStr, hash := rest[:i], rest[i+1:]
	if !validHash(hash) {
		return SpecFileName{}, false, fmt.Errorf("file name %q: malformed content hash %q", basename, hash)
	}
	version, err := semver.StrictNewVersion(verStr)
	if err != nil {
		return SpecFileName{}, false, fmt.Errorf("file name %q: malformed version %q: %w", basename, verStr, err)
	}
	if isGitRef {
		return GitRefFileNameWithHash(ident, version, hash), true, nil
	}
	return VersionedFileNameWithHash(ident, version, hash), true, nil
}

func validHash(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
