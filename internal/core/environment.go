package core

import (
	"path"
	"path/filepath"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// Environment ties one run to a concrete repository: the work tree root,
// the documents directory, and the blessed branch. All document paths are
// kept relative to the documents directory and converted here.
type Environment struct {
	repoRoot      string
	documentsDir  string
	blessedBranch string
}

// NewEnvironment creates an Environment. repoRoot must be absolute;
// documentsDir is relative to it.
func NewEnvironment(repoRoot, documentsDir, blessedBranch string) *Environment {
	return &Environment{
		repoRoot:      repoRoot,
		documentsDir:  filepath.ToSlash(documentsDir),
		blessedBranch: blessedBranch,
	}
}

// RepoRoot returns the absolute work tree root.
func (e *Environment) RepoRoot() string { return e.repoRoot }

// DocumentsDir returns the documents directory relative to the repo root.
func (e *Environment) DocumentsDir() string { return e.documentsDir }

// BlessedBranch returns the branch defining the blessed document set.
func (e *Environment) BlessedBranch() string { return e.blessedBranch }

// AbsDocPath converts a path relative to the documents directory into an
// absolute filesystem path.
func (e *Environment) AbsDocPath(rel string) string {
	return filepath.Join(e.repoRoot, filepath.FromSlash(e.documentsDir), filepath.FromSlash(rel))
}

// RepoDocPath converts a path relative to the documents directory into a
// slash-separated path relative to the repository root, the form git
// commands and pointer files use.
func (e *Environment) RepoDocPath(rel string) string {
	return path.Join(e.documentsDir, rel)
}

// AbsSpecPath returns the absolute path for a spec file name.
func (e *Environment) AbsSpecPath(name types.SpecFileName) string {
	return e.AbsDocPath(name.Path())
}
