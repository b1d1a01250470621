package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// Fix is one concrete corrective action: a pure description of a
// filesystem effect. The engine and planner never perform I/O; Apply is
// called separately by the generate command after planning.
type Fix interface {
	// Describe returns a one-line human-readable description.
	Describe() string
	// Apply performs the effect against the environment's documents
	// directory.
	Apply(env *Environment) error

	fix()
}

// WriteFile writes exact bytes to a path relative to the documents
// directory, creating parent directories as needed.
type WriteFile struct {
	Rel      string
	Contents []byte
}

func (f *WriteFile) fix() {}

func (f *WriteFile) Describe() string {
	return fmt.Sprintf("write %s (%d bytes)", f.Rel, len(f.Contents))
}

func (f *WriteFile) Apply(env *Environment) error {
	return writeDocFile(env, f.Rel, f.Contents)
}

// DeleteFiles removes files relative to the documents directory. Missing
// files are not errors; applying twice converges.
type DeleteFiles struct {
	Rels []string
}

func (f *DeleteFiles) fix() {}

func (f *DeleteFiles) Describe() string {
	if len(f.Rels) == 1 {
		return fmt.Sprintf("delete %s", f.Rels[0])
	}
	return fmt.Sprintf("delete %d files", len(f.Rels))
}

func (f *DeleteFiles) Apply(env *Environment) error {
	for _, rel := range f.Rels {
		if err := os.Remove(env.AbsDocPath(rel)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting %s: %w", rel, err)
		}
	}
	return nil
}

// UpdateLatestLink (re)points a service's latest link at the file for the
// highest supported version. The link is relative, within the service's
// directory, so checkouts at different absolute paths agree.
type UpdateLatestLink struct {
	Ident  types.ServiceIdent
	Target string // basename of the latest version's file
}

func (f *UpdateLatestLink) fix() {}

func (f *UpdateLatestLink) Describe() string {
	return fmt.Sprintf("point %s at %s", types.LatestLinkPath(f.Ident), f.Target)
}

func (f *UpdateLatestLink) Apply(env *Environment) error {
	linkAbs := env.AbsDocPath(types.LatestLinkPath(f.Ident))
	if err := os.MkdirAll(filepath.Dir(linkAbs), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(linkAbs), err)
	}
	if err := os.Remove(linkAbs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old latest link: %w", err)
	}
	if err := os.Symlink(f.Target, linkAbs); err != nil {
		return fmt.Errorf("creating latest link: %w", err)
	}
	return nil
}

// ConvertToGitRef replaces an inline document with its pointer-file form.
type ConvertToGitRef struct {
	JSONRel   string
	GitRefRel string
	Contents  []byte // serialized pointer
}

func (f *ConvertToGitRef) fix() {}

func (f *ConvertToGitRef) Describe() string {
	return fmt.Sprintf("convert %s to a pointer file", f.JSONRel)
}

func (f *ConvertToGitRef) Apply(env *Environment) error {
	if err := writeDocFile(env, f.GitRefRel, f.Contents); err != nil {
		return err
	}
	if err := os.Remove(env.AbsDocPath(f.JSONRel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", f.JSONRel, err)
	}
	return nil
}

// ConvertToJSON replaces a pointer file with the inline document.
type ConvertToJSON struct {
	GitRefRel string
	JSONRel   string
	Contents  []byte // document bytes
}

func (f *ConvertToJSON) fix() {}

func (f *ConvertToJSON) Describe() string {
	return fmt.Sprintf("convert %s back to an inline document", f.GitRefRel)
}

func (f *ConvertToJSON) Apply(env *Environment) error {
	if err := writeDocFile(env, f.JSONRel, f.Contents); err != nil {
		return err
	}
	if err := os.Remove(env.AbsDocPath(f.GitRefRel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", f.GitRefRel, err)
	}
	return nil
}

// writeDocFile writes via a temp file and rename so a crash cannot leave a
// half-written document.
func writeDocFile(env *Environment, rel string, contents []byte) error {
	abs := env.AbsDocPath(rel)
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".openapi-manager-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}
