package core

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// GitRef is the serialized form of a .json.gitref pointer file: instead of
// a full document, the file names a commit and a path within that commit
// where the document's bytes live. Pointer files keep the working tree small
// once a version's content is safely committed.
type GitRef struct {
	Commit string `yaml:"commit"`
	Path   string `yaml:"path"`
}

// ParseGitRef parses and validates pointer-file contents.
func ParseGitRef(data []byte) (GitRef, error) {
	var ref GitRef
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return GitRef{}, fmt.Errorf("invalid git ref file: %w", err)
	}
	if _, err := ParseCommitHash(ref.Commit); err != nil {
		return GitRef{}, fmt.Errorf("invalid git ref file: %w", err)
	}
	if ref.Path == "" {
		return GitRef{}, fmt.Errorf("invalid git ref file: missing path")
	}
	return ref, nil
}

// Serialize returns the canonical pointer-file bytes for ref.
func (r GitRef) Serialize() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal git ref: %w", err)
	}
	return data, nil
}

func (r GitRef) String() string {
	return fmt.Sprintf("%s:%s", CommitHash(r.Commit).Short(), r.Path)
}
