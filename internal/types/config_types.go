// Package types defines data structures for openapi-manager configuration,
// service versioning, and check reports.
package types

// ProjectConfig is the root of openapi.yml, the project-level configuration
// for managed OpenAPI documents.
type ProjectConfig struct {
	// DocumentsDir is the directory holding checked-in documents,
	// relative to the repository root.
	DocumentsDir string `yaml:"documents_dir"`
	// BlessedBranch is the revision whose merge base with HEAD defines the
	// blessed document set. Defaults to "main".
	BlessedBranch string          `yaml:"blessed_branch,omitempty"`
	Services      []ServiceConfig `yaml:"services"`
}

// ServiceConfig declares one managed service. Exactly one of Lockstep and
// Versioned must be set.
type ServiceConfig struct {
	Name      string           `yaml:"name"`
	Title     string           `yaml:"title,omitempty"`
	Lockstep  *LockstepConfig  `yaml:"lockstep,omitempty"`
	Versioned *VersionedConfig `yaml:"versioned,omitempty"`
	// Generate is the argv of the command that emits the service's
	// generated document on stdout. "{service}" and "{version}" expand to
	// the service name and the requested version.
	Generate []string `yaml:"generate"`
	// Boundary records whether the service's consumers are updated in
	// lockstep with it ("internal") or not ("external"). Informational.
	Boundary string `yaml:"boundary,omitempty"`
}

// LockstepConfig configures a service whose clients always update together
// with the server, so a single document version suffices.
type LockstepConfig struct {
	Version string `yaml:"version"`
}

// VersionedConfig configures a service that keeps every supported major
// version's document checked in.
type VersionedConfig struct {
	// Versions lists supported versions, newest first.
	Versions []VersionConfig `yaml:"versions"`
	// GitRefStorage enables converting superseded blessed documents to
	// pointer files into git history.
	GitRefStorage bool `yaml:"git_ref_storage,omitempty"`
	// RequireExactLatest additionally requires the latest blessed
	// document to match the generated one byte for byte, not just be
	// wire compatible with it.
	RequireExactLatest bool `yaml:"require_exact_latest,omitempty"`
}

// VersionConfig names one supported major version of a versioned service.
type VersionConfig struct {
	Version uint64 `yaml:"version"`
	Label   string `yaml:"label"`
}

// Boundary constants for ServiceConfig.Boundary.
const (
	BoundaryInternal = "internal"
	BoundaryExternal = "external"
)

// DefaultBlessedBranch is used when ProjectConfig.BlessedBranch is empty.
const DefaultBlessedBranch = "main"
