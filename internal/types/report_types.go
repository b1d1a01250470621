package types

// CheckReport is the top-level result for the check command. It supports
// both JSON and human-readable output and captures every problem found for
// every service version.
type CheckReport struct {
	SchemaVersion string          `json:"schema_version"`
	RunID         string          `json:"run_id"`
	Timestamp     string          `json:"timestamp"`
	Summary       CheckSummary    `json:"summary"`
	Services      []ServiceReport `json:"services"`
	// Errors lists failures that prevented resolution entirely, such as
	// unloadable configuration or git failures.
	Errors []string `json:"errors,omitempty"`
}

// CheckSummary contains aggregate statistics across all services.
type CheckSummary struct {
	TotalServices  int    `json:"total_services"`
	TotalVersions  int    `json:"total_versions"`
	Fresh          int    `json:"fresh"`
	NeedsUpdate    int    `json:"needs_update"`
	Failures       int    `json:"failures"`
	TotalProblems  int    `json:"total_problems"`
	FixableCount   int    `json:"fixable"`
	UnfixableCount int    `json:"unfixable"`
	Result         string `json:"result"` // FRESH, NEEDS_UPDATE, FAILURE
}

// ServiceReport holds every problem found for a single service.
type ServiceReport struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"` // lockstep, versioned
	Versions []VersionReport `json:"versions"`
	// General lists service-level problems not tied to any one version,
	// such as orphaned or duplicate local files.
	General []ProblemReport `json:"general,omitempty"`
}

// VersionReport holds the outcome for one version of a service.
type VersionReport struct {
	Version    string          `json:"version"`
	Resolution string          `json:"resolution"` // lockstep, blessed, new-locally
	Problems   []ProblemReport `json:"problems,omitempty"`
}

// ProblemReport is the serialized form of one problem.
type ProblemReport struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Fixable bool   `json:"fixable"`
	Fix     string `json:"fix,omitempty"`
}

// Check result constants for CheckSummary.Result.
const (
	CheckResultFresh       = "FRESH"
	CheckResultNeedsUpdate = "NEEDS_UPDATE"
	CheckResultFailure     = "FAILURE"
)

// ReportSchemaVersion identifies the JSON report format.
const ReportSchemaVersion = "1.0"
