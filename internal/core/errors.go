package core

import "errors"

// Sentinel errors for common error conditions.
// These can be used with errors.Is() for error type checking.
var (
	// ErrNotConfigured indicates openapi.yml was not found in the repository
	ErrNotConfigured = errors.New("openapi.yml not found. Create it at the repository root to declare managed services")

	// ErrNotInRepository indicates the command was run outside a git work tree
	ErrNotInRepository = errors.New("not inside a git repository")

	// ErrServiceNotFound indicates a --service filter matched nothing
	ErrServiceNotFound = errors.New("service not found in openapi.yml")
)

// Error message templates for formatted errors.
// Use with fmt.Errorf() to create errors with context.
const (
	// ErrMergeBaseFailedMsg is the message for merge-base failures
	ErrMergeBaseFailedMsg = "cannot determine merge base of HEAD and %s: %w.\n\nThe blessed branch must exist locally. Fetch it first (e.g. 'git fetch origin %s')"

	// ErrGeneratorFailedMsg is the message for generator command failures
	ErrGeneratorFailedMsg = "generator for service %s (version %s) failed: %w"

	// ErrDocumentParseFailedMsg is the message for unparseable generated documents
	ErrDocumentParseFailedMsg = "generated document for %s version %s is not a valid OpenAPI document: %w"
)
