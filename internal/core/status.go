package core

import "fmt"

// Status is the aggregate outcome of a run. Callers branch on these three
// levels, not on problem counts; they map directly to process exit codes.
type Status int

const (
	// StatusFresh means every service is fully consistent.
	StatusFresh Status = iota
	// StatusNeedsUpdate means problems were found but every one of them
	// is fixable by the generate command.
	StatusNeedsUpdate
	// StatusFailure means at least one problem or error needs a human.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusNeedsUpdate:
		return "needs update"
	case StatusFailure:
		return "failure"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ExitCode returns the process exit code for the status.
func (s Status) ExitCode() int {
	switch s {
	case StatusFresh:
		return 0
	case StatusNeedsUpdate:
		return 1
	default:
		return 2
	}
}

// ServiceOutcome is one service's result: a resolution, or the internal
// error that aborted it. Internal errors are fatal for the service but
// never for the run; the other services still get evaluated.
type ServiceOutcome struct {
	Service  *ManagedService
	Resolved *Resolved
	Err      error
}

// AggregateStatus folds all services' outcomes into one status.
func AggregateStatus(outcomes []ServiceOutcome) Status {
	status := StatusFresh
	for _, o := range outcomes {
		switch {
		case o.Err != nil, o.Resolved == nil, o.Resolved.HasUnfixable():
			return StatusFailure
		case !o.Resolved.Fresh():
			status = StatusNeedsUpdate
		}
	}
	return status
}
