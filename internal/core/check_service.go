package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// CheckOptions configures a check run.
type CheckOptions struct {
	// Service restricts the run to one service by name.
	Service string
}

// CheckResult is everything a check produced: per-service outcomes in
// configuration order, the folded status, and the serializable report.
type CheckResult struct {
	Outcomes []ServiceOutcome
	Status   Status
	Report   types.CheckReport

	// Env and Services let the generate command reuse the run's context.
	Env      *Environment
	Services *ManagedServices
}

// ResolvedList returns the non-failed resolutions in configuration order.
func (r *CheckResult) ResolvedList() []*Resolved {
	var out []*Resolved
	for _, o := range r.Outcomes {
		if o.Resolved != nil {
			out = append(out, o.Resolved)
		}
	}
	return out
}

// CheckService runs the reconciliation for every managed service.
type CheckService struct {
	configStore ConfigStore
	git         GitClient
	generator   Generator
	executor    *ParallelExecutor
	log         *logrus.Logger

	// services overrides the configured registry; set by embedding tools
	// that install in-process generators or hooks.
	services *ManagedServices
}

// NewCheckService creates a CheckService with the given collaborators. A
// nil generator gets the command generator once the repository root is
// known.
func NewCheckService(configStore ConfigStore, git GitClient, executor *ParallelExecutor, log *logrus.Logger) *CheckService {
	return &CheckService{
		configStore: configStore,
		git:         git,
		executor:    executor,
		log:         log,
	}
}

// SetGenerator overrides the exec-based generator.
func (s *CheckService) SetGenerator(g Generator) {
	s.generator = g
}

// SetServices overrides the configured service registry.
func (s *CheckService) SetServices(reg *ManagedServices) {
	s.services = reg
}

// Check resolves every managed service and folds the results. Internal
// errors in one service never abort the others.
func (s *CheckService) Check(ctx context.Context, opts CheckOptions) (*CheckResult, error) {
	repoRoot, err := s.git.RepoRoot(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configStore.Load()
	if err != nil {
		return nil, err
	}

	registry := s.services
	if registry == nil {
		registry, err = NewManagedServices(cfg.Services)
		if err != nil {
			return nil, err
		}
	}

	services := registry.All()
	if opts.Service != "" {
		ident, err := types.ParseServiceIdent(opts.Service)
		if err != nil {
			return nil, err
		}
		svc, ok := registry.Get(ident)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, ident)
		}
		services = []*ManagedService{svc}
	}

	env := NewEnvironment(repoRoot, cfg.DocumentsDir, cfg.BlessedBranch)

	var blessedSrc *BlessedSource
	if anyVersioned(services) {
		blessedSrc, err = NewBlessedSource(ctx, env, s.git, s.log)
		if err != nil {
			return nil, err
		}
	}

	localSrc := NewLocalSource(env, s.log)
	generator := s.generator
	if generator == nil {
		generator = NewCommandGenerator(repoRoot, s.log)
	}

	start := time.Now()
	outcomes := s.executor.Run(ctx, services, func(ctx context.Context, svc *ManagedService) ServiceOutcome {
		return s.resolveService(ctx, svc, blessedSrc, localSrc, generator)
	})
	s.log.WithFields(logrus.Fields{
		"services": len(services),
		"elapsed":  time.Since(start).Round(time.Millisecond),
	}).Debug("check complete")

	status := AggregateStatus(outcomes)
	return &CheckResult{
		Outcomes: outcomes,
		Status:   status,
		Report:   buildReport(outcomes, status),
		Env:      env,
		Services: registry,
	}, nil
}

func anyVersioned(services []*ManagedService) bool {
	for _, svc := range services {
		if svc.Versions().IsVersioned() {
			return true
		}
	}
	return false
}

// resolveService gathers the three sources for one service and runs the
// engine. Any error here is internal and fatal for this service only.
func (s *CheckService) resolveService(ctx context.Context, svc *ManagedService, blessedSrc *BlessedSource, localSrc *LocalSource, generator Generator) ServiceOutcome {
	local, err := localSrc.Load(svc)
	if err != nil {
		return ServiceOutcome{Service: svc, Err: err}
	}

	blessed := &BlessedSnapshot{versions: map[uint64][]*BlessedEntry{}}
	if blessedSrc != nil && svc.Versions().IsVersioned() {
		blessed, err = blessedSrc.Load(ctx, svc)
		if err != nil {
			return ServiceOutcome{Service: svc, Err: err}
		}
	}

	generated := make(map[string]GeneratedDoc, len(svc.Versions().All()))
	for _, version := range svc.Versions().All() {
		doc, err := generator.Generate(ctx, svc, version)
		generated[version.String()] = GeneratedDoc{Doc: doc, Err: err}
	}

	in := ServiceInput{
		Service:       svc,
		Generated:     generated,
		Blessed:       blessed,
		Local:         local,
		ReadLocalFile: localSrc.ReadFile,
	}
	if blessedSrc != nil {
		in.FirstCommit = blessedSrc.FirstCommit
	}
	return ServiceOutcome{Service: svc, Resolved: Resolve(ctx, in)}
}

// buildReport serializes the outcomes into the stable JSON report shape.
func buildReport(outcomes []ServiceOutcome, status Status) types.CheckReport {
	report := types.CheckReport{
		SchemaVersion: types.ReportSchemaVersion,
		RunID:         uuid.NewString(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	for _, o := range outcomes {
		report.Summary.TotalServices++
		if o.Err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("%s: %v", o.Service.Ident(), o.Err))
			continue
		}

		kind := "versioned"
		if o.Service.Versions().IsLockstep() {
			kind = "lockstep"
		}
		svcReport := types.ServiceReport{
			Name: o.Service.Ident().String(),
			Kind: kind,
		}

		for _, version := range o.Service.Versions().All() {
			resKind, _ := o.Resolved.Kind(version)
			vr := types.VersionReport{
				Version:    version.String(),
				Resolution: resKind.String(),
			}
			for _, p := range o.Resolved.ProblemsForVersion(version) {
				vr.Problems = append(vr.Problems, problemReport(p))
				countProblem(&report.Summary, p)
			}
			report.Summary.TotalVersions++
			svcReport.Versions = append(svcReport.Versions, vr)
		}
		for _, p := range o.Resolved.GeneralProblems() {
			svcReport.General = append(svcReport.General, problemReport(p))
			countProblem(&report.Summary, p)
		}

		switch {
		case o.Resolved.Fresh():
			report.Summary.Fresh++
		case o.Resolved.HasUnfixable():
			report.Summary.Failures++
		default:
			report.Summary.NeedsUpdate++
		}
		report.Services = append(report.Services, svcReport)
	}

	report.Summary.Failures += len(report.Errors)
	switch status {
	case StatusFresh:
		report.Summary.Result = types.CheckResultFresh
	case StatusNeedsUpdate:
		report.Summary.Result = types.CheckResultNeedsUpdate
	default:
		report.Summary.Result = types.CheckResultFailure
	}
	return report
}

func problemReport(p Problem) types.ProblemReport {
	out := types.ProblemReport{
		Kind:    p.Kind(),
		Message: p.Message(),
		Fixable: p.Fixable(),
	}
	if p.Fixable() {
		var parts []string
		for _, f := range fixesFor(p) {
			parts = append(parts, f.Describe())
		}
		if len(parts) > 0 {
			out.Fix = strings.Join(parts, "; ")
		}
	}
	return out
}

func countProblem(s *types.CheckSummary, p Problem) {
	s.TotalProblems++
	if p.Fixable() {
		s.FixableCount++
	} else {
		s.UnfixableCount++
	}
}
