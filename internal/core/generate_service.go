package core

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// GenerateOptions configures a generate run.
type GenerateOptions struct {
	// Service restricts the run to one service by name.
	Service string
	// DryRun plans fixes without applying them.
	DryRun bool
}

// GenerateResult reports what generate did.
type GenerateResult struct {
	// Before is the check that produced the plan.
	Before *CheckResult
	// Fixes is the plan, applied unless DryRun.
	Fixes []Fix
	// After is the re-check following application; nil when nothing was
	// applied.
	After *CheckResult
}

// Converged reports whether applying the plan removed every fixable
// problem.
func (r *GenerateResult) Converged() bool {
	if r.After == nil {
		return len(r.Fixes) == 0
	}
	return r.After.Status != StatusNeedsUpdate
}

// GenerateService plans and applies fixes: the write side of the tool.
type GenerateService struct {
	check *CheckService
	ui    UICallback
	log   *logrus.Logger
}

// NewGenerateService creates a GenerateService on top of a CheckService.
func NewGenerateService(check *CheckService, ui UICallback, log *logrus.Logger) *GenerateService {
	return &GenerateService{check: check, ui: ui, log: log}
}

// Generate checks, plans, applies, and re-checks. Unfixable problems are
// left in place and reported; applying what can be fixed never hides them.
func (s *GenerateService) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	before, err := s.check.Check(ctx, CheckOptions{Service: opts.Service})
	if err != nil {
		return nil, err
	}

	fixes := PlanFixes(before.ResolvedList())
	result := &GenerateResult{Before: before, Fixes: fixes}
	if len(fixes) == 0 || opts.DryRun {
		return result, nil
	}

	if !s.ui.IsAutoApprove() {
		title := fmt.Sprintf("Apply %d fixes?", len(fixes))
		if !s.ui.AskConfirmation(title, describeFixes(fixes)) {
			return nil, fmt.Errorf("aborted")
		}
	}

	for _, fix := range fixes {
		s.log.WithField("fix", fix.Describe()).Debug("applying fix")
		if err := fix.Apply(before.Env); err != nil {
			return nil, fmt.Errorf("applying fix (%s): %w", fix.Describe(), err)
		}
	}

	after, err := s.check.Check(ctx, CheckOptions{Service: opts.Service})
	if err != nil {
		return nil, fmt.Errorf("rechecking after fixes: %w", err)
	}
	result.After = after
	return result, nil
}

func describeFixes(fixes []Fix) string {
	out := ""
	for _, f := range fixes {
		out += "  " + f.Describe() + "\n"
	}
	return out
}
