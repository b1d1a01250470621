package tui

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oxidecomputer/openapi-manager/internal/core"
	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// PrintCheckReportJSON writes the structured report to stdout.
func PrintCheckReportJSON(report types.CheckReport) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// PrintCheckReport renders the report for humans. Quiet mode prints only
// the one-line verdict.
func PrintCheckReport(report types.CheckReport, mode core.OutputMode) {
	if mode == core.OutputQuiet {
		fmt.Println(report.Summary.Result)
		return
	}

	fmt.Println(StyleTitle("OpenAPI Documents:"))
	fmt.Println()

	for _, svc := range report.Services {
		fmt.Printf("  %s (%s)\n", svc.Name, svc.Kind)
		for _, v := range svc.Versions {
			marker := "✔"
			if len(v.Problems) > 0 {
				marker = "✖"
			}
			fmt.Printf("    %s %-12s %s\n", marker, v.Version, v.Resolution)
			printProblems(v.Problems, "      ")
		}
		printProblems(svc.General, "    ")
		fmt.Println()
	}

	for _, msg := range report.Errors {
		PrintError("Error", msg)
	}

	summary := report.Summary
	switch summary.Result {
	case types.CheckResultFresh:
		PrintSuccess(fmt.Sprintf("%d services, %d versions: all documents up to date",
			summary.TotalServices, summary.TotalVersions))
	case types.CheckResultNeedsUpdate:
		PrintWarning("Update Needed",
			fmt.Sprintf("%d fixable problems found. Run 'openapi-manager generate' to fix.",
				summary.FixableCount))
	default:
		PrintError("Check Failed",
			fmt.Sprintf("%d problems require attention (%d fixable, %d not)",
				summary.TotalProblems, summary.FixableCount, summary.UnfixableCount))
	}
}

func printProblems(problems []types.ProblemReport, indent string) {
	for _, p := range problems {
		tag := "fixable"
		if !p.Fixable {
			tag = "unfixable"
		}
		fmt.Printf("%s%s [%s]: %s\n", indent, p.Kind, tag, p.Message)
		if p.Fix != "" {
			fmt.Printf("%s%s\n", indent+"  ", styleDim.Render("fix: "+p.Fix))
		}
	}
}
