// Package main implements the openapi-manager CLI tool for keeping
// generated OpenAPI documents consistent with the code and git history.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oxidecomputer/openapi-manager/cmd"
	"github.com/oxidecomputer/openapi-manager/internal/core"
	"github.com/oxidecomputer/openapi-manager/internal/logging"
	"github.com/oxidecomputer/openapi-manager/internal/tui"
	"github.com/oxidecomputer/openapi-manager/internal/version"
)

// Version information is managed in internal/version package
// GoReleaser injects version info directly via ldflags

// parseCommonFlags extracts common non-interactive flags from args
// Returns: flags, verbose, remainingArgs
func parseCommonFlags(args []string) (core.NonInteractiveFlags, bool, []string) {
	flags := core.NonInteractiveFlags{}
	verbose := false
	var remaining []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--yes", "-y":
			flags.Yes = true
		case "--quiet", "-q":
			flags.Mode = core.OutputQuiet
		case "--json":
			flags.Mode = core.OutputJSON
		case "--verbose", "-v":
			verbose = true
		default:
			remaining = append(remaining, arg)
		}
	}

	return flags, verbose, remaining
}

// parseServiceFlag extracts --service NAME from args.
func parseServiceFlag(args []string) (string, []string, error) {
	service := ""
	var remaining []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--service" {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--service requires a name")
			}
			service = args[i+1]
			i++
			continue
		}
		remaining = append(remaining, args[i])
	}
	return service, remaining, nil
}

// newCallback picks the interactive or flag-driven callback.
func newCallback(flags core.NonInteractiveFlags) core.UICallback {
	if flags.Yes || flags.Mode != core.OutputNormal || !tui.IsInteractive() {
		return tui.NewNonInteractiveTUICallback(flags)
	}
	return tui.NewTUICallback()
}

// repoRooted resolves the enclosing repository root and returns a git
// client plus a config store rooted there. openapi.yml lives at the
// repository root regardless of where the command runs.
func repoRooted(ctx context.Context, verbose bool) (*core.SystemGitClient, *core.FileConfigStore, string) {
	cwd, err := os.Getwd()
	if err != nil {
		tui.PrintError("Error", err.Error())
		os.Exit(2)
	}
	git := core.NewSystemGitClient(cwd, verbose)
	root, err := git.RepoRoot(ctx)
	if err != nil {
		tui.PrintError("Error", err.Error())
		os.Exit(2)
	}
	return git, core.NewFileConfigStore(root), root
}

func newCheckService(ctx context.Context, verbose bool) *core.CheckService {
	git, store, _ := repoRooted(ctx, verbose)
	return core.NewCheckService(store, git, core.NewParallelExecutor(0), logging.New(verbose))
}

func main() {
	if len(os.Args) < 2 {
		tui.PrintHelp()
		os.Exit(0)
	}

	command := os.Args[1]

	// Handle help flags
	if command == "--help" || command == "-h" || command == "help" {
		tui.PrintHelp()
		os.Exit(0)
	}

	// Handle version flag
	if command == "--version" || command == "version" {
		fmt.Println(version.GetFullVersion())
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "check":
		flags, verbose, args := parseCommonFlags(os.Args[2:])
		service, _, err := parseServiceFlag(args)
		if err != nil {
			tui.PrintError("Usage", err.Error())
			os.Exit(2)
		}
		callback := newCallback(flags)

		check := newCheckService(ctx, verbose)
		result, err := check.Check(ctx, core.CheckOptions{Service: service})
		if err != nil {
			callback.ShowError("Check Failed", err.Error())
			os.Exit(2)
		}

		if flags.Mode == core.OutputJSON {
			if err := tui.PrintCheckReportJSON(result.Report); err != nil {
				os.Exit(2)
			}
		} else {
			tui.PrintCheckReport(result.Report, flags.Mode)
		}
		os.Exit(result.Status.ExitCode())

	case "generate":
		flags, verbose, args := parseCommonFlags(os.Args[2:])
		service, args, err := parseServiceFlag(args)
		if err != nil {
			tui.PrintError("Usage", err.Error())
			os.Exit(2)
		}
		dryRun := false
		for _, arg := range args {
			if arg == "--dry-run" {
				dryRun = true
			}
		}
		callback := newCallback(flags)

		check := newCheckService(ctx, verbose)
		gen := core.NewGenerateService(check, callback, logging.New(verbose))
		result, err := gen.Generate(ctx, core.GenerateOptions{Service: service, DryRun: dryRun})
		if err != nil {
			callback.ShowError("Generate Failed", err.Error())
			os.Exit(2)
		}

		switch {
		case len(result.Fixes) == 0:
			callback.ShowSuccess("All documents up to date.")
		case dryRun:
			fmt.Println(callback.StyleTitle(fmt.Sprintf("%d fixes would be applied:", len(result.Fixes))))
			for _, fix := range result.Fixes {
				fmt.Println("  " + fix.Describe())
			}
			fmt.Println()
			fmt.Println("This is a dry-run. No files were modified.")
			fmt.Println("Run 'openapi-manager generate' to apply changes.")
		default:
			for _, fix := range result.Fixes {
				callback.ShowInfo("applied: " + fix.Describe())
			}
			if result.Converged() {
				callback.ShowSuccess(fmt.Sprintf("Applied %d fixes.", len(result.Fixes)))
			} else {
				callback.ShowWarning("Not Converged",
					"Fixes were applied but problems remain. Run 'openapi-manager check' for details.")
			}
		}

		final := result.Before
		if result.After != nil {
			final = result.After
		}
		if flags.Mode == core.OutputJSON {
			if err := tui.PrintCheckReportJSON(final.Report); err != nil {
				os.Exit(2)
			}
		}
		os.Exit(final.Status.ExitCode())

	case "list":
		flags, _, _ := parseCommonFlags(os.Args[2:])
		callback := newCallback(flags)

		_, store, _ := repoRooted(ctx, false)
		cfg, err := store.Load()
		if err != nil {
			callback.ShowError("Error", err.Error())
			os.Exit(2)
		}
		registry, err := core.NewManagedServices(cfg.Services)
		if err != nil {
			callback.ShowError("Invalid Configuration", err.Error())
			os.Exit(2)
		}

		if flags.Mode == core.OutputJSON {
			serviceData := make([]map[string]interface{}, 0, registry.Len())
			for _, svc := range registry.All() {
				var versions []string
				for _, v := range svc.Versions().All() {
					versions = append(versions, v.String())
				}
				kind := "versioned"
				if svc.Versions().IsLockstep() {
					kind = "lockstep"
				}
				serviceData = append(serviceData, map[string]interface{}{
					"name":     svc.Ident().String(),
					"title":    svc.Title(),
					"kind":     kind,
					"boundary": svc.Boundary(),
					"versions": versions,
				})
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(map[string]interface{}{
				"documents_dir": cfg.DocumentsDir,
				"services":      serviceData,
			}); err != nil {
				os.Exit(2)
			}
			return
		}

		if flags.Mode == core.OutputQuiet {
			for _, svc := range registry.All() {
				fmt.Println(svc.Ident())
			}
			return
		}

		fmt.Println(tui.StyleTitle("Managed Services:"))
		fmt.Println()
		for _, svc := range registry.All() {
			fmt.Printf("  %s\n", svc.Ident())
			fmt.Printf("    Title:    %s\n", svc.Title())
			fmt.Printf("    Boundary: %s\n", svc.Boundary())
			if svc.Versions().IsLockstep() {
				fmt.Printf("    Lockstep: %s\n", svc.Versions().Latest())
			} else {
				supported, _ := svc.Versions().Supported()
				for _, entry := range supported.Entries() {
					latest := ""
					if entry.Major() == supported.Latest().Major() {
						latest = " (latest)"
					}
					fmt.Printf("    Version:  %s [%s]%s\n", entry.Semver(), entry.Label(), latest)
				}
			}
			fmt.Println()
		}

	case "watch":
		flags, verbose, args := parseCommonFlags(os.Args[2:])
		service, _, err := parseServiceFlag(args)
		if err != nil {
			tui.PrintError("Usage", err.Error())
			os.Exit(2)
		}
		callback := newCallback(flags)
		log := logging.New(verbose)

		git, store, _ := repoRooted(ctx, verbose)
		check := core.NewCheckService(store, git, core.NewParallelExecutor(0), log)
		cfg, err := store.Load()
		if err != nil {
			callback.ShowError("Error", err.Error())
			os.Exit(2)
		}

		runCheck := func() error {
			result, err := check.Check(ctx, core.CheckOptions{Service: service})
			if err != nil {
				callback.ShowError("Check Failed", err.Error())
				return nil
			}
			tui.PrintCheckReport(result.Report, flags.Mode)
			return nil
		}

		if err := runCheck(); err != nil {
			os.Exit(2)
		}
		watch := core.NewWatchService(store, callback, log)
		if err := watch.Watch(ctx, cfg.DocumentsDir, runCheck); err != nil && ctx.Err() == nil {
			callback.ShowError("Watch Failed", err.Error())
			os.Exit(2)
		}

	case "completion":
		// Generate shell completion script
		if len(os.Args) < 3 {
			tui.PrintError("Usage", "openapi-manager completion <shell>\nSupported shells: bash, zsh, fish")
			os.Exit(1)
		}
		switch os.Args[2] {
		case "bash":
			fmt.Println(cmd.GenerateBashCompletion())
		case "zsh":
			fmt.Println(cmd.GenerateZshCompletion())
		case "fish":
			fmt.Println(cmd.GenerateFishCompletion())
		default:
			tui.PrintError("Unsupported Shell", fmt.Sprintf("shell %q is not supported\nSupported shells: bash, zsh, fish", os.Args[2]))
			os.Exit(1)
		}

	default:
		tui.PrintError("Unknown Command", fmt.Sprintf("unknown command %q", command))
		fmt.Println()
		tui.PrintHelp()
		os.Exit(1)
	}
}
