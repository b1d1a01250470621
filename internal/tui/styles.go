// Package tui provides terminal output, prompts, and report rendering for
// openapi-manager.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	styleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// IsInteractive reports whether stdout is a terminal; non-terminals get
// plain output and no prompts.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// PrintError prints a styled error title and message.
func PrintError(title, msg string) {
	fmt.Println(styleErr.Render("✖ " + title))
	if msg != "" {
		fmt.Println(msg)
	}
}

// PrintSuccess prints a styled success message.
func PrintSuccess(msg string) { fmt.Println(styleSuccess.Render("✔ " + msg)) }

// PrintWarning prints a styled warning title and message.
func PrintWarning(title, msg string) {
	fmt.Println(styleWarn.Render("! " + title))
	if msg != "" {
		fmt.Println(msg)
	}
}

// PrintInfo prints a dimmed informational message.
func PrintInfo(msg string) { fmt.Println(styleDim.Render(msg)) }

// StyleTitle renders a bold section title.
func StyleTitle(title string) string { return styleTitle.Render(title) }

// PrintHelp prints top-level usage.
func PrintHelp() {
	fmt.Println(StyleTitle("openapi-manager") + " — keeps generated OpenAPI documents consistent")
	fmt.Println()
	fmt.Println("Usage: openapi-manager <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  check        Verify documents against code and history")
	fmt.Println("  generate     Regenerate documents and apply fixes")
	fmt.Println("  list         List managed services and their versions")
	fmt.Println("  watch        Rerun check on file changes")
	fmt.Println("  version      Print version information")
	fmt.Println("  completion   Generate shell completion scripts")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --service NAME   Restrict to one service")
	fmt.Println("  --json           Structured JSON output")
	fmt.Println("  --quiet, -q      Minimal output")
	fmt.Println("  --yes, -y        Apply fixes without prompting")
	fmt.Println("  --dry-run        Plan fixes without applying (generate)")
	fmt.Println("  --verbose, -v    Debug logging")
	fmt.Println()
	fmt.Println("Exit codes: 0 fresh, 1 needs update, 2 failure")
}
