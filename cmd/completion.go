// Package cmd provides CLI utilities for openapi-manager
package cmd

import (
	"fmt"
	"strings"
)

// Commands available in openapi-manager
var commands = []string{
	"check",
	"generate",
	"list",
	"watch",
	"version",
	"completion",
	"help",
}

// GenerateBashCompletion generates bash completion script
func GenerateBashCompletion() string {
	return fmt.Sprintf(`# bash completion for openapi-manager
_openapi_manager_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Commands
    opts="%s"

    # Command-specific options
    case "${prev}" in
        check)
            opts="--service --quiet -q --json --verbose -v"
            ;;
        generate)
            opts="--service --dry-run --yes -y --quiet -q --json --verbose -v"
            ;;
        list)
            opts="--quiet -q --json"
            ;;
        watch)
            opts="--service --verbose -v"
            ;;
        completion)
            opts="bash zsh fish"
            ;;
        version)
            opts=""
            ;;
    esac

    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
}

complete -F _openapi_manager_completions openapi-manager
`, strings.Join(commands, " "))
}

// GenerateZshCompletion generates zsh completion script
func GenerateZshCompletion() string {
	cmdList := make([]string, len(commands))
	for i, cmd := range commands {
		desc := getCommandDescription(cmd)
		cmdList[i] = fmt.Sprintf("    '%s:%s'", cmd, desc)
	}

	return fmt.Sprintf(`#compdef openapi-manager

_openapi_manager() {
    local -a commands
    commands=(
%s
    )

    _arguments -C \
        '1: :->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                check)
                    _arguments \
                        '--service[Restrict to one service]:service:' \
                        '--quiet[Minimal output]' \
                        '-q[Minimal output]' \
                        '--json[JSON output]' \
                        '--verbose[Debug logging]' \
                        '-v[Debug logging]'
                    ;;
                generate)
                    _arguments \
                        '--service[Restrict to one service]:service:' \
                        '--dry-run[Plan fixes without applying]' \
                        '--yes[Apply without prompting]' \
                        '-y[Apply without prompting]' \
                        '--quiet[Minimal output]' \
                        '-q[Minimal output]' \
                        '--json[JSON output]' \
                        '--verbose[Debug logging]' \
                        '-v[Debug logging]'
                    ;;
                list)
                    _arguments \
                        '--quiet[Minimal output]' \
                        '-q[Minimal output]' \
                        '--json[JSON output]'
                    ;;
                watch)
                    _arguments \
                        '--service[Restrict to one service]:service:' \
                        '--verbose[Debug logging]' \
                        '-v[Debug logging]'
                    ;;
                completion)
                    _arguments '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_openapi_manager "$@"
`, strings.Join(cmdList, "\n"))
}

// GenerateFishCompletion generates fish completion script
func GenerateFishCompletion() string {
	var completions []string

	// Add command completions
	for _, cmd := range commands {
		desc := getCommandDescription(cmd)
		completions = append(completions, fmt.Sprintf("complete -c openapi-manager -f -n '__fish_use_subcommand' -a '%s' -d '%s'", cmd, desc))
	}

	// Add flag completions
	completions = append(completions, "# check command flags")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from check' -l service -d 'Restrict to one service' -r")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from check' -l quiet -s q -d 'Minimal output'")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from check' -l json -d 'JSON output'")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from check' -l verbose -s v -d 'Debug logging'")

	completions = append(completions, "# generate command flags")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from generate' -l service -d 'Restrict to one service' -r")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from generate' -l dry-run -d 'Plan fixes without applying'")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from generate' -l yes -s y -d 'Apply without prompting'")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from generate' -l quiet -s q -d 'Minimal output'")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from generate' -l json -d 'JSON output'")

	completions = append(completions, "# list command flags")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from list' -l quiet -s q -d 'Minimal output'")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from list' -l json -d 'JSON output'")

	completions = append(completions, "# watch command flags")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from watch' -l service -d 'Restrict to one service' -r")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from watch' -l verbose -s v -d 'Debug logging'")

	completions = append(completions, "# completion command shells")
	completions = append(completions, "complete -c openapi-manager -n '__fish_seen_subcommand_from completion' -f -a 'bash zsh fish'")

	return strings.Join(completions, "\n")
}

// getCommandDescription returns a short description for a command
func getCommandDescription(cmd string) string {
	descriptions := map[string]string{
		"check":      "Verify documents against code and history",
		"generate":   "Regenerate documents and apply fixes",
		"list":       "List managed services and versions",
		"watch":      "Rerun check on file changes",
		"version":    "Print version information",
		"completion": "Generate shell completion script",
		"help":       "Show help information",
	}

	if desc, ok := descriptions[cmd]; ok {
		return desc
	}
	return ""
}
