// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/kraklabs/verieasy/internal/errors"
)

const bashCompletion = `# bash completion for verieasy
_verieasy() {
    local cur prev
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "init completion" -- "${cur}") )
        COMPREPLY+=( $(compgen -f -- "${cur}") )
        return 0
    fi

    case "${prev}" in
        -c|--config|-p|--preconditions)
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
        -l|--log)
            COMPREPLY=( $(compgen -W "brief normal verbose" -- "${cur}") )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "${cur}") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -f -- "${cur}") )
}
complete -F _verieasy verieasy
`

const zshCompletion = `#compdef verieasy

_verieasy() {
    _arguments \
        '1: :(init completion)' \
        '-c[workflow description path]:file:_files' \
        '--config[workflow description path]:file:_files' \
        '-l[log verbosity]:level:(brief normal verbose)' \
        '--log[log verbosity]:level:(brief normal verbose)' \
        '-p[specification file]:file:_files' \
        '--preconditions[specification file]:file:_files' \
        '-s[stop after first testing fail]' \
        '--strict[stop after first testing fail]' \
        '--json[output as JSON]' \
        '--no-color[disable color output]' \
        '*:source file:_files'
}
_verieasy
`

const fishCompletion = `# fish completion for verieasy
complete -c verieasy -f
complete -c verieasy -n "__fish_use_subcommand" -a init -d "Scaffold a starter workflow.toml"
complete -c verieasy -n "__fish_use_subcommand" -a completion -d "Print a shell completion script"
complete -c verieasy -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
complete -c verieasy -s c -l config -d "Workflow description path" -r
complete -c verieasy -s l -l log -d "Log verbosity" -xa "brief normal verbose"
complete -c verieasy -s p -l preconditions -d "Specification file" -r
complete -c verieasy -s s -l strict -d "Stop the pipeline after the first testing-component fail"
complete -c verieasy -l json -d "Output the final report as JSON"
complete -c verieasy -l no-color -d "Disable color output"
complete -c verieasy -l metrics-addr -d "Serve Prometheus metrics on this address"
`

// runCompletion prints a shell completion script for the requested shell.
func runCompletion(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: verieasy completion {bash|zsh|fish}")
		os.Exit(1)
	}

	var script string
	switch args[0] {
	case "bash":
		script = bashCompletion
	case "zsh":
		script = zshCompletion
	case "fish":
		script = fishCompletion
	default:
		errors.FatalError(errors.NewInputError(
			"Unsupported shell",
			fmt.Sprintf("%q is not one of bash, zsh, fish", args[0]),
			"Pass one of: bash, zsh, fish",
		), false)
		return
	}

	fmt.Print(script)
}
