package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_billcycle() {
    local cur prev words cword
    _init_completion || return

    local commands="compute decrypt history show rm diff compact keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        compute)
            COMPREPLY=($(compgen -W "--encrypt --password --output --force --no-save --table" -- "$cur"))
            ;;
        decrypt|diff)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--password --output --force --table" -- "$cur"))
            else
                _filedir json
            fi
            ;;
        show|rm)
            # Complete with dates from history
            local dates
            dates=$(billcycle history 2>/dev/null | awk '/^  [0-9]/{print $1}')
            COMPREPLY=($(compgen -W "$dates" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _billcycle billcycle
`

const zshCompletion = `#compdef billcycle

_billcycle() {
    local -a commands
    commands=(
        'compute:Compute billing cycle milestones for a start date'
        'decrypt:Decrypt a record and print its milestones'
        'history:List stored billing cycles'
        'show:Print a stored billing cycle'
        'rm:Remove stored billing cycles'
        'diff:Compare the milestones of two records'
        'compact:Compact the history store'
        'keyring:Manage password in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'billcycle commands' commands
            ;;
        args)
            case "${words[2]}" in
                compute)
                    _arguments \
                        '--encrypt[Encrypt the result]' \
                        '--password[Password]:password:' \
                        '--output[Output file]:file:_files' \
                        '--force[Overwrite the output file]' \
                        '--no-save[Do not record in history]' \
                        '--table[Print a table]'
                    ;;
                decrypt|diff)
                    _arguments \
                        '--password[Password]:password:' \
                        '--output[Output file]:file:_files' \
                        '--force[Overwrite the output file]' \
                        '--table[Print a table]' \
                        '*:record:_files -g "*.json"'
                    ;;
                show|rm)
                    _arguments '*:stored date:_billcycle_dates'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'billcycle commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_billcycle_dates() {
    local -a dates
    dates=(${(f)"$(billcycle history 2>/dev/null | awk '/^  [0-9]/{print $1}')"})
    _describe -t dates 'stored dates' dates
}

_billcycle "$@"
`

const fishCompletion = `# billcycle fish completions

set -l commands compute decrypt history show rm diff compact keyring help completion

complete -c billcycle -f

# Commands
complete -c billcycle -n "not __fish_seen_subcommand_from $commands" -a compute -d 'Compute milestones'
complete -c billcycle -n "not __fish_seen_subcommand_from $commands" -a decrypt -d 'Decrypt a record'
complete -c billcycle -n "not __fish_seen_subcommand_from $commands" -a history -d 'List stored cycles'
complete -c billcycle -n "not __fish_seen_subcommand_from $commands" -a show -d 'Print a stored cycle'
complete -c billcycle -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Remove stored cycles'
complete -c billcycle -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare two records'
complete -c billcycle -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact history store'
complete -c billcycle -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c billcycle -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c billcycle -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# compute flags
complete -c billcycle -n "__fish_seen_subcommand_from compute" -l encrypt -d 'Encrypt the result'
complete -c billcycle -n "__fish_seen_subcommand_from compute" -l password -d 'Password'
complete -c billcycle -n "__fish_seen_subcommand_from compute" -l no-save -d 'Do not record in history'
complete -c billcycle -n "__fish_seen_subcommand_from compute decrypt" -l output -d 'Output file'
complete -c billcycle -n "__fish_seen_subcommand_from compute decrypt" -l force -d 'Overwrite output file'
complete -c billcycle -n "__fish_seen_subcommand_from compute decrypt show" -l table -d 'Print a table'

# decrypt and diff take record files
complete -c billcycle -n "__fish_seen_subcommand_from decrypt diff" -F

# show and rm take stored dates
complete -c billcycle -n "__fish_seen_subcommand_from show rm" -a "(billcycle history 2>/dev/null | awk '/^  [0-9]/{print \$1}')"

# keyring subcommands
complete -c billcycle -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c billcycle -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c billcycle -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
