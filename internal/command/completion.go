// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/stepctl/internal/meta"
)

const bashCompletionScript = `# bash completion for stepctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_stepctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "tq dq hq rq completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --local -l --output -o --padding --schema --sort -s --titles -t --tldr"
    local source="--profile --region --no-cache"
    local tree="--fields --root"

    case "$cmd" in
        tq)
            local opts="$common $source $tree --anomalies --chop"
            ;;
        dq)
            local opts="$common $source $tree --chop --no-relocation --only --summary"
            ;;
        hq)
            local opts="$common $source --diff"
            ;;
        rq)
            local opts="$common --counts"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml raw tree" -- "$cur") )
            return 0
            ;;
        --only)
            COMPREPLY=( $(compgen -W "both first second relocated" -- "$cur") )
            return 0
            ;;
        --fields)
            COMPREPLY=( $(compgen -W "name name+rep name+rep+kind" -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # Dumps and revision directories.
    COMPREPLY=( $(compgen -f -- "$cur") )
    return 0
}

complete -o filenames -F _stepctl stepctl
`

const zshCompletionScript = `#compdef stepctl

_stepctl() {
  local -a cmds
  cmds=(
    'tq:tree query'
    'dq:diff query'
    'hq:header query'
    'rq:revision query'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-l --local)'{-l,--local}'[show local timestamps]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml raw tree)'
  '--padding[spaces between columns]:padding'
  '--schema[dump schema]'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  local -a source
  source=(
  '--profile[AWS profile]:profile'
  '--region[AWS region]:region'
  '--no-cache[bypass the download cache]'
  )

  local -a tree
  tree=(
  '--fields[equality key fields]:fields:(name name+rep name+rep+kind)'
  '--root[root assembly name]:root'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'stepctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    tq)
      _arguments -C \
        $common $source $tree \
        '--anomalies[list tree anomalies]' \
        '--chop[chop common prefixes]' \
        '1:SOURCE:_files'
      ;;
    dq)
      _arguments -C \
        $common $source $tree \
        '--chop[chop common prefixes]' \
        '--no-relocation[report moves as removed and added]' \
        '--only[classes to keep]:classes:(both first second relocated)' \
        '--summary[show counts only]' \
        '*:SOURCE:_files'
      ;;
    hq)
      _arguments -C \
        $common $source \
        '--diff[delta between two headers]' \
        '*:SOURCE:_files'
      ;;
    rq)
      _arguments -C \
        $common \
        '--counts[count parts and relations]' \
        '1:DIR:_directories'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common '*:file:_files'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _stepctl stepctl
`

// completionScript picks the script for shell, falling back to $SHELL. It
// returns "" when neither names a supported shell.
func completionScript(shell string) string {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	switch {
	case strings.HasSuffix(shell, "zsh"):
		return zshCompletionScript
	case strings.HasSuffix(shell, "bash"):
		return bashCompletionScript
	}
	return ""
}

func writeCompletion(shell string, w io.Writer) error {
	script := completionScript(shell)
	if script == "" {
		fmt.Fprintln(os.Stderr, "usage: stepctl completion [bash|zsh]")
		return nil
	}
	_, err := fmt.Fprint(w, script)
	return err
}

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	return writeCompletion(cmd.Args().First(), stdout)
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "stepctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
