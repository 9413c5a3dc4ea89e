// Package cmd provides the CLI commands for babyreminder.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"io"
	"sort"

	"github.com/spf13/cobra"
)

// completionGenerators maps a shell name to its cobra script generator.
var completionGenerators = map[string]func(io.Writer) error{
	"bash":       func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
	"zsh":        rootCmd.GenZshCompletion,
	"fish":       func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
	"powershell": rootCmd.GenPowerShellCompletionWithDesc,
}

func completionShells() []string {
	shells := make([]string, 0, len(completionGenerators))
	for name := range completionGenerators {
		shells = append(shells, name)
	}
	sort.Strings(shells)
	return shells
}

var completionCmd = &cobra.Command{
	Use:   "completion SHELL",
	Short: "Generate shell completion scripts",
	Long: `Print a completion script for bash, zsh, fish or powershell.

Device and webhook names complete from the daemon when it is running,
and from the local database otherwise.

Load for the current session:
  source <(babyreminder completion bash)
  babyreminder completion fish | source

Install permanently:
  babyreminder completion bash > ~/.local/share/bash-completion/completions/babyreminder
  babyreminder completion zsh  > "${fpath[1]}/_babyreminder"
  babyreminder completion fish > ~/.config/fish/completions/babyreminder.fish

Zsh needs compinit enabled in ~/.zshrc for the script to load.`,
	DisableFlagsInUseLine: true,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return completionGenerators[args[0]](cmd.OutOrStdout())
	},
}

func init() {
	completionCmd.ValidArgs = completionShells()
	rootCmd.AddCommand(completionCmd)
}
