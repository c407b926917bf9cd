package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/josephlewis42/pipeshell/commands"
	"github.com/josephlewis42/pipeshell/core/shell"
	"github.com/spf13/cobra"
)

// builtinsCmd lists everything that runs without an external program.
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the builtin commands of the shell.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var builtins []string

		for _, cmd := range commands.ListBuiltinCommands() {
			builtins = append(builtins, strings.Join(cmd.Names, ", "))
		}

		for _, name := range shell.DirectiveNames() {
			builtins = append(builtins, "shell:"+name)
		}

		sort.Strings(builtins)

		for _, v := range builtins {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
