package cmd

import (
	"github.com/josephlewis42/pipeshell/core/notify"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify PATH",
	Short: "Type PATH into the prompt of a running shell.",
	Long: `Sends PATH to a running interactive shell, which appends it to the line
being edited. Meant to be bound to a file manager action.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		return notify.Send(notifyPath(cfg), args[0])
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}
