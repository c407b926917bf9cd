package cmd

import (
	"github.com/josephlewis42/pipeshell/core/config"
	"github.com/josephlewis42/pipeshell/core/logger"
	"github.com/spf13/cobra"
)

// initCmd initializes the shell configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config.txt in the config directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		_, err := config.Initialize(cfgPath, logger.NewConsole(cmd.ErrOrStderr()))
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
