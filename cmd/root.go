package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/josephlewis42/pipeshell/core/config"
	"github.com/josephlewis42/pipeshell/core/logger"
	"github.com/josephlewis42/pipeshell/core/notify"
	"github.com/josephlewis42/pipeshell/core/shell"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgPath     string
	commandLine string
)

// errCommandFailed makes the process exit non-zero without printing twice;
// the shell has already reported what went wrong.
var errCommandFailed = errors.New("command failed")

// loadConfig reads the configuration, creating a default one on first run,
// then applies environment overrides.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configuration, err := config.Initialize(cfgPath, logger.NewConsole(cmd.ErrOrStderr()))
	if err != nil {
		return nil, fmt.Errorf("loading config from %q: %w", cfgPath, err)
	}

	if err := configuration.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("applying %s_* environment: %w", config.EnvPrefix, err)
	}

	return configuration, nil
}

func notifyPath(cfg *config.Configuration) string {
	if cfg.NotifyPath != "" {
		return cfg.NotifyPath
	}
	return notify.DefaultPath()
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pipeshell",
	Short: "Pipeline shell",
	Long: `An interactive shell that runs pipelines of builtin commands and
external programs concurrently, passing lines between them.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logFd, err := cfg.OpenAppLog()
		if err != nil {
			return err
		}
		defer logFd.Close()

		log := logger.New(logFd, cfg.Debug)
		defer log.Sync()

		sh := shell.New(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), log)

		if cmd.Flags().Changed("command") {
			if ret := sh.RunCommand(cmd.Context(), commandLine); ret != 0 {
				return errCommandFailed
			}
			return nil
		}

		return runInteractive(cmd, cfg, sh, log)
	},
}

func runInteractive(cmd *cobra.Command, cfg *config.Configuration, sh *shell.Shell, log *zap.Logger) error {
	// Not being able to receive paths is the only startup failure that stops
	// the shell.
	watcher, err := notify.NewWatcher(notifyPath(cfg), log)
	if err != nil {
		return fmt.Errorf("watching notify path: %w", err)
	}
	defer watcher.Close()

	rl, err := shell.NewReadline(os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr(), sh.Completer())
	if err != nil {
		return err
	}
	defer rl.Close()
	sh.Readline = rl

	ctx := cmd.Context()
	go watcher.Run(ctx)

	if ret := sh.RunInteractive(ctx, watcher.Paths()); ret != 0 {
		return errCommandFailed
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if errors.Is(err, errCommandFailed) {
		os.Exit(1)
	}
	cobra.CheckErr(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config directory")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run a single command line and exit")
}
