package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Caspar241/releasehub/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "releasehub",
	Short: "Release workflow task engine",
	Long: `releasehub turns release plan templates into concrete, dated task lists.

Apply a template against a release to get phase-by-phase tasks with due
dates derived from the release date, work through them with complete,
snooze, and dismiss commands, and let the weekly tick keep recurring
artist routines supplied with fresh tasks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellable context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("home", "", "data directory (default $HOME/.releasehub)")
	rootCmd.PersistentFlags().String("db", "", "task store path, or 'memory' (default <home>/tasks.db)")
	rootCmd.PersistentFlags().String("templates", "", "directory with additional template YAML files")
	rootCmd.PersistentFlags().String("registry", "", "registry YAML with releases and routines (default <home>/registry.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
}

func configureLogging(cmd *cobra.Command) {
	levelFlag, _ := cmd.Flags().GetString("log-level")
	formatFlag, _ := cmd.Flags().GetString("log-format")

	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(levelFlag)
	cfg.Format = log.ParseFormat(formatFlag)
	log.SetDefaultLogger(log.New(cfg))
}
