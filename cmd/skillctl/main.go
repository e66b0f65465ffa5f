package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillctl/skillctl/pkg/linker"
	"github.com/skillctl/skillctl/pkg/logger"
	"github.com/skillctl/skillctl/pkg/presenter"
	"github.com/skillctl/skillctl/pkg/skills"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLCTL")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillctl")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "skillctl [skill]...",
	Short: "Manage skill symlinks for the Claude skills directory",
	Long: `skillctl installs skills from this repository into ~/.claude/skills by
creating symbolic links, and removes only the links it owns.

Run without arguments for an interactive selection screen, or pass skill
names to install them directly.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			logger.L.WithError(err).Warn("invalid log level, keeping default")
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			// Bare skill names install them, matching `skillctl install`
			force, _ := cmd.Flags().GetBool("force")
			return runInstall(cmd.Context(), args, false, force)
		}
		return runSync(cmd.Context())
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().String("source-dir", "", "Skill source directory (defaults to the directory containing the skillctl binary)")
	rootCmd.PersistentFlags().String("target-dir", "", "Install target directory (defaults to ~/.claude/skills)")
	rootCmd.PersistentFlags().Bool("force", false, "Replace entries occupying a skill's target path")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("source_dir", rootCmd.PersistentFlags().Lookup("source-dir"))
	viper.BindPFlag("target_dir", rootCmd.PersistentFlags().Lookup("target-dir"))

	if err := rootCmd.Execute(); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}

func newDiscovery() (*skills.Discovery, error) {
	if dir := viper.GetString("source_dir"); dir != "" {
		return skills.NewDiscovery(skills.WithSourceDir(dir))
	}
	return skills.NewDiscovery()
}

func newLinker() (*linker.Linker, error) {
	if dir := viper.GetString("target_dir"); dir != "" {
		return linker.New(linker.WithTargetDir(dir))
	}
	return linker.New()
}

// reportEvent maps per-skill batch events to user-facing output. Benign
// skips are informational; ownership skips get a warning.
func reportEvent(ev linker.Event) {
	switch ev.Outcome {
	case linker.OutcomeInstalled:
		presenter.Success(fmt.Sprintf("Installed '%s'", ev.Skill.Name))
	case linker.OutcomeRemoved:
		presenter.Success(fmt.Sprintf("Removed '%s'", ev.Skill.Name))
	case linker.OutcomeAlreadyInstalled, linker.OutcomeNotInstalled:
		presenter.Info(fmt.Sprintf("Skipped '%s': %s", ev.Skill.Name, ev.Outcome))
	case linker.OutcomeForeignLink, linker.OutcomeNotSymlink:
		presenter.Warning(fmt.Sprintf("Skipped '%s': %s", ev.Skill.Name, ev.Outcome))
	default:
		presenter.Error(ev.Err, fmt.Sprintf("Failed to process '%s'", ev.Skill.Name))
	}
}
