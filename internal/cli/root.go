// Package cli implements the weave command line.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/toyz/weave/internal/config"
	"github.com/toyz/weave/internal/logging"
	"github.com/toyz/weave/internal/utils"
)

// Version is set at build time
var Version = "dev"

type globalOptions struct {
	verbosity  int
	quiet      bool
	configPath string
	logFormat  string
}

// app is the state shared by the commands of one invocation
type app struct {
	opts        globalOptions
	cfg         *config.Config
	diagnostics *utils.DiagnosticSystem
	logger      zerolog.Logger
}

// NewRootCmd creates the weave root command with all subcommands
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "weave",
		Short: "Pointcut matching and advice dispatch for Go",
		Long: `weave compiles AspectJ-style pointcut expressions and matches them against
Go method signatures. Use it to try expressions, to see which methods of a
package an expression selects, and to validate aspect manifests.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().CountVarP(&a.opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVarP(&a.opts.quiet, "quiet", "q", false, "Only show errors")
	rootCmd.PersistentFlags().StringVarP(&a.opts.configPath, "config", "c", "", "Manifest or settings file (YAML or TOML)")
	rootCmd.PersistentFlags().StringVar(&a.opts.logFormat, "log-format", "", "Log format: console or json")

	rootCmd.AddCommand(newMatchCmd(a))
	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newDemoCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setup loads the configuration and installs logging and diagnostics.
// Flags override the environment, which overrides the file.
func (a *app) setup(cmd *cobra.Command) error {
	overrides := make(map[string]interface{})
	switch {
	case a.opts.quiet:
		overrides["log.level"] = "error"
	case a.opts.verbosity > 0:
		overrides["log.level"] = logging.VerbosityLevel(a.opts.verbosity)
	}
	if a.opts.logFormat != "" {
		overrides["log.format"] = a.opts.logFormat
	}

	cfg, err := config.Load(a.opts.configPath, overrides)
	if err != nil {
		return err
	}
	if err := logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	a.cfg = cfg
	a.diagnostics = utils.NewDiagnosticSystem(a.diagnosticLevel(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	a.logger = logging.Component("cli")
	a.logger.Debug().Str("command", cmd.Name()).Str("config", cfg.Source).Msg("command started")
	return nil
}

func (a *app) diagnosticLevel() utils.DiagnosticLevel {
	switch {
	case a.opts.quiet:
		return utils.DiagnosticError
	case a.opts.verbosity >= 2:
		return utils.DiagnosticDebug
	case a.opts.verbosity == 1:
		return utils.DiagnosticVerbose
	default:
		return utils.DiagnosticInfo
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "weave version %s\n", Version)
		},
	}
}
