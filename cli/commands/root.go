// Package commands implements the expand-go command line.
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/satishbabariya/expand-go/cli/internal/config"
	"github.com/satishbabariya/expand-go/cli/internal/ui"
	"github.com/satishbabariya/expand-go/cli/internal/update"
	"github.com/satishbabariya/expand-go/cli/internal/version"
	"github.com/satishbabariya/expand-go/internal/debug"
)

// globals are the persistent flags and the configuration they select.
type globals struct {
	configPath string
	debug      bool
	logFile    string
	noColor    bool

	v       *viper.Viper
	cfg     *config.Config
	logSink io.Closer
}

// NewRootCommand builds the expand-go command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "expand-go",
		Short:         "Expand Rust macro calls",
		Long:          "expand-go expands macro_rules!, builtin, derive and eager macro calls of Rust source files and reports why expansions fail.",
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if g.logSink != nil {
				return g.logSink.Close()
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (default searches ./.expand-go.yaml, $HOME and $HOME/.config/expand-go)")
	flags.BoolVar(&g.debug, "debug", false, "enable debug logging")
	flags.StringVar(&g.logFile, "log-file", "", "write logs to this file instead of stderr")
	flags.BoolVar(&g.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newExpandCommand(g),
		newStatsCommand(g),
		newInitCommand(g),
		newVersionCommand(),
	)
	return cmd
}

func (g *globals) setup() error {
	debug.Init(g.debug)
	if g.logFile != "" {
		f, err := config.AppFs.Create(g.logFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		debug.SetOutput(f)
		g.logSink = f
	}
	if g.noColor {
		ui.DisableColor()
	}

	cfg, err := config.Load(g.v, g.configPath)
	if err != nil {
		return err
	}
	if err := update.CheckConfigVersion(cfg.ConfigVersion); err != nil {
		return err
	}
	if cfg.File != "" {
		debug.Debug("loaded config", "file", cfg.File)
	}
	g.cfg = cfg
	return nil
}

// Execute runs the command line and prints a failure to stderr.
func Execute() error {
	err := NewRootCommand().Execute()
	if err != nil {
		ui.PrintError("%v", err)
	}
	return err
}
