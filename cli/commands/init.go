package commands

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/satishbabariya/expand-go/cli/internal/config"
	"github.com/satishbabariya/expand-go/cli/internal/ui"
	"github.com/satishbabariya/expand-go/cli/internal/update"
	"github.com/satishbabariya/expand-go/collect"
)

type initOptions struct {
	yes    bool
	global bool
	force  bool
}

var reportBackends = []string{"none", "sqlite", "postgres", "mysql"}

func newInitCommand(g *globals) *cobra.Command {
	o := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file",
		Long:  "Ask for the expansion settings and write them to ./.expand-go.yaml, or to the user config with --global.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(o)
		},
	}
	cmd.Flags().BoolVarP(&o.yes, "yes", "y", false, "accept the defaults without prompting")
	cmd.Flags().BoolVar(&o.global, "global", false, "write the user config instead of the project config")
	cmd.Flags().BoolVar(&o.force, "force", false, "overwrite an existing config file")
	return cmd
}

func runInit(o *initOptions) error {
	path := config.FileName + ".yaml"
	if o.global {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	exists, err := afero.Exists(config.AppFs, path)
	if err != nil {
		return err
	}
	if exists {
		reportExisting(path)
		if !o.force {
			if o.yes {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			overwrite := false
			if err := survey.AskOne(&survey.Confirm{Message: fmt.Sprintf("Overwrite %s?", path)}, &overwrite); err != nil {
				return err
			}
			if !overwrite {
				ui.PrintInfo("Kept %s", path)
				return nil
			}
		}
	}

	cfg := &config.Config{MaxDepth: collect.DefaultMaxDepth, ConfigVersion: update.CurrentConfig}
	if !o.yes {
		if err := askConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	ui.PrintSuccess("Wrote %s", path)
	return nil
}

// reportExisting notes when the file at path predates the current format.
func reportExisting(path string) {
	v := viper.New()
	v.SetFs(config.AppFs)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		ui.PrintWarning("%s is not readable: %v", path, err)
		return
	}
	if old := v.GetString("config_version"); old != "" {
		if stale, err := update.NeedsUpgrade(old); err == nil && stale {
			ui.PrintInfo("%s uses config_version %s; it will be rewritten as %s", path, old, update.CurrentConfig)
		}
	}
}

func askConfig(cfg *config.Config) error {
	depth := strconv.Itoa(cfg.MaxDepth)
	if err := survey.AskOne(&survey.Input{
		Message: "Nested expansion levels to follow:",
		Default: depth,
	}, &depth, survey.WithValidator(positiveInt)); err != nil {
		return err
	}
	cfg.MaxDepth, _ = strconv.Atoi(depth)

	backend := reportBackends[0]
	if err := survey.AskOne(&survey.Select{
		Message: "Store stats reports in:",
		Options: reportBackends,
		Default: backend,
	}, &backend); err != nil {
		return err
	}
	if backend == "none" {
		return nil
	}

	dsn := defaultDSN(backend)
	if err := survey.AskOne(&survey.Input{
		Message: "Report database:",
		Default: dsn,
	}, &dsn, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	cfg.ReportDSN = dsn
	return nil
}

func defaultDSN(backend string) string {
	switch backend {
	case "sqlite":
		return "sqlite://expand-report.db"
	case "postgres":
		return "postgres://localhost:5432/expand?sslmode=disable"
	case "mysql":
		return "mysql://root@tcp(localhost:3306)/expand"
	}
	return ""
}

func positiveInt(ans interface{}) error {
	s, _ := ans.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("%q is not a positive number", s)
	}
	return nil
}
