package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/expand-go/cli/internal/ui"
	"github.com/satishbabariya/expand-go/cli/internal/version"
)

func newVersionCommand() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			if full {
				fmt.Fprintln(ui.Out, info.FullString())
				return
			}
			fmt.Fprintln(ui.Out, info.String())
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print build details")
	return cmd
}
