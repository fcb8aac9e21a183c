package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/expand-go/cli/internal/ui"
	"github.com/satishbabariya/expand-go/cli/internal/watch"
	"github.com/satishbabariya/expand-go/collect"
	"github.com/satishbabariya/expand-go/hirexpand"
	"github.com/satishbabariya/expand-go/syntax"
)

type expandOptions struct {
	markdown bool
	watch    bool
	depth    int
}

func newExpandCommand(g *globals) *cobra.Command {
	o := &expandOptions{}
	cmd := &cobra.Command{
		Use:   "expand <file>",
		Short: "Print the expansion of every macro call in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("depth") {
				g.cfg.MaxDepth = o.depth
			}
			return runExpand(cmd.Context(), g, o, args[0])
		},
	}
	cmd.Flags().BoolVar(&o.markdown, "markdown", false, "render the report as markdown")
	cmd.Flags().BoolVar(&o.watch, "watch", false, "expand again whenever the file changes")
	cmd.Flags().IntVar(&o.depth, "depth", collect.DefaultMaxDepth, "number of nested expansion levels to follow")
	return cmd
}

func runExpand(ctx context.Context, g *globals, o *expandOptions, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w, err := g.openWorkspace([]string{path})
	if err != nil {
		return err
	}
	if err := expandOnce(ctx, w, o); err != nil {
		return err
	}
	if !o.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	watcher, err := watch.NewWatcher([]string{path}, func(string) error {
		ui.PrintInfo("%s changed, expanding again", path)
		if err := w.load(0); err != nil {
			return err
		}
		return expandOnce(ctx, w, o)
	})
	if err != nil {
		return err
	}
	ui.PrintSuccess("Watching %s for changes... (Press Ctrl+C to stop)", path)
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func expandOnce(ctx context.Context, w *workspace, o *expandOptions) error {
	res, err := w.expand(ctx, 0)
	if err != nil {
		return err
	}
	if o.markdown {
		if err := ui.PrintMarkdown(expansionMarkdown(w, res)); err != nil {
			return err
		}
	} else {
		printExpansions(w, res)
	}

	diags := res.Diagnostics(w.db).ForFile(0)
	if report := diags.WarningsToPrettyString(w.paths[0], w.texts[0]); report != "" {
		fmt.Fprint(ui.Err, report)
	}
	if report := diags.ToPrettyString(w.paths[0], w.texts[0]); report != "" {
		fmt.Fprint(ui.Err, report)
	}
	return nil
}

func printExpansions(w *workspace, res *collect.Result) {
	ui.PrintHeader("expand-go", w.paths[0])
	if len(res.Outcomes) == 0 && len(res.Unresolved) == 0 {
		ui.PrintInfo("no macro calls")
		return
	}
	for _, o := range res.Outcomes {
		title := fmt.Sprintf("%s  %s  [%s, %s]", w.location(o.Site), label(o.Site), o.Kind, o.Fragment)
		switch {
		case o.OK():
			ui.PrintSuccess("%s", title)
			ui.PrintCodeBlock(o.Expansion.Text(), "")
		case o.Expansion != nil:
			ui.PrintWarning("%s: %s", title, o.Err.Message)
			ui.PrintCodeBlock(o.Expansion.Text(), "partial")
		default:
			ui.PrintError("%s: %s: %s", title, o.Err.Kind, o.Err.Message)
			printChain(ui.Err, o.Err)
		}
	}
	if len(res.Unresolved) > 0 {
		ui.PrintSection("Unresolved")
		names := make([]string, 0, len(res.Unresolved))
		for _, u := range res.Unresolved {
			if u.Node.Value.Kind() == syntax.Attr {
				names = append(names, "derive("+u.Name+")")
			} else {
				names = append(names, u.Name+"!")
			}
		}
		ui.PrintList(names)
	}
}

func printChain(out io.Writer, err *hirexpand.ExpandError) {
	for _, c := range err.Chain {
		fmt.Fprintf(out, "    in %s\n", c)
	}
}

// expansionMarkdown renders res as a markdown document.
func expansionMarkdown(w *workspace, res *collect.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Expansions of `%s`\n\n", w.paths[0])
	if len(res.Outcomes) == 0 {
		b.WriteString("No macro calls.\n")
	}
	for _, o := range res.Outcomes {
		fmt.Fprintf(&b, "## `%s` at %s\n\n", label(o.Site), w.location(o.Site))
		fmt.Fprintf(&b, "*%s call, %s fragment, depth %d*\n\n", o.Kind, o.Fragment, o.Depth)
		if o.Err != nil {
			fmt.Fprintf(&b, "**%s**: %s\n\n", o.Err.Kind, o.Err.Message)
			for _, c := range o.Err.Chain {
				fmt.Fprintf(&b, "- in `%s`\n", c)
			}
			if len(o.Err.Chain) > 0 {
				b.WriteString("\n")
			}
		}
		if o.Expansion != nil {
			fmt.Fprintf(&b, "```rust\n%s\n```\n\n", o.Expansion.Text())
		}
	}
	if len(res.Unresolved) > 0 {
		b.WriteString("## Unresolved\n\n")
		for _, u := range res.Unresolved {
			fmt.Fprintf(&b, "- `%s`\n", u.Name)
		}
	}
	return b.String()
}
