package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/expand-go/cli/internal/report"
	"github.com/satishbabariya/expand-go/cli/internal/ui"
	"github.com/satishbabariya/expand-go/collect"
	"github.com/satishbabariya/expand-go/diagnostics"
)

type statsOptions struct {
	reportDSN string
	strict    bool
}

func newStatsCommand(g *globals) *cobra.Command {
	o := &statsOptions{}
	cmd := &cobra.Command{
		Use:   "stats <files...>",
		Short: "Count expansion outcomes per failure kind",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.reportDSN == "" {
				o.reportDSN = g.cfg.ReportDSN
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runStats(ctx, g, o, args)
		},
	}
	cmd.Flags().StringVar(&o.reportDSN, "report-dsn", "", "also store per-call records in this database (sqlite://, postgres://, mysql://)")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "exit with an error if any call failed")
	return cmd
}

func runStats(ctx context.Context, g *globals, o *statsOptions, paths []string) error {
	w, err := g.openWorkspace(paths)
	if err != nil {
		return err
	}

	totals := map[string]int{}
	diags := diagnostics.NewDiagnostics()
	var records []report.Record
	for i, path := range paths {
		res, err := w.expand(ctx, i)
		if err != nil {
			return err
		}
		for kind, n := range res.Counts() {
			totals[kind] += n
		}
		for _, e := range res.Diagnostics(w.db).Errors() {
			diags.PushError(e)
		}
		records = append(records, w.records(path, res)...)
	}

	kinds := make([]string, 0, len(totals))
	for k := range totals {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	rows := make([][]string, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, []string{k, strconv.Itoa(totals[k])})
	}
	ui.PrintSection(fmt.Sprintf("Outcomes in %d files", len(paths)))
	if err := ui.PrintTable([]string{"outcome", "count"}, rows); err != nil {
		return err
	}

	if o.reportDSN != "" {
		r, err := report.Open(ctx, o.reportDSN)
		if err != nil {
			return fmt.Errorf("open report database: %w", err)
		}
		defer r.Close()
		if err := r.Write(ctx, time.Now(), records); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		ui.PrintSuccess("Stored %d records", len(records))
	}

	if o.strict && diags.HasErrors() {
		return diags.ToResult()
	}
	return nil
}

// records converts the outcomes of one file into report rows.
func (w *workspace) records(path string, res *collect.Result) []report.Record {
	var out []report.Record
	for _, o := range res.Outcomes {
		rec := report.Record{
			File:     path,
			Call:     label(o.Site),
			Kind:     o.Kind.String(),
			Fragment: o.Fragment.String(),
			Status:   "ok",
		}
		if o.Err != nil {
			rec.Status = o.Err.Kind.String()
			rec.Message = o.Err.Message
			rec.Tokens = o.Err.TokenCount
		}
		if o.Expansion != nil {
			if sub, _ := w.db.MacroExpand(o.ID); sub != nil {
				rec.Tokens = sub.Count()
			}
		}
		out = append(out, rec)
	}
	for _, u := range res.Unresolved {
		out = append(out, report.Record{File: path, Call: u.Name + "!", Kind: "unresolved", Fragment: "", Status: "unresolved"})
	}
	return out
}
